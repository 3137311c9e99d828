// ABOUTME: Notion implementation of the Store interface over the Notion REST API
// ABOUTME: Validates untyped remote records into typed entities at this boundary

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	notionBaseURL = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

// NotionConfig holds credentials and database identifiers for the remote store.
type NotionConfig struct {
	APIKey            string
	DatabaseID        string
	ReadingDatabaseID string
}

// NotionStore implements the Store interface against the Notion API.
// QA entries and reading entries live in (possibly distinct) databases;
// deletes archive the page rather than destroying it.
type NotionStore struct {
	apiKey    string
	qaDB      string
	readingDB string
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
}

// NewNotionStore creates a store backed by the Notion API.
// ReadingDatabaseID falls back to DatabaseID when unset.
func NewNotionStore(cfg NotionConfig) (*NotionStore, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("notion api key is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}
	readingDB := cfg.ReadingDatabaseID
	if readingDB == "" {
		readingDB = cfg.DatabaseID
	}
	return &NotionStore{
		apiKey:    cfg.APIKey,
		qaDB:      cfg.DatabaseID,
		readingDB: readingDB,
		baseURL:   notionBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default().With("component", "notion"),
	}, nil
}

// notionRichText is one span of a Notion rich-text property.
type notionRichText struct {
	PlainText   string `json:"plain_text"`
	Annotations struct {
		Bold   bool `json:"bold"`
		Italic bool `json:"italic"`
	} `json:"annotations"`
}

// notionSelect is a Notion select-property value.
type notionSelect struct {
	Name string `json:"name"`
}

// notionProperty is the union of property shapes this store reads.
type notionProperty struct {
	Title       []notionRichText `json:"title"`
	RichText    []notionRichText `json:"rich_text"`
	Select      *notionSelect    `json:"select"`
	URL         string           `json:"url"`
	CreatedTime string           `json:"created_time"`
}

// notionPage is the subset of a Notion page this store reads.
type notionPage struct {
	ID          string                    `json:"id"`
	CreatedTime string                    `json:"created_time"`
	Properties  map[string]notionProperty `json:"properties"`
}

type notionQueryResponse struct {
	Results []notionPage `json:"results"`
}

// plainText flattens rich-text spans to their plain content.
func plainText(spans []notionRichText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

// annotatedText flattens rich-text spans, re-encoding bold and italic
// annotations as the markdown-lite markers the renderer understands.
func annotatedText(spans []notionRichText) string {
	var b strings.Builder
	for _, s := range spans {
		content := s.PlainText
		if s.Annotations.Bold {
			content = "**" + content + "**"
		}
		if s.Annotations.Italic {
			content = "*" + content + "*"
		}
		b.WriteString(content)
	}
	return b.String()
}

// parseRemoteCategory maps a remote select name back to a Category.
func parseRemoteCategory(name string) Category {
	switch strings.ToLower(name) {
	case "strategy":
		return CategoryStrategy
	case "product":
		return CategoryProduct
	case "technology":
		return CategoryTechnology
	}
	return Category(strings.ToLower(name))
}

// pageCreatedAt resolves the creation timestamp from the Created property
// or the page metadata.
func pageCreatedAt(page notionPage) time.Time {
	raw := page.CreatedTime
	if prop, ok := page.Properties["Created"]; ok && prop.CreatedTime != "" {
		raw = prop.CreatedTime
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// firstProperty returns the first present property among names.
func firstProperty(page notionPage, names ...string) (notionProperty, bool) {
	for _, name := range names {
		if prop, ok := page.Properties[name]; ok {
			return prop, true
		}
	}
	return notionProperty{}, false
}

// doJSON performs an authenticated Notion API request, decoding the
// response into out when non-nil. Non-2xx responses become errors;
// 404 maps to ErrNotFound.
func (n *NotionStore) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Notion-Version", notionVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("notion api status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("notion api status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// queryDatabase runs a database query with the standard creation-descending sort.
func (n *NotionStore) queryDatabase(ctx context.Context, databaseID string, filter any) ([]notionPage, error) {
	body := map[string]any{
		"sorts": []map[string]string{
			{"property": "Created", "direction": "descending"},
		},
	}
	if filter != nil {
		body["filter"] = filter
	}

	var result notionQueryResponse
	if err := n.doJSON(ctx, http.MethodPost, "/databases/"+databaseID+"/query", body, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// ListQA fetches QA entries, newest first. An empty category lists all.
func (n *NotionStore) ListQA(ctx context.Context, category Category) ([]*QAEntry, error) {
	var filter any
	if category != "" {
		filter = map[string]any{
			"property": "Category",
			"select":   map[string]string{"equals": category.RemoteName()},
		}
	}

	pages, err := n.queryDatabase(ctx, n.qaDB, filter)
	if err != nil {
		return nil, fmt.Errorf("listing qa entries: %w", err)
	}

	entries := make([]*QAEntry, 0, len(pages))
	for _, page := range pages {
		entries = append(entries, qaEntryFromPage(page))
	}
	return entries, nil
}

// qaEntryFromPage converts a raw page into a typed QAEntry.
func qaEntryFromPage(page notionPage) *QAEntry {
	entry := &QAEntry{
		ID:        page.ID,
		CreatedAt: pageCreatedAt(page),
	}

	if prop, ok := firstProperty(page, "Title", "Name"); ok {
		entry.Title = plainText(prop.Title)
	}
	if prop, ok := firstProperty(page, "Text", "Content"); ok {
		entry.Content = annotatedText(prop.RichText)
	}
	if prop, ok := page.Properties["Category"]; ok && prop.Select != nil {
		entry.Category = parseRemoteCategory(prop.Select.Name)
	}
	if prop, ok := page.Properties["Tags"]; ok {
		for _, tag := range strings.Split(plainText(prop.RichText), ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				entry.Tags = append(entry.Tags, trimmed)
			}
		}
	}
	return entry
}

// CreateQA writes a new QA page and returns the entry with its remote ID.
func (n *NotionStore) CreateQA(ctx context.Context, entry *QAEntry) (*QAEntry, error) {
	properties := map[string]any{}
	if entry.Title != "" {
		properties["Title"] = titleProperty(TruncateField(entry.Title))
	}
	if entry.Content != "" {
		properties["Text"] = richTextProperty(TruncateField(entry.Content))
	}
	if entry.Category != "" {
		properties["Category"] = selectProperty(entry.Category.RemoteName())
	}
	if len(entry.Tags) > 0 {
		properties["Tags"] = richTextProperty(strings.Join(entry.Tags, ", "))
	}

	body := map[string]any{
		"parent":     map[string]string{"database_id": n.qaDB},
		"properties": properties,
	}

	var page notionPage
	if err := n.doJSON(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, fmt.Errorf("creating qa entry: %w", err)
	}

	created := *entry
	created.ID = page.ID
	created.Title = TruncateField(entry.Title)
	created.Content = TruncateField(entry.Content)
	created.CreatedAt = time.Now().UTC()
	return &created, nil
}

// UpdateQA patches the page properties that are set on the entry.
func (n *NotionStore) UpdateQA(ctx context.Context, entry *QAEntry) error {
	properties := map[string]any{}
	if entry.Title != "" {
		properties["Title"] = titleProperty(TruncateField(entry.Title))
	}
	if entry.Content != "" {
		properties["Text"] = richTextProperty(TruncateField(entry.Content))
	}
	if entry.Category != "" {
		properties["Category"] = selectProperty(entry.Category.RemoteName())
	}
	if len(entry.Tags) > 0 {
		properties["Tags"] = richTextProperty(strings.Join(entry.Tags, ", "))
	}

	body := map[string]any{"properties": properties}
	if err := n.doJSON(ctx, http.MethodPatch, "/pages/"+entry.ID, body, nil); err != nil {
		return fmt.Errorf("updating qa entry: %w", err)
	}
	return nil
}

// ArchiveQA archives the page, the remote store's delete.
func (n *NotionStore) ArchiveQA(ctx context.Context, id string) error {
	body := map[string]any{"archived": true}
	if err := n.doJSON(ctx, http.MethodPatch, "/pages/"+id, body, nil); err != nil {
		return fmt.Errorf("archiving qa entry: %w", err)
	}
	return nil
}

// ListReading fetches reading entries, newest first. An empty category lists all.
func (n *NotionStore) ListReading(ctx context.Context, category Category) ([]*ReadingEntry, error) {
	filters := []any{
		map[string]any{
			"property": "Type",
			"select":   map[string]bool{"is_not_empty": true},
		},
	}
	if category != "" {
		filters = append(filters, map[string]any{
			"property": "Category",
			"select":   map[string]string{"equals": category.RemoteName()},
		})
	}
	filter := map[string]any{"and": filters}

	pages, err := n.queryDatabase(ctx, n.readingDB, filter)
	if err != nil {
		return nil, fmt.Errorf("listing reading entries: %w", err)
	}

	entries := make([]*ReadingEntry, 0, len(pages))
	for _, page := range pages {
		entries = append(entries, readingEntryFromPage(page))
	}
	return entries, nil
}

// readingEntryFromPage converts a raw page into a typed ReadingEntry.
func readingEntryFromPage(page notionPage) *ReadingEntry {
	entry := &ReadingEntry{
		ID:        page.ID,
		Kind:      KindOptional,
		CreatedAt: pageCreatedAt(page),
	}

	if prop, ok := firstProperty(page, "Text", "Title", "Name"); ok {
		entry.Text = plainText(prop.RichText)
		if entry.Text == "" {
			entry.Text = plainText(prop.Title)
		}
	}
	if prop, ok := page.Properties["Title"]; ok {
		entry.Title = plainText(prop.Title)
	}

	// The link lives in the text when present, otherwise in the URL property.
	entry.Link = ExtractLink(entry.Text)
	if entry.Link == "" {
		if prop, ok := firstProperty(page, "Links", "Link"); ok {
			entry.Link = prop.URL
		}
	}

	if prop, ok := page.Properties["Type"]; ok && prop.Select != nil {
		if strings.EqualFold(prop.Select.Name, "required") {
			entry.Kind = KindRequired
		}
	}
	if prop, ok := page.Properties["Category"]; ok && prop.Select != nil {
		entry.Category = parseRemoteCategory(prop.Select.Name)
	}
	return entry
}

// CreateReading writes a new reading page and returns the entry with its remote ID.
func (n *NotionStore) CreateReading(ctx context.Context, entry *ReadingEntry) (*ReadingEntry, error) {
	properties := map[string]any{}
	if entry.Title != "" {
		properties["Title"] = titleProperty(TruncateField(entry.Title))
	}
	if entry.Text != "" {
		properties["Text"] = richTextProperty(TruncateField(entry.Text))
	}
	if entry.Kind != "" {
		properties["Type"] = selectProperty(entry.Kind.RemoteName())
	}
	if entry.Category != "" {
		properties["Category"] = selectProperty(entry.Category.RemoteName())
	}
	if entry.Link != "" {
		properties["Links"] = map[string]any{"url": entry.Link}
	}

	body := map[string]any{
		"parent":     map[string]string{"database_id": n.readingDB},
		"properties": properties,
	}

	var page notionPage
	if err := n.doJSON(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, fmt.Errorf("creating reading entry: %w", err)
	}

	created := *entry
	created.ID = page.ID
	created.Title = TruncateField(entry.Title)
	created.Text = TruncateField(entry.Text)
	created.CreatedAt = time.Now().UTC()
	return &created, nil
}

// UpdateReading patches the page properties that are set on the entry.
func (n *NotionStore) UpdateReading(ctx context.Context, entry *ReadingEntry) error {
	properties := map[string]any{}
	if entry.Title != "" {
		properties["Title"] = titleProperty(TruncateField(entry.Title))
	}
	if entry.Text != "" {
		properties["Text"] = richTextProperty(TruncateField(entry.Text))
	}
	if entry.Kind != "" {
		properties["Type"] = selectProperty(entry.Kind.RemoteName())
	}
	if entry.Category != "" {
		properties["Category"] = selectProperty(entry.Category.RemoteName())
	}
	if entry.Link != "" {
		properties["Links"] = map[string]any{"url": entry.Link}
	}

	body := map[string]any{"properties": properties}
	if err := n.doJSON(ctx, http.MethodPatch, "/pages/"+entry.ID, body, nil); err != nil {
		return fmt.Errorf("updating reading entry: %w", err)
	}
	return nil
}

// ArchiveReading archives the page, the remote store's delete.
func (n *NotionStore) ArchiveReading(ctx context.Context, id string) error {
	body := map[string]any{"archived": true}
	if err := n.doJSON(ctx, http.MethodPatch, "/pages/"+id, body, nil); err != nil {
		return fmt.Errorf("archiving reading entry: %w", err)
	}
	return nil
}

// Close releases the HTTP client's idle connections.
func (n *NotionStore) Close() error {
	n.client.CloseIdleConnections()
	return nil
}

// titleProperty builds a Notion title property payload.
func titleProperty(content string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]string{"content": content}},
		},
	}
}

// richTextProperty builds a Notion rich_text property payload.
func richTextProperty(content string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]string{"content": content}},
		},
	}
}

// selectProperty builds a Notion select property payload.
func selectProperty(name string) map[string]any {
	return map[string]any{
		"select": map[string]string{"name": name},
	}
}
