// ABOUTME: Typed HTTP client for the kbase REST API
// ABOUTME: Decodes the response envelope and converts wire forms back to store types

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wenli/kbase/internal/store"
)

// Client talks to a kbase server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient creates a Client with a custom HTTP client, mainly for tests.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// qaWire is the wire form of a QA entry.
type qaWire struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Timestamp string   `json:"timestamp"`
}

// readingWire is the wire form of a reading entry.
type readingWire struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Link      string `json:"link"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// Summary is the result of a summarize call.
type Summary struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	OriginalURL string `json:"original_url"`
}

func qaFromWire(w qaWire) *store.QAEntry {
	created, _ := time.Parse(time.RFC3339, w.Timestamp)
	return &store.QAEntry{
		ID:        w.ID,
		Title:     w.Title,
		Content:   w.Content,
		Category:  store.Category(w.Category),
		Tags:      w.Tags,
		CreatedAt: created,
	}
}

func readingFromWire(w readingWire) *store.ReadingEntry {
	created, _ := time.Parse(time.RFC3339, w.Timestamp)
	return &store.ReadingEntry{
		ID:        w.ID,
		Text:      w.Text,
		Link:      w.Link,
		Kind:      store.Kind(w.Type),
		Category:  store.Category(w.Category),
		Title:     w.Title,
		CreatedAt: created,
	}
}

// Probe checks whether the server is reachable.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("probing server: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// ListQA fetches QA entries, optionally filtered by category.
func (c *Client) ListQA(ctx context.Context, category store.Category) ([]*store.QAEntry, error) {
	path := "/api/qa"
	if category != "" {
		path += "?category=" + url.QueryEscape(string(category))
	}

	var wires []qaWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}

	entries := make([]*store.QAEntry, len(wires))
	for i, w := range wires {
		entries[i] = qaFromWire(w)
	}
	return entries, nil
}

// CreateQA creates a QA entry and returns it with its server-assigned ID.
func (c *Client) CreateQA(ctx context.Context, entry *store.QAEntry) (*store.QAEntry, error) {
	body := map[string]any{
		"title":    entry.Title,
		"content":  entry.Content,
		"category": string(entry.Category),
		"tags":     entry.Tags,
	}
	var wire qaWire
	if err := c.do(ctx, http.MethodPost, "/api/qa", body, &wire); err != nil {
		return nil, err
	}
	return qaFromWire(wire), nil
}

// UpdateQA updates a QA entry and returns the server's view of it.
func (c *Client) UpdateQA(ctx context.Context, entry *store.QAEntry) (*store.QAEntry, error) {
	body := map[string]any{
		"id":       entry.ID,
		"title":    entry.Title,
		"content":  entry.Content,
		"category": string(entry.Category),
		"tags":     entry.Tags,
	}
	var wire qaWire
	if err := c.do(ctx, http.MethodPut, "/api/qa", body, &wire); err != nil {
		return nil, err
	}
	return qaFromWire(wire), nil
}

// DeleteQA archives a QA entry by ID.
func (c *Client) DeleteQA(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/qa?id="+url.QueryEscape(id), nil, nil)
}

// ListReading fetches reading entries, optionally filtered by category.
func (c *Client) ListReading(ctx context.Context, category store.Category) ([]*store.ReadingEntry, error) {
	path := "/api/reading"
	if category != "" {
		path += "?category=" + url.QueryEscape(string(category))
	}

	var wires []readingWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}

	entries := make([]*store.ReadingEntry, len(wires))
	for i, w := range wires {
		entries[i] = readingFromWire(w)
	}
	return entries, nil
}

// CreateReading creates a reading entry and returns it with its server-assigned ID.
func (c *Client) CreateReading(ctx context.Context, entry *store.ReadingEntry) (*store.ReadingEntry, error) {
	body := map[string]any{
		"text":     entry.Text,
		"type":     string(entry.Kind),
		"category": string(entry.Category),
		"link":     entry.Link,
		"title":    entry.Title,
	}
	var wire readingWire
	if err := c.do(ctx, http.MethodPost, "/api/reading", body, &wire); err != nil {
		return nil, err
	}
	return readingFromWire(wire), nil
}

// UpdateReading updates a reading entry and returns the server's view of it.
func (c *Client) UpdateReading(ctx context.Context, entry *store.ReadingEntry) (*store.ReadingEntry, error) {
	body := map[string]any{
		"id":       entry.ID,
		"text":     entry.Text,
		"type":     string(entry.Kind),
		"category": string(entry.Category),
		"link":     entry.Link,
		"title":    entry.Title,
	}
	var wire readingWire
	if err := c.do(ctx, http.MethodPut, "/api/reading", body, &wire); err != nil {
		return nil, err
	}
	return readingFromWire(wire), nil
}

// DeleteReading archives a reading entry by ID.
func (c *Client) DeleteReading(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reading?id="+url.QueryEscape(id), nil, nil)
}

// Summarize asks the server to summarize a link for the given category.
func (c *Client) Summarize(ctx context.Context, rawURL string, category store.Category) (*Summary, error) {
	body := map[string]any{
		"url":      rawURL,
		"category": string(category),
	}
	var summary Summary
	if err := c.do(ctx, http.MethodPost, "/api/summarize", body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// do performs a request against the API, decoding the envelope. A non-success
// envelope becomes an error carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decoding response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return &APIError{Status: resp.StatusCode, Code: env.Error, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
		}
	}
	return nil
}

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d, %s): %s", e.Status, e.Code, e.Message)
}
