// ABOUTME: Best-effort link summarizer that scrapes a page's title and meta description
// ABOUTME: Scrape failures yield a generic fallback summary, never an error

package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wenli/kbase/internal/store"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultTimeout   = 10 * time.Second

	maxTitleLen = 100

	fallbackTitle   = "Web page"
	fallbackContent = "A saved web link"
)

// categoryPrefixes prepends a topic framing to the scraped description.
var categoryPrefixes = map[store.Category]string{
	store.CategoryStrategy:   "From a strategy perspective: ",
	store.CategoryProduct:    "From a product perspective: ",
	store.CategoryTechnology: "From a technology perspective: ",
}

// ErrInvalidURL is returned when the submitted URL cannot be parsed.
var ErrInvalidURL = fmt.Errorf("invalid url")

// Result is the summary produced for a link.
type Result struct {
	Title       string
	Summary     string
	OriginalURL string
}

// Summarizer fetches pages and extracts titles and descriptions.
type Summarizer struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithClient overrides the HTTP client, mainly for tests.
func WithClient(client *http.Client) Option {
	return func(s *Summarizer) { s.client = client }
}

// WithUserAgent overrides the User-Agent header sent to target pages.
func WithUserAgent(ua string) Option {
	return func(s *Summarizer) { s.userAgent = ua }
}

// New creates a Summarizer with sane defaults.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.Default().With("component", "summarize"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize fetches rawURL and produces a title and category-framed summary.
// Only a malformed URL is an error; fetch and parse failures return the
// generic fallback result instead.
func (s *Summarizer) Summarize(ctx context.Context, rawURL string, category store.Category) (*Result, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	title, desc, err := s.fetchPage(ctx, rawURL)
	if err != nil {
		s.logger.Debug("page fetch failed, using fallback summary", "url", rawURL, "error", err)
		title, desc = fallbackTitle, ""
	}

	return &Result{
		Title:       truncateTitle(title),
		Summary:     buildSummary(title, desc, category),
		OriginalURL: rawURL,
	}, nil
}

// fetchPage retrieves the target page and extracts its title and meta description.
func (s *Summarizer) fetchPage(ctx context.Context, rawURL string) (title, desc string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("parsing page: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	desc, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	return title, strings.TrimSpace(desc), nil
}

// buildSummary frames the description with the category prefix, falling
// back to a generic line mentioning the title.
func buildSummary(title, desc string, category store.Category) string {
	if desc == "" {
		return fmt.Sprintf("%s about %s.", fallbackContent, truncateTitle(title))
	}
	return categoryPrefixes[category] + desc
}

// truncateTitle caps the title at maxTitleLen runes.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen]) + "..."
}
