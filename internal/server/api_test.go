// ABOUTME: Tests for the REST API handlers using an in-memory store
// ABOUTME: Covers the response envelope, validation errors, and status mapping

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenli/kbase/internal/store"
	"github.com/wenli/kbase/internal/summarize"
)

// stubSummarizer returns a canned result, or ErrInvalidURL for bad input.
type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, rawURL string, category store.Category) (*summarize.Result, error) {
	if !strings.HasPrefix(rawURL, "http") {
		return nil, summarize.ErrInvalidURL
	}
	return &summarize.Result{
		Title:       "Stub Title",
		Summary:     fmt.Sprintf("From a %s perspective: stub", category),
		OriginalURL: rawURL,
	}, nil
}

func newTestServer(t *testing.T) (*Server, *store.MockStore) {
	t.Helper()
	ms := store.NewMockStore()
	s, err := New(Config{
		Addr:       ":0",
		Store:      ms,
		Summarizer: stubSummarizer{},
	})
	require.NoError(t, err)
	return s, ms
}

func doRequest(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var envelope apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func decodeData[T any](t *testing.T, envelope apiResponse) T {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCreateQA(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title:    "What is churn?",
		Content:  "Customers leaving.",
		Category: "product",
		Tags:     []string{"metrics"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)

	entry := decodeData[QAEntryResponse](t, envelope)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "What is churn?", entry.Title)
	assert.Equal(t, "product", entry.Category)
	assert.Equal(t, []string{"metrics"}, entry.Tags)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestCreateQA_MissingFields(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title: "no content or category",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "missing_fields", envelope.Error)
	assert.NotEmpty(t, envelope.Message)
}

func TestCreateQA_InvalidCategory(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title:    "t",
		Content:  "c",
		Category: "finance",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_category", envelope.Error)
}

func TestCreateQA_TruncatesLongContent(t *testing.T) {
	s, _ := newTestServer(t)

	_, envelope := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title:    "t",
		Content:  strings.Repeat("x", 2500),
		Category: "strategy",
	})

	entry := decodeData[QAEntryResponse](t, envelope)
	assert.True(t, strings.HasSuffix(entry.Content, store.TruncationMarker))
}

func TestCreateQA_TruncatesLongTitle(t *testing.T) {
	s, _ := newTestServer(t)

	_, envelope := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title:    strings.Repeat("t", 2500),
		Content:  "c",
		Category: "strategy",
	})

	entry := decodeData[QAEntryResponse](t, envelope)
	assert.True(t, strings.HasSuffix(entry.Title, store.TruncationMarker))
	title := strings.TrimSuffix(entry.Title, store.TruncationMarker)
	assert.LessOrEqual(t, len([]rune(title)), store.MaxFieldLen)
}

func TestListQA_FiltersByCategory(t *testing.T) {
	s, _ := newTestServer(t)

	for _, cat := range []string{"strategy", "product"} {
		_, envelope := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
			Title: "q-" + cat, Content: "c", Category: cat,
		})
		require.True(t, envelope.Success)
	}

	rec, envelope := doRequest(t, s, http.MethodGet, "/api/qa?category=strategy", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	entries := decodeData[[]QAEntryResponse](t, envelope)
	require.Len(t, entries, 1)
	assert.Equal(t, "q-strategy", entries[0].Title)
}

func TestListQA_InvalidCategory(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodGet, "/api/qa?category=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_category", envelope.Error)
}

func TestUpdateQA(t *testing.T) {
	s, _ := newTestServer(t)

	_, created := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title: "before", Content: "c", Category: "technology",
	})
	id := decodeData[QAEntryResponse](t, created).ID

	rec, envelope := doRequest(t, s, http.MethodPut, "/api/qa", UpdateQARequest{
		ID: id, Title: "after", Content: "c2", Category: "technology",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "after", decodeData[QAEntryResponse](t, envelope).Title)

	// List reflects the update
	_, listed := doRequest(t, s, http.MethodGet, "/api/qa?category=technology", nil)
	entries := decodeData[[]QAEntryResponse](t, listed)
	require.Len(t, entries, 1)
	assert.Equal(t, "after", entries[0].Title)
}

func TestUpdateQA_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPut, "/api/qa", UpdateQARequest{
		ID: "missing", Title: "t", Content: "c",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "not_found", envelope.Error)
}

func TestDeleteQA(t *testing.T) {
	s, _ := newTestServer(t)

	_, created := doRequest(t, s, http.MethodPost, "/api/qa", CreateQARequest{
		Title: "t", Content: "c", Category: "strategy",
	})
	id := decodeData[QAEntryResponse](t, created).ID

	rec, _ := doRequest(t, s, http.MethodDelete, "/api/qa?id="+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second delete of the same entry surfaces the failure
	rec, envelope := doRequest(t, s, http.MethodDelete, "/api/qa?id="+id, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "not_found", envelope.Error)
}

func TestDeleteQA_MissingID(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodDelete, "/api/qa", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", envelope.Error)
}

func TestCreateReading_ExtractsLink(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/reading", CreateReadingRequest{
		Text:     "read https://example.com/post soon",
		Type:     "required",
		Category: "technology",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	entry := decodeData[ReadingEntryResponse](t, envelope)
	assert.Equal(t, "https://example.com/post", entry.Link)
	assert.Equal(t, "required", entry.Type)
}

func TestCreateReading_InvalidType(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/reading", CreateReadingRequest{
		Text: "t", Type: "urgent", Category: "product",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_type", envelope.Error)
}

func TestDeleteReading(t *testing.T) {
	s, _ := newTestServer(t)

	_, created := doRequest(t, s, http.MethodPost, "/api/reading", CreateReadingRequest{
		Text: "t", Type: "optional", Category: "product",
	})
	id := decodeData[ReadingEntryResponse](t, created).ID

	rec, _ := doRequest(t, s, http.MethodDelete, "/api/reading?id="+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, listed := doRequest(t, s, http.MethodGet, "/api/reading?category=product", nil)
	assert.Empty(t, decodeData[[]ReadingEntryResponse](t, listed))
}

func TestSummarize(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/summarize", SummarizeRequest{
		URL:      "https://example.com/article",
		Category: "strategy",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	res := decodeData[SummarizeResponse](t, envelope)
	assert.Equal(t, "Stub Title", res.Title)
	assert.Contains(t, res.Summary, "strategy")
	assert.Equal(t, "https://example.com/article", res.OriginalURL)
}

func TestSummarize_InvalidURL(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/summarize", SummarizeRequest{
		URL:      "not-a-url",
		Category: "strategy",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_url", envelope.Error)
}

func TestSummarize_MissingFields(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/summarize", SummarizeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", envelope.Error)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/qa", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/summarize", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
