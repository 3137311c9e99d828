// ABOUTME: Tests for the Notion store's request building and parse boundary
// ABOUTME: Uses an httptest server standing in for the Notion API

package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestNotionStore points a NotionStore at a local httptest server.
func newTestNotionStore(t *testing.T, handler http.Handler) *NotionStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewNotionStore(NotionConfig{APIKey: "secret", DatabaseID: "db-qa", ReadingDatabaseID: "db-reading"})
	require.NoError(t, err)
	s.baseURL = srv.URL
	s.client = srv.Client()
	return s
}

const qaQueryFixture = `{
	"results": [
		{
			"id": "page-1",
			"created_time": "2026-08-01T10:00:00.000Z",
			"properties": {
				"Title": {"title": [{"plain_text": "What is MVP?", "annotations": {}}]},
				"Text": {"rich_text": [
					{"plain_text": "Minimum ", "annotations": {"bold": true}},
					{"plain_text": "viable", "annotations": {"italic": true}},
					{"plain_text": " product", "annotations": {}}
				]},
				"Category": {"select": {"name": "Product"}},
				"Tags": {"rich_text": [{"plain_text": "lean, startup", "annotations": {}}]}
			}
		}
	]
}`

func TestNotionStore_ListQA_ParsesPages(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, notionVersion, r.Header.Get("Notion-Version"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(qaQueryFixture))
	}))

	entries, err := s.ListQA(t.Context(), CategoryProduct)
	require.NoError(t, err)

	assert.Equal(t, "/databases/db-qa/query", gotPath)
	assert.Contains(t, gotBody, "filter")
	assert.Contains(t, gotBody, "sorts")

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "page-1", e.ID)
	assert.Equal(t, "What is MVP?", e.Title)
	assert.Equal(t, "**Minimum **"+"*viable*"+" product", e.Content)
	assert.Equal(t, CategoryProduct, e.Category)
	assert.Equal(t, []string{"lean", "startup"}, e.Tags)
	assert.Equal(t, 2026, e.CreatedAt.Year())
}

func TestNotionStore_ListQA_NoFilterWithoutCategory(t *testing.T) {
	var gotBody map[string]any
	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"results": []}`))
	}))

	_, err := s.ListQA(t.Context(), "")
	require.NoError(t, err)
	assert.NotContains(t, gotBody, "filter")
}

func TestNotionStore_CreateQA_TruncatesAndReturnsRemoteID(t *testing.T) {
	var gotBody struct {
		Parent     map[string]string         `json:"parent"`
		Properties map[string]map[string]any `json:"properties"`
	}

	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id": "page-new", "created_time": "2026-08-20T00:00:00.000Z", "properties": {}}`))
	}))

	created, err := s.CreateQA(t.Context(), &QAEntry{
		Title:    "Q",
		Content:  strings.Repeat("x", 2100),
		Category: CategoryStrategy,
	})
	require.NoError(t, err)

	assert.Equal(t, "page-new", created.ID)
	assert.Equal(t, "db-qa", gotBody.Parent["database_id"])
	assert.Contains(t, gotBody.Properties, "Title")
	assert.Contains(t, gotBody.Properties, "Text")
	assert.Contains(t, gotBody.Properties, "Category")
	assert.True(t, strings.HasSuffix(created.Content, TruncationMarker))
}

func TestNotionStore_ArchiveQA(t *testing.T) {
	var gotBody map[string]any
	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/pages/page-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, s.ArchiveQA(t.Context(), "page-1"))
	assert.Equal(t, true, gotBody["archived"])
}

func TestNotionStore_ArchiveQA_NotFound(t *testing.T) {
	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := s.ArchiveQA(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotionStore_ListReading_ParsesKindAndLink(t *testing.T) {
	fixture := `{
		"results": [
			{
				"id": "read-1",
				"created_time": "2026-08-02T10:00:00.000Z",
				"properties": {
					"Text": {"rich_text": [{"plain_text": "read https://example.com/x today", "annotations": {}}]},
					"Type": {"select": {"name": "Required"}},
					"Category": {"select": {"name": "Technology"}}
				}
			},
			{
				"id": "read-2",
				"created_time": "2026-08-01T10:00:00.000Z",
				"properties": {
					"Text": {"rich_text": [{"plain_text": "an offline book", "annotations": {}}]},
					"Links": {"url": "https://example.com/book"},
					"Type": {"select": {"name": "Optional"}},
					"Category": {"select": {"name": "Technology"}}
				}
			}
		]
	}`

	var gotBody map[string]any
	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db-reading/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(fixture))
	}))

	entries, err := s.ListReading(t.Context(), CategoryTechnology)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, KindRequired, entries[0].Kind)
	assert.Equal(t, "https://example.com/x", entries[0].Link)
	assert.Equal(t, KindOptional, entries[1].Kind)
	assert.Equal(t, "https://example.com/book", entries[1].Link)
}

func TestNotionStore_APIError(t *testing.T) {
	s := newTestNotionStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "body failed validation"}`))
	}))

	_, err := s.ListQA(t.Context(), CategoryProduct)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body failed validation")
}
