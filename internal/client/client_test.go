// ABOUTME: Tests for the API client against a real server instance
// ABOUTME: Exercises the full round trip through handlers and envelope decoding

package client

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenli/kbase/internal/server"
	"github.com/wenli/kbase/internal/store"
	"github.com/wenli/kbase/internal/summarize"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	srv, err := server.New(server.Config{
		Addr:       ":0",
		Store:      store.NewMockStore(),
		Summarizer: summarize.New(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return NewWithHTTPClient(ts.URL, ts.Client())
}

func TestProbe(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.Probe(t.Context()))
}

func TestProbe_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	assert.Error(t, c.Probe(t.Context()))
}

func TestQALifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := t.Context()

	created, err := c.CreateQA(ctx, &store.QAEntry{
		Title:    "What is NPS?",
		Content:  "Net promoter score.",
		Category: store.CategoryProduct,
		Tags:     []string{"metrics"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	entries, err := c.ListQA(ctx, store.CategoryProduct)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].ID)
	assert.Equal(t, []string{"metrics"}, entries[0].Tags)

	created.Title = "What is NPS really?"
	updated, err := c.UpdateQA(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "What is NPS really?", updated.Title)

	require.NoError(t, c.DeleteQA(ctx, created.ID))

	entries, err = c.ListQA(ctx, store.CategoryProduct)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteQA_NotFoundSurfacesAPIError(t *testing.T) {
	c := newTestClient(t)

	err := c.DeleteQA(t.Context(), "missing-id")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestReadingLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := t.Context()

	created, err := c.CreateReading(ctx, &store.ReadingEntry{
		Text:     "read https://example.com/paper",
		Kind:     store.KindRequired,
		Category: store.CategoryTechnology,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/paper", created.Link)
	assert.Equal(t, store.KindRequired, created.Kind)

	entries, err := c.ListReading(ctx, store.CategoryTechnology)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	created.Kind = store.KindOptional
	updated, err := c.UpdateReading(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, store.KindOptional, updated.Kind)

	require.NoError(t, c.DeleteReading(ctx, created.ID))
}

func TestCreateQA_ValidationErrorCarriesMessage(t *testing.T) {
	c := newTestClient(t)

	_, err := c.CreateQA(t.Context(), &store.QAEntry{Title: "only a title"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "missing_fields", apiErr.Code)
	assert.NotEmpty(t, apiErr.Message)
}
