// ABOUTME: Tests for the link summarizer's extraction and fallback behavior
// ABOUTME: Uses an httptest server standing in for target pages

package summarize

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenli/kbase/internal/store"
)

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSummarize_TitleAndDescription(t *testing.T) {
	srv := pageServer(t, `<html><head>
		<title>Platform Thinking</title>
		<meta name="description" content="How platforms beat pipelines.">
	</head><body></body></html>`)

	s := New(WithClient(srv.Client()))
	res, err := s.Summarize(t.Context(), srv.URL, store.CategoryStrategy)
	require.NoError(t, err)

	assert.Equal(t, "Platform Thinking", res.Title)
	assert.Equal(t, "From a strategy perspective: How platforms beat pipelines.", res.Summary)
	assert.Equal(t, srv.URL, res.OriginalURL)
}

func TestSummarize_CategoryPrefixVaries(t *testing.T) {
	srv := pageServer(t, `<html><head>
		<title>T</title>
		<meta name="description" content="desc">
	</head></html>`)
	s := New(WithClient(srv.Client()))

	res, err := s.Summarize(t.Context(), srv.URL, store.CategoryTechnology)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Summary, "From a technology perspective: "))
}

func TestSummarize_NoDescriptionFallsBackToTitle(t *testing.T) {
	srv := pageServer(t, `<html><head><title>Just a Title</title></head></html>`)
	s := New(WithClient(srv.Client()))

	res, err := s.Summarize(t.Context(), srv.URL, store.CategoryProduct)
	require.NoError(t, err)

	assert.Equal(t, "Just a Title", res.Title)
	assert.Contains(t, res.Summary, "Just a Title")
}

func TestSummarize_LongTitleTruncated(t *testing.T) {
	long := strings.Repeat("t", 150)
	srv := pageServer(t, "<html><head><title>"+long+"</title></head></html>")
	s := New(WithClient(srv.Client()))

	res, err := s.Summarize(t.Context(), srv.URL, store.CategoryProduct)
	require.NoError(t, err)

	assert.Len(t, []rune(res.Title), 103)
	assert.True(t, strings.HasSuffix(res.Title, "..."))
}

func TestSummarize_FetchFailureYieldsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	s := New(WithClient(srv.Client()))
	res, err := s.Summarize(t.Context(), srv.URL, store.CategoryStrategy)
	require.NoError(t, err)

	assert.Equal(t, "Web page", res.Title)
	assert.NotEmpty(t, res.Summary)
}

func TestSummarize_UnreachableHostYieldsFallback(t *testing.T) {
	s := New()
	res, err := s.Summarize(t.Context(), "http://127.0.0.1:1/nope", store.CategoryStrategy)
	require.NoError(t, err)
	assert.Equal(t, "Web page", res.Title)
}

func TestSummarize_InvalidURL(t *testing.T) {
	s := New()

	_, err := s.Summarize(t.Context(), "not a url", store.CategoryStrategy)
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = s.Summarize(t.Context(), "ftp://example.com/file", store.CategoryStrategy)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestSummarize_SendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><title>ok</title></head></html>`))
	}))
	t.Cleanup(srv.Close)

	s := New(WithClient(srv.Client()))
	_, err := s.Summarize(t.Context(), srv.URL, store.CategoryProduct)
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
}
