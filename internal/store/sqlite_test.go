// ABOUTME: Integration tests for the SQLite store using an in-memory database
// ABOUTME: Validates schema creation, ordering, soft deletes, and truncation

package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_QALifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{
		Title:    "What is positioning?",
		Content:  "A place in the mind.",
		Category: CategoryStrategy,
		Tags:     []string{"marketing", "basics"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	entries, err := s.ListQA(ctx, CategoryStrategy)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].ID)
	assert.Equal(t, []string{"marketing", "basics"}, entries[0].Tags)

	updated := *created
	updated.Content = "A place in the prospect's mind."
	require.NoError(t, s.UpdateQA(ctx, &updated))

	entries, err = s.ListQA(ctx, CategoryStrategy)
	require.NoError(t, err)
	assert.Equal(t, "A place in the prospect's mind.", entries[0].Content)

	require.NoError(t, s.ArchiveQA(ctx, created.ID))
	entries, err = s.ListQA(ctx, CategoryStrategy)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLiteStore_ArchiveTwiceFails(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{Title: "q", Content: "a", Category: CategoryProduct})
	require.NoError(t, err)

	require.NoError(t, s.ArchiveQA(ctx, created.ID))
	assert.ErrorIs(t, s.ArchiveQA(ctx, created.ID), ErrNotFound)
}

func TestSQLiteStore_UpdateMissing(t *testing.T) {
	s := newTestSQLiteStore(t)
	err := s.UpdateQA(context.Background(), &QAEntry{ID: "nope", Category: CategoryProduct})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListQA_NewestFirst(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	// Insert with explicit timestamps to avoid same-instant ordering flakes
	older := &QAEntry{Title: "older", Content: "c", Category: CategoryProduct}
	newer := &QAEntry{Title: "newer", Content: "c", Category: CategoryProduct}

	createdOlder, err := s.CreateQA(ctx, older)
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE qa_entries SET created_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Hour), createdOlder.ID)
	require.NoError(t, err)

	createdNewer, err := s.CreateQA(ctx, newer)
	require.NoError(t, err)

	entries, err := s.ListQA(ctx, CategoryProduct)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, createdNewer.ID, entries[0].ID)
	assert.Equal(t, createdOlder.ID, entries[1].ID)
}

func TestSQLiteStore_ReadingLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateReading(ctx, &ReadingEntry{
		Text:     "https://example.com/paper",
		Kind:     KindRequired,
		Category: CategoryTechnology,
		Title:    "A paper",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/paper", created.Link)

	entries, err := s.ListReading(ctx, CategoryTechnology)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindRequired, entries[0].Kind)
	assert.Equal(t, "A paper", entries[0].Title)

	require.NoError(t, s.ArchiveReading(ctx, created.ID))
	assert.ErrorIs(t, s.ArchiveReading(ctx, created.ID), ErrNotFound)
}

func TestSQLiteStore_CreateReading_Truncates(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateReading(ctx, &ReadingEntry{
		Text:     strings.Repeat("r", 2100),
		Kind:     KindOptional,
		Category: CategoryStrategy,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(created.Text, TruncationMarker))
	body := strings.TrimSuffix(created.Text, TruncationMarker)
	assert.LessOrEqual(t, len([]rune(body)), MaxFieldLen)
}
