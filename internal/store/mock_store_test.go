// ABOUTME: Tests for the in-memory MockStore implementation
// ABOUTME: Validates ordering, copies, truncation, and not-found behavior

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_CreateAndListQA(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	first, err := s.CreateQA(ctx, &QAEntry{Title: "Q1", Content: "A1", Category: CategoryProduct})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.CreateQA(ctx, &QAEntry{Title: "Q2", Content: "A2", Category: CategoryProduct})
	require.NoError(t, err)

	entries, err := s.ListQA(ctx, CategoryProduct)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestMockStore_ListQA_CategoryIsolation(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	_, err := s.CreateQA(ctx, &QAEntry{Title: "Q1", Content: "A1", Category: CategoryProduct})
	require.NoError(t, err)

	entries, err := s.ListQA(ctx, CategoryStrategy)
	require.NoError(t, err)
	assert.Empty(t, entries)

	all, err := s.ListQA(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMockStore_ListQA_ReturnsCopies(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{Title: "Q1", Content: "A1", Category: CategoryProduct})
	require.NoError(t, err)

	entries, err := s.ListQA(ctx, CategoryProduct)
	require.NoError(t, err)
	entries[0].Title = "mutated"

	again, err := s.ListQA(ctx, CategoryProduct)
	require.NoError(t, err)
	assert.Equal(t, "Q1", again[0].Title)
	assert.Equal(t, created.ID, again[0].ID)
}

func TestMockStore_UpdateQA(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{Title: "Q1", Content: "A1", Category: CategoryProduct})
	require.NoError(t, err)

	updated := *created
	updated.Content = "A1 revised"
	require.NoError(t, s.UpdateQA(ctx, &updated))

	entries, err := s.ListQA(ctx, CategoryProduct)
	require.NoError(t, err)
	assert.Equal(t, "A1 revised", entries[0].Content)
}

func TestMockStore_UpdateQA_NotFound(t *testing.T) {
	s := NewMockStore()
	err := s.UpdateQA(context.Background(), &QAEntry{ID: "missing", Category: CategoryProduct})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_ArchiveQA(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{Title: "Q1", Content: "A1", Category: CategoryProduct})
	require.NoError(t, err)

	require.NoError(t, s.ArchiveQA(ctx, created.ID))

	entries, err := s.ListQA(ctx, CategoryProduct)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A second delete of the same id is an error, not a silent no-op
	assert.ErrorIs(t, s.ArchiveQA(ctx, created.ID), ErrNotFound)
}

func TestMockStore_CreateQA_TruncatesOversizedContent(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{
		Title:    "big",
		Content:  strings.Repeat("x", 2100),
		Category: CategoryProduct,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(created.Content, TruncationMarker))
	body := strings.TrimSuffix(created.Content, TruncationMarker)
	assert.LessOrEqual(t, len([]rune(body)), MaxFieldLen)
}

func TestMockStore_CreateQA_TruncatesOversizedTitle(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateQA(ctx, &QAEntry{
		Title:    strings.Repeat("t", 2100),
		Content:  "c",
		Category: CategoryProduct,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(created.Title, TruncationMarker))
	title := strings.TrimSuffix(created.Title, TruncationMarker)
	assert.LessOrEqual(t, len([]rune(title)), MaxFieldLen)
}

func TestMockStore_CreateReading_ExtractsLink(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateReading(ctx, &ReadingEntry{
		Text:     "read https://example.com/post first",
		Kind:     KindRequired,
		Category: CategoryStrategy,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/post", created.Link)
}

func TestMockStore_ReadingLifecycle(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreateReading(ctx, &ReadingEntry{
		Text:     "a paper",
		Kind:     KindOptional,
		Category: CategoryTechnology,
	})
	require.NoError(t, err)

	updated := *created
	updated.Kind = KindRequired
	require.NoError(t, s.UpdateReading(ctx, &updated))

	entries, err := s.ListReading(ctx, CategoryTechnology)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindRequired, entries[0].Kind)

	require.NoError(t, s.ArchiveReading(ctx, created.ID))
	assert.ErrorIs(t, s.ArchiveReading(ctx, created.ID), ErrNotFound)
}
