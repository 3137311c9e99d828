// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite or a remote document store

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
// Lists are kept newest-first so reads match the remote store's
// creation-descending ordering.
type MockStore struct {
	mu      sync.RWMutex
	qa      map[Category][]*QAEntry
	reading map[Category][]*ReadingEntry
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		qa:      make(map[Category][]*QAEntry),
		reading: make(map[Category][]*ReadingEntry),
	}
}

// ListQA returns all QA entries for a category, newest first.
// An empty category returns entries across all categories.
func (m *MockStore) ListQA(ctx context.Context, category Category) ([]*QAEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*QAEntry
	for _, cat := range Categories {
		if category != "" && cat != category {
			continue
		}
		for _, e := range m.qa[cat] {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

// CreateQA stores a new QA entry, assigning an ID and creation time.
func (m *MockStore) CreateQA(ctx context.Context, entry *QAEntry) (*QAEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *entry
	created.ID = uuid.New().String()
	created.Title = TruncateField(created.Title)
	created.Content = TruncateField(created.Content)
	created.CreatedAt = time.Now().UTC()

	m.qa[created.Category] = append([]*QAEntry{&created}, m.qa[created.Category]...)

	result := created
	return &result, nil
}

// UpdateQA replaces the stored entry with the same ID.
func (m *MockStore) UpdateQA(ctx context.Context, entry *QAEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for cat, entries := range m.qa {
		for i, e := range entries {
			if e.ID == entry.ID {
				updated := *entry
				updated.Title = TruncateField(updated.Title)
				updated.Content = TruncateField(updated.Content)
				updated.CreatedAt = e.CreatedAt
				m.qa[cat][i] = &updated
				return nil
			}
		}
	}
	return ErrNotFound
}

// ArchiveQA removes a QA entry by ID.
func (m *MockStore) ArchiveQA(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for cat, entries := range m.qa {
		for i, e := range entries {
			if e.ID == id {
				m.qa[cat] = append(entries[:i], entries[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// ListReading returns all reading entries for a category, newest first.
// An empty category returns entries across all categories.
func (m *MockStore) ListReading(ctx context.Context, category Category) ([]*ReadingEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*ReadingEntry
	for _, cat := range Categories {
		if category != "" && cat != category {
			continue
		}
		for _, e := range m.reading[cat] {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

// CreateReading stores a new reading entry, assigning an ID and creation time.
func (m *MockStore) CreateReading(ctx context.Context, entry *ReadingEntry) (*ReadingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *entry
	created.ID = uuid.New().String()
	created.Title = TruncateField(created.Title)
	created.Text = TruncateField(created.Text)
	if created.Link == "" {
		created.Link = ExtractLink(created.Text)
	}
	created.CreatedAt = time.Now().UTC()

	m.reading[created.Category] = append([]*ReadingEntry{&created}, m.reading[created.Category]...)

	result := created
	return &result, nil
}

// UpdateReading replaces the stored entry with the same ID.
func (m *MockStore) UpdateReading(ctx context.Context, entry *ReadingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for cat, entries := range m.reading {
		for i, e := range entries {
			if e.ID == entry.ID {
				updated := *entry
				updated.Title = TruncateField(updated.Title)
				updated.Text = TruncateField(updated.Text)
				updated.CreatedAt = e.CreatedAt
				m.reading[cat][i] = &updated
				return nil
			}
		}
	}
	return ErrNotFound
}

// ArchiveReading removes a reading entry by ID.
func (m *MockStore) ArchiveReading(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for cat, entries := range m.reading {
		for i, e := range entries {
			if e.ID == id {
				m.reading[cat] = append(entries[:i], entries[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
