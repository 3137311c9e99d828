// ABOUTME: Per-category loading coordinator guarding against duplicate fetches.
// ABOUTME: Begin is idempotent per category; End always clears the flag.

package session

import (
	"sync"

	"github.com/wenli/kbase/internal/store"
)

// Loading tracks which categories have a fetch in flight.
type Loading struct {
	mu       sync.Mutex
	inflight map[store.Category]bool
}

// NewLoading creates an empty coordinator.
func NewLoading() *Loading {
	return &Loading{inflight: make(map[store.Category]bool)}
}

// Begin marks the category as loading. Returns false if a fetch is already
// in flight, in which case the caller must not start another one.
func (l *Loading) Begin(category store.Category) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inflight[category] {
		return false
	}
	l.inflight[category] = true
	return true
}

// End clears the category's loading flag. Safe to call when nothing is
// in flight.
func (l *Loading) End(category store.Category) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inflight, category)
}

// IsLoading reports whether the category has a fetch in flight.
func (l *Loading) IsLoading(category store.Category) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight[category]
}
