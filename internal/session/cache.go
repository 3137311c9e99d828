// ABOUTME: Thread-safe per-category cache of QA and reading entries.
// ABOUTME: Tracks fetch time for staleness and supports targeted patches after mutations.

package session

import (
	"sync"
	"time"

	"github.com/wenli/kbase/internal/store"
)

// DefaultStalenessWindow is how long a category's entries are served
// without a refetch.
const DefaultStalenessWindow = 5 * time.Minute

// Entry holds one category's cached lists.
type Entry struct {
	Category  store.Category
	QA        []*store.QAEntry
	Reading   []*store.ReadingEntry
	FetchedAt time.Time
}

// Cache is a thread-safe per-category cache. Reads return copies so callers
// can never mutate cached state; writes replace a category's lists wholesale.
type Cache struct {
	mu      sync.RWMutex
	entries map[store.Category]*Entry
	window  time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given staleness window. A zero window
// uses the default.
func NewCache(window time.Duration) *Cache {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &Cache{
		entries: make(map[store.Category]*Entry),
		window:  window,
		now:     time.Now,
	}
}

// Get returns a copy of the category's cached entry, or false when the
// category has never been cached.
func (c *Cache) Get(category store.Category) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[category]
	if !ok {
		return nil, false
	}
	return copyEntry(entry), true
}

// Put replaces the category's cached lists wholesale and stamps the fetch time.
func (c *Cache) Put(category store.Category, qa []*store.QAEntry, reading []*store.ReadingEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[category] = &Entry{
		Category:  category,
		QA:        copyQA(qa),
		Reading:   copyReading(reading),
		FetchedAt: c.now(),
	}
}

// IsStale reports whether the category needs a refetch: never cached, or
// cached longer ago than the staleness window.
func (c *Cache) IsStale(category store.Category) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[category]
	if !ok {
		return true
	}
	return c.now().Sub(entry.FetchedAt) >= c.window
}

// SetQA replaces the category's QA list without touching the fetch time.
// Used for session-local reordering.
func (c *Cache) SetQA(category store.Category, qa []*store.QAEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensureLocked(category)
	e.QA = copyQA(qa)
}

// PrependQA inserts a newly created entry at the head of the category's QA
// list without touching the fetch time.
func (c *Cache) PrependQA(entry *store.QAEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensureLocked(entry.Category)
	e.QA = append([]*store.QAEntry{cloneQA(entry)}, e.QA...)
}

// ReplaceQA swaps the cached entry with the same ID for the updated one.
func (c *Cache) ReplaceQA(entry *store.QAEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensureLocked(entry.Category)
	for i, existing := range e.QA {
		if existing.ID == entry.ID {
			e.QA[i] = cloneQA(entry)
			return
		}
	}
}

// RemoveQA filters the entry with the given ID out of every category.
func (c *Cache) RemoveQA(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		filtered := e.QA[:0]
		for _, existing := range e.QA {
			if existing.ID != id {
				filtered = append(filtered, existing)
			}
		}
		e.QA = filtered
	}
}

// PrependReading inserts a newly created entry at the head of the category's
// reading list without touching the fetch time.
func (c *Cache) PrependReading(entry *store.ReadingEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensureLocked(entry.Category)
	e.Reading = append([]*store.ReadingEntry{cloneReading(entry)}, e.Reading...)
}

// ReplaceReading swaps the cached entry with the same ID for the updated one.
func (c *Cache) ReplaceReading(entry *store.ReadingEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensureLocked(entry.Category)
	for i, existing := range e.Reading {
		if existing.ID == entry.ID {
			e.Reading[i] = cloneReading(entry)
			return
		}
	}
}

// RemoveReading filters the entry with the given ID out of every category.
func (c *Cache) RemoveReading(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		filtered := e.Reading[:0]
		for _, existing := range e.Reading {
			if existing.ID != id {
				filtered = append(filtered, existing)
			}
		}
		e.Reading = filtered
	}
}

// Categories returns the categories currently present in the cache.
func (c *Cache) Categories() []store.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cats := make([]store.Category, 0, len(c.entries))
	for cat := range c.entries {
		cats = append(cats, cat)
	}
	return cats
}

// ensureLocked returns the category's entry, creating an empty one with a
// zero fetch time so a patched-but-never-fetched category still reads as
// stale. Must be called with mu held.
func (c *Cache) ensureLocked(category store.Category) *Entry {
	e, ok := c.entries[category]
	if !ok {
		e = &Entry{Category: category}
		c.entries[category] = e
	}
	return e
}

func copyEntry(e *Entry) *Entry {
	return &Entry{
		Category:  e.Category,
		QA:        copyQA(e.QA),
		Reading:   copyReading(e.Reading),
		FetchedAt: e.FetchedAt,
	}
}

func copyQA(entries []*store.QAEntry) []*store.QAEntry {
	out := make([]*store.QAEntry, len(entries))
	for i, e := range entries {
		out[i] = cloneQA(e)
	}
	return out
}

func cloneQA(e *store.QAEntry) *store.QAEntry {
	clone := *e
	clone.Tags = append([]string(nil), e.Tags...)
	return &clone
}

func copyReading(entries []*store.ReadingEntry) []*store.ReadingEntry {
	out := make([]*store.ReadingEntry, len(entries))
	for i, e := range entries {
		out[i] = cloneReading(e)
	}
	return out
}

func cloneReading(e *store.ReadingEntry) *store.ReadingEntry {
	clone := *e
	return &clone
}
