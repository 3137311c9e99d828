// ABOUTME: Orchestrates tab switching, lazy fetching, and mutations for one user session.
// ABOUTME: Remote writes land first; the cache is then patched, never optimistically updated.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wenli/kbase/internal/client"
	"github.com/wenli/kbase/internal/store"
)

// ItemClient is the API surface the session needs from the server.
// *client.Client satisfies it.
type ItemClient interface {
	Probe(ctx context.Context) error
	ListQA(ctx context.Context, category store.Category) ([]*store.QAEntry, error)
	CreateQA(ctx context.Context, entry *store.QAEntry) (*store.QAEntry, error)
	UpdateQA(ctx context.Context, entry *store.QAEntry) (*store.QAEntry, error)
	DeleteQA(ctx context.Context, id string) error
	ListReading(ctx context.Context, category store.Category) ([]*store.ReadingEntry, error)
	CreateReading(ctx context.Context, entry *store.ReadingEntry) (*store.ReadingEntry, error)
	UpdateReading(ctx context.Context, entry *store.ReadingEntry) (*store.ReadingEntry, error)
	DeleteReading(ctx context.Context, id string) error
	Summarize(ctx context.Context, rawURL string, category store.Category) (*client.Summary, error)
}

// Session holds one user's view of the knowledge base: the active tab, the
// per-category cache, and the loading coordinator.
type Session struct {
	client  ItemClient
	cache   *Cache
	loading *Loading
	logger  *slog.Logger

	mu              sync.Mutex
	active          store.Category
	remoteAvailable bool
}

// Config holds the dependencies for a Session.
type Config struct {
	Client ItemClient
	// StalenessWindow controls how long cached categories are served without
	// a refetch. Zero means the default of five minutes.
	StalenessWindow time.Duration
	Logger          *slog.Logger
}

// New creates a Session starting on the strategy tab.
func New(cfg Config) (*Session, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		client:  cfg.Client,
		cache:   NewCache(cfg.StalenessWindow),
		loading: NewLoading(),
		logger:  logger.With("component", "session"),
		active:  store.CategoryStrategy,
	}, nil
}

// Start probes the server, loads the active category in the foreground, and
// kicks off background loads for the remaining categories. When the server
// is unreachable the session degrades to local mode: tabs start empty and
// mutations apply to the cache only.
func (s *Session) Start(ctx context.Context) error {
	if err := s.client.Probe(ctx); err != nil {
		s.logger.Warn("server unreachable, entering local mode", "error", err)
		s.setRemoteAvailable(false)
		for _, cat := range store.Categories {
			s.cache.Put(cat, nil, nil)
		}
		return nil
	}
	s.setRemoteAvailable(true)

	if err := s.refresh(ctx, s.Active()); err != nil {
		return fmt.Errorf("loading active category: %w", err)
	}

	// The caller's context often ends with the call that started the
	// session; the prefetches must outlive it.
	bg := context.WithoutCancel(ctx)
	for _, cat := range store.Categories {
		if cat == s.Active() {
			continue
		}
		go func(cat store.Category) {
			if err := s.refresh(bg, cat); err != nil {
				s.logger.Debug("background load failed", "category", cat, "error", err)
			}
		}(cat)
	}
	return nil
}

// SwitchTab makes the category active and returns its entries. A cached
// category is served immediately, even when stale; staleness only kicks off
// a background refetch. Only a never-fetched category blocks on the network.
func (s *Session) SwitchTab(ctx context.Context, category store.Category) (*Entry, error) {
	s.mu.Lock()
	s.active = category
	s.mu.Unlock()

	if entry, ok := s.cache.Get(category); ok {
		if s.RemoteAvailable() && s.cache.IsStale(category) {
			bg := context.WithoutCancel(ctx)
			go func() {
				if err := s.refresh(bg, category); err != nil {
					s.logger.Warn("background refresh failed, cache keeps stale entries",
						"category", category, "error", err)
				}
			}()
		}
		return entry, nil
	}

	if !s.RemoteAvailable() {
		return &Entry{Category: category}, nil
	}
	if err := s.refresh(ctx, category); err != nil {
		return nil, err
	}
	entry, ok := s.cache.Get(category)
	if !ok {
		return &Entry{Category: category}, nil
	}
	return entry, nil
}

// Refresh forces a refetch of the category regardless of staleness.
func (s *Session) Refresh(ctx context.Context, category store.Category) error {
	if !s.RemoteAvailable() {
		return nil
	}
	return s.refresh(ctx, category)
}

// refresh fetches both lists for a category and replaces the cache entry.
// If another fetch for the category is in flight, it returns immediately.
// A partial failure leaves the cache untouched.
func (s *Session) refresh(ctx context.Context, category store.Category) error {
	if !s.loading.Begin(category) {
		return nil
	}
	defer s.loading.End(category)

	qa, err := s.client.ListQA(ctx, category)
	if err != nil {
		return fmt.Errorf("fetching qa entries: %w", err)
	}
	reading, err := s.client.ListReading(ctx, category)
	if err != nil {
		return fmt.Errorf("fetching reading entries: %w", err)
	}

	s.cache.Put(category, qa, reading)
	return nil
}

// Active returns the currently active category.
func (s *Session) Active() store.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IsLoading reports whether the category has a fetch in flight.
func (s *Session) IsLoading(category store.Category) bool {
	return s.loading.IsLoading(category)
}

// RemoteAvailable reports whether the server responded to the startup probe.
func (s *Session) RemoteAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteAvailable
}

func (s *Session) setRemoteAvailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteAvailable = v
}

// Entries returns the cached entry for a category without fetching.
func (s *Session) Entries(category store.Category) (*Entry, bool) {
	return s.cache.Get(category)
}

// AddQA creates a QA entry. The remote write happens first; only its result
// is prepended to the cache. In local mode the entry gets a local ID and
// lands in the cache directly.
func (s *Session) AddQA(ctx context.Context, entry *store.QAEntry) (*store.QAEntry, error) {
	if !s.RemoteAvailable() {
		local := cloneQA(entry)
		local.ID = uuid.NewString()
		local.Title = store.TruncateField(local.Title)
		local.Content = store.TruncateField(local.Content)
		local.CreatedAt = time.Now()
		s.cache.PrependQA(local)
		return local, nil
	}

	created, err := s.client.CreateQA(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.cache.PrependQA(created)
	return created, nil
}

// UpdateQA updates a QA entry remotely, then swaps it into the cache.
func (s *Session) UpdateQA(ctx context.Context, entry *store.QAEntry) (*store.QAEntry, error) {
	if !s.RemoteAvailable() {
		local := cloneQA(entry)
		local.Title = store.TruncateField(local.Title)
		local.Content = store.TruncateField(local.Content)
		s.cache.ReplaceQA(local)
		return local, nil
	}

	updated, err := s.client.UpdateQA(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.cache.ReplaceQA(updated)
	return updated, nil
}

// DeleteQA archives a QA entry remotely, then filters it out of the cache.
// A remote failure surfaces as an error and leaves the cache untouched.
func (s *Session) DeleteQA(ctx context.Context, id string) error {
	if s.RemoteAvailable() {
		if err := s.client.DeleteQA(ctx, id); err != nil {
			return err
		}
	}
	s.cache.RemoveQA(id)
	return nil
}

// AddReadingResult reports what AddReading produced.
type AddReadingResult struct {
	Entry *store.ReadingEntry
	// Summarized is true when the text was a bare URL and the entry was
	// filled in from the link summarizer.
	Summarized bool
}

// AddReading creates a reading entry. When the submitted text is nothing but
// a URL, the link is summarized first and the entry's text and title come
// from the summary.
func (s *Session) AddReading(ctx context.Context, entry *store.ReadingEntry) (*AddReadingResult, error) {
	toCreate := cloneReading(entry)
	summarized := false

	if bareURL(toCreate.Text) && s.RemoteAvailable() {
		summary, err := s.client.Summarize(ctx, strings.TrimSpace(toCreate.Text), toCreate.Category)
		if err != nil {
			s.logger.Warn("summarize failed, saving raw link", "error", err)
		} else {
			toCreate.Link = summary.OriginalURL
			toCreate.Title = summary.Title
			toCreate.Text = summary.Summary
			summarized = true
		}
	}

	if !s.RemoteAvailable() {
		toCreate.ID = uuid.NewString()
		toCreate.Title = store.TruncateField(toCreate.Title)
		toCreate.Text = store.TruncateField(toCreate.Text)
		if toCreate.Link == "" {
			toCreate.Link = store.ExtractLink(toCreate.Text)
		}
		toCreate.CreatedAt = time.Now()
		s.cache.PrependReading(toCreate)
		return &AddReadingResult{Entry: toCreate}, nil
	}

	created, err := s.client.CreateReading(ctx, toCreate)
	if err != nil {
		return nil, err
	}
	s.cache.PrependReading(created)
	return &AddReadingResult{Entry: created, Summarized: summarized}, nil
}

// UpdateReading updates a reading entry remotely, then swaps it into the cache.
func (s *Session) UpdateReading(ctx context.Context, entry *store.ReadingEntry) (*store.ReadingEntry, error) {
	if !s.RemoteAvailable() {
		local := cloneReading(entry)
		local.Text = store.TruncateField(local.Text)
		s.cache.ReplaceReading(local)
		return local, nil
	}

	updated, err := s.client.UpdateReading(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.cache.ReplaceReading(updated)
	return updated, nil
}

// DeleteReading archives a reading entry remotely, then filters it out of the
// cache. A remote failure, including deleting an already-deleted entry,
// surfaces as an error.
func (s *Session) DeleteReading(ctx context.Context, id string) error {
	if s.RemoteAvailable() {
		if err := s.client.DeleteReading(ctx, id); err != nil {
			return err
		}
	}
	s.cache.RemoveReading(id)
	return nil
}

// SearchQA returns cached QA entries across all categories whose title,
// content, or tags contain the query, case-insensitively. Search never
// triggers a fetch; it sees only what is cached.
func (s *Session) SearchQA(query string) []*store.QAEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []*store.QAEntry
	for _, cat := range s.cache.Categories() {
		entry, ok := s.cache.Get(cat)
		if !ok {
			continue
		}
		for _, e := range entry.QA {
			if qaMatches(e, q) {
				matches = append(matches, e)
			}
		}
	}
	sortQAByCreated(matches)
	return matches
}

// SearchReading returns cached reading entries across all categories whose
// text or title contains the query, case-insensitively.
func (s *Session) SearchReading(query string) []*store.ReadingEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []*store.ReadingEntry
	for _, cat := range s.cache.Categories() {
		entry, ok := s.cache.Get(cat)
		if !ok {
			continue
		}
		for _, e := range entry.Reading {
			if strings.Contains(strings.ToLower(e.Text), q) ||
				strings.Contains(strings.ToLower(e.Title), q) {
				matches = append(matches, e)
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches
}

// ReorderQA moves a cached QA entry from one position to another within a
// category. The ordering is session-local and never written to the server.
func (s *Session) ReorderQA(category store.Category, from, to int) error {
	entry, ok := s.cache.Get(category)
	if !ok {
		return fmt.Errorf("category %s not cached", category)
	}
	if from < 0 || from >= len(entry.QA) || to < 0 || to >= len(entry.QA) {
		return fmt.Errorf("reorder out of range: %d -> %d with %d entries", from, to, len(entry.QA))
	}

	qa := entry.QA
	moved := qa[from]
	qa = append(qa[:from], qa[from+1:]...)
	qa = append(qa[:to], append([]*store.QAEntry{moved}, qa[to:]...)...)
	for i, e := range qa {
		e.Order = i
	}

	s.cache.SetQA(category, qa)
	return nil
}

func qaMatches(e *store.QAEntry, q string) bool {
	if strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Content), q) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func sortQAByCreated(entries []*store.QAEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// bareURL reports whether the text is a single URL and nothing else.
func bareURL(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t\n") {
		return false
	}
	return store.ExtractLink(trimmed) == trimmed
}
