// ABOUTME: Store interface and data types for kbase persistence
// ABOUTME: Defines QAEntry, ReadingEntry structs and the Store interface for document operations

package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist
var ErrNotFound = errors.New("not found")

// Category is one of the three fixed topics partitioning all entries.
type Category string

// Category constants for the three topic tabs
const (
	CategoryStrategy   Category = "strategy"
	CategoryProduct    Category = "product"
	CategoryTechnology Category = "technology"
)

// Categories lists all valid categories in display order.
var Categories = []Category{CategoryStrategy, CategoryProduct, CategoryTechnology}

// ParseCategory validates a category string from the wire.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryStrategy, CategoryProduct, CategoryTechnology:
		return Category(s), nil
	}
	return "", fmt.Errorf("invalid category %q", s)
}

// RemoteName maps a category to the select-option name used by the remote store.
func (c Category) RemoteName() string {
	switch c {
	case CategoryStrategy:
		return "Strategy"
	case CategoryProduct:
		return "Product"
	case CategoryTechnology:
		return "Technology"
	}
	return string(c)
}

// Kind marks a reading entry as required or optional.
type Kind string

// Kind constants for reading entries
const (
	KindRequired Kind = "required"
	KindOptional Kind = "optional"
)

// ParseKind validates a reading kind string from the wire.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRequired, KindOptional:
		return Kind(s), nil
	}
	return "", fmt.Errorf("invalid kind %q", s)
}

// RemoteName maps a kind to the select-option name used by the remote store.
func (k Kind) RemoteName() string {
	if k == KindRequired {
		return "Required"
	}
	return "Optional"
}

// QAEntry is a title+body knowledge item.
// Order is a client-local sort hint and is never persisted remotely.
type QAEntry struct {
	ID        string
	Title     string
	Content   string
	Category  Category
	Tags      []string
	CreatedAt time.Time
	Order     int
}

// ReadingEntry is a short text/link item marked required or optional.
type ReadingEntry struct {
	ID        string
	Text      string
	Link      string
	Kind      Kind
	Category  Category
	Title     string
	CreatedAt time.Time
}

// Store defines the interface for QA and reading entry persistence.
// List results are ordered by creation time, newest first.
type Store interface {
	ListQA(ctx context.Context, category Category) ([]*QAEntry, error)
	CreateQA(ctx context.Context, entry *QAEntry) (*QAEntry, error)
	UpdateQA(ctx context.Context, entry *QAEntry) error
	ArchiveQA(ctx context.Context, id string) error

	ListReading(ctx context.Context, category Category) ([]*ReadingEntry, error)
	CreateReading(ctx context.Context, entry *ReadingEntry) (*ReadingEntry, error)
	UpdateReading(ctx context.Context, entry *ReadingEntry) error
	ArchiveReading(ctx context.Context, id string) error

	// Close releases any resources held by the store
	Close() error
}

// The remote store rejects rich-text fields longer than 2000 characters.
// Oversized content is truncated below that with a marker appended instead
// of rejecting the write.
const (
	// MaxFieldLen is the largest rune count stored before the marker.
	MaxFieldLen = 1950

	// TruncationMarker is appended to truncated content.
	TruncationMarker = "...\n\n[content truncated; open the app for the full text]"
)

// TruncateField caps a rich-text field at MaxFieldLen runes, appending
// TruncationMarker when the input was cut.
func TruncateField(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxFieldLen {
		return s
	}
	return string(runes[:MaxFieldLen]) + TruncationMarker
}

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// ExtractLink returns the first http(s) URL found in text, or "".
func ExtractLink(text string) string {
	return urlPattern.FindString(text)
}
