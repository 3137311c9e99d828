// Package store provides persistence for knowledge-base entries.
//
// # Architecture
//
// The Store interface covers both record kinds (QA entries and reading
// entries) with list/create/update/archive operations per kind. Three
// implementations exist:
//
//   - NotionStore: the production backend, a thin REST client for the
//     Notion API. All untyped JSON from the remote is validated into the
//     typed entities here; dynamic records never cross this boundary.
//   - SQLiteStore: a local backend used when no remote credentials are
//     configured, and by integration tests (":memory:").
//   - MockStore: an in-memory implementation for unit tests.
//
// # Data Models
//
//   - QAEntry: title+body knowledge item with optional tags
//   - ReadingEntry: short text/link item marked required or optional
//   - Category: strategy, product, or technology
//
// Entries belong to exactly one category. IDs are unique within their
// record kind. Deleting archives the page remotely rather than destroying
// it, matching the remote store's semantics.
//
// # Field Limits
//
// The remote store caps rich-text fields at 2000 characters. TruncateField
// cuts oversized content at MaxFieldLen runes and appends TruncationMarker
// instead of rejecting the write.
//
// # Error Handling
//
// ErrNotFound is returned when a requested entry does not exist. All
// methods accept context.Context for cancellation support.
package store
