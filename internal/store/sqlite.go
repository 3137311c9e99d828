// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Local backend with automatic schema creation and archive-style deletes

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
// It mirrors the remote store's semantics: creation-descending lists
// and archive-on-delete.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS qa_entries (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			category   TEXT NOT NULL,
			tags       TEXT NOT NULL DEFAULT '',
			archived   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,

			CHECK (category IN ('strategy', 'product', 'technology'))
		);

		CREATE INDEX IF NOT EXISTS idx_qa_category_created
			ON qa_entries(category, created_at DESC);

		CREATE TABLE IF NOT EXISTS reading_entries (
			id         TEXT PRIMARY KEY,
			text       TEXT NOT NULL,
			link       TEXT NOT NULL DEFAULT '',
			kind       TEXT NOT NULL,
			category   TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			archived   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,

			CHECK (kind IN ('required', 'optional')),
			CHECK (category IN ('strategy', 'product', 'technology'))
		);

		CREATE INDEX IF NOT EXISTS idx_reading_category_created
			ON reading_entries(category, created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ListQA retrieves QA entries ordered newest first.
// An empty category lists entries across all categories.
func (s *SQLiteStore) ListQA(ctx context.Context, category Category) ([]*QAEntry, error) {
	query := `SELECT id, title, content, category, tags, created_at
		FROM qa_entries WHERE archived = 0`
	var args []any
	if category != "" {
		query += " AND category = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying qa entries: %w", err)
	}
	defer rows.Close()

	var entries []*QAEntry
	for rows.Next() {
		var e QAEntry
		var cat, tags string
		if err := rows.Scan(&e.ID, &e.Title, &e.Content, &cat, &tags, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning qa entry: %w", err)
		}
		e.Category = Category(cat)
		e.Tags = splitTags(tags)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CreateQA inserts a new QA entry, assigning an ID and creation time.
func (s *SQLiteStore) CreateQA(ctx context.Context, entry *QAEntry) (*QAEntry, error) {
	created := *entry
	created.ID = uuid.New().String()
	created.Title = TruncateField(entry.Title)
	created.Content = TruncateField(entry.Content)
	created.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO qa_entries (id, title, content, category, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.Title, created.Content, string(created.Category),
		strings.Join(created.Tags, ", "), created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting qa entry: %w", err)
	}
	return &created, nil
}

// UpdateQA updates an existing QA entry's mutable fields.
func (s *SQLiteStore) UpdateQA(ctx context.Context, entry *QAEntry) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE qa_entries SET title = ?, content = ?, category = ?, tags = ?
		 WHERE id = ? AND archived = 0`,
		TruncateField(entry.Title), TruncateField(entry.Content), string(entry.Category),
		strings.Join(entry.Tags, ", "), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating qa entry: %w", err)
	}
	return requireRow(result)
}

// ArchiveQA soft-deletes a QA entry.
func (s *SQLiteStore) ArchiveQA(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE qa_entries SET archived = 1 WHERE id = ? AND archived = 0`, id)
	if err != nil {
		return fmt.Errorf("archiving qa entry: %w", err)
	}
	return requireRow(result)
}

// ListReading retrieves reading entries ordered newest first.
// An empty category lists entries across all categories.
func (s *SQLiteStore) ListReading(ctx context.Context, category Category) ([]*ReadingEntry, error) {
	query := `SELECT id, text, link, kind, category, title, created_at
		FROM reading_entries WHERE archived = 0`
	var args []any
	if category != "" {
		query += " AND category = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reading entries: %w", err)
	}
	defer rows.Close()

	var entries []*ReadingEntry
	for rows.Next() {
		var e ReadingEntry
		var kind, cat string
		if err := rows.Scan(&e.ID, &e.Text, &e.Link, &kind, &cat, &e.Title, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reading entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.Category = Category(cat)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CreateReading inserts a new reading entry, assigning an ID and creation time.
func (s *SQLiteStore) CreateReading(ctx context.Context, entry *ReadingEntry) (*ReadingEntry, error) {
	created := *entry
	created.ID = uuid.New().String()
	created.Title = TruncateField(entry.Title)
	created.Text = TruncateField(entry.Text)
	if created.Link == "" {
		created.Link = ExtractLink(created.Text)
	}
	created.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_entries (id, text, link, kind, category, title, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Text, created.Link, string(created.Kind),
		string(created.Category), created.Title, created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting reading entry: %w", err)
	}
	return &created, nil
}

// UpdateReading updates an existing reading entry's mutable fields.
func (s *SQLiteStore) UpdateReading(ctx context.Context, entry *ReadingEntry) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reading_entries SET text = ?, link = ?, kind = ?, category = ?, title = ?
		 WHERE id = ? AND archived = 0`,
		TruncateField(entry.Text), entry.Link, string(entry.Kind),
		string(entry.Category), TruncateField(entry.Title), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating reading entry: %w", err)
	}
	return requireRow(result)
}

// ArchiveReading soft-deletes a reading entry.
func (s *SQLiteStore) ArchiveReading(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reading_entries SET archived = 1 WHERE id = ? AND archived = 0`, id)
	if err != nil {
		return fmt.Errorf("archiving reading entry: %w", err)
	}
	return requireRow(result)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// splitTags parses the comma-joined tags column.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
