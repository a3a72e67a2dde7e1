package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	kberrors "github.com/dockb/dockb/internal/errors"
)

// Store is the SQLite-backed index storage. All mutations run inside a
// single transaction per document, so readers never observe a record whose
// tags or search projection disagree with its content.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// validateIntegrity checks if an index database is valid before opening.
// Returns nil if valid, error describing corruption if not.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Database doesn't exist, will be created
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                       WHERE type='table' AND name='documents_fts'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	if count == 0 {
		// Fresh database without our schema; initSchema will create it
		var tables int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table'`).Scan(&tables); err != nil {
			return fmt.Errorf("cannot query schema: %w", err)
		}
		if tables > 0 {
			return fmt.Errorf("FTS5 table 'documents_fts' missing")
		}
	}

	return nil
}

// Open creates or opens an index database at the given path.
// An empty path opens an in-memory index for testing.
// Uses WAL mode so concurrent readers never block the single writer.
func Open(path string) (*Store, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, kberrors.Wrapf(kberrors.ErrCodeStorageOpen, err, "failed to create directory %s", dir)
		}

		if validErr := validateIntegrity(path); validErr != nil {
			slog.Warn("index_database_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			// Auto-clear corrupted index; a reindex rebuilds it from disk
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, kberrors.Wrapf(kberrors.ErrCodeStorageCorrupt, removeErr,
					"index corrupted at %s and cannot remove (original error: %v)", path, validErr)
			}
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")

			slog.Info("index_database_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageOpen, err)
	}

	// Single writer connection prevents lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL mode must be set via PRAGMA for modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, kberrors.Wrapf(kberrors.ErrCodeStorageOpen, err, "failed to set pragma")
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, kberrors.Wrapf(kberrors.ErrCodeStorageOpen, err, "failed to initialize schema")
	}

	return s, nil
}

// initSchema creates the documents, tags, and FTS projection tables.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		path TEXT NOT NULL,
		content TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '',
		UNIQUE(category, path)
	);

	CREATE TABLE IF NOT EXISTS document_tags (
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		tag TEXT NOT NULL,
		UNIQUE(document_id, tag)
	);

	-- Search projection: byte-for-byte derived from content, title,
	-- description, and the space-joined tag list of its document row.
	CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
		content,
		title,
		description,
		tags,
		document_id UNINDEXED,
		tokenize='unicode61'
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or updates the record identified by (category, path).
// Denormalized fields, the tag set, and the search projection are replaced
// within one transaction; on failure nothing is visible to readers.
func (s *Store) Upsert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kberrors.Newf(kberrors.ErrCodeStorageClosed, "index is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageUpsert, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (category, path, content, title, description, author, created_at, updated_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(category, path) DO UPDATE SET
			content = excluded.content,
			title = excluded.title,
			description = excluded.description,
			author = excluded.author,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			metadata = excluded.metadata`,
		rec.Category, rec.Path, rec.Content, rec.Title, rec.Description,
		rec.Author, rec.CreatedAt, rec.UpdatedAt, rec.MetadataYAML)
	if err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageUpsert, err, "failed to upsert %s/%s", rec.Category, rec.Path)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE category = ? AND path = ?`,
		rec.Category, rec.Path).Scan(&id)
	if err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageUpsert, err, "failed to resolve id for %s/%s", rec.Category, rec.Path)
	}
	rec.ID = id

	// Replace the tag set wholesale
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, id); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageUpsert, err, "failed to clear tags for %s/%s", rec.Category, rec.Path)
	}
	for i, tag := range rec.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO document_tags (document_id, position, tag) VALUES (?, ?, ?)`,
			id, i, tag); err != nil {
			return kberrors.Wrapf(kberrors.ErrCodeStorageUpsert, err, "failed to insert tag for %s/%s", rec.Category, rec.Path)
		}
	}

	// Replace the search projection wholesale.
	// FTS5 virtual tables don't support REPLACE, so delete first.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE document_id = ?`, id); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageUpsert, err, "failed to clear projection for %s/%s", rec.Category, rec.Path)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents_fts (content, title, description, tags, document_id) VALUES (?, ?, ?, ?, ?)`,
		rec.Content, rec.Title, rec.Description, strings.Join(rec.Tags, " "), id); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageUpsert, err, "failed to write projection for %s/%s", rec.Category, rec.Path)
	}

	if err := tx.Commit(); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageUpsert, err)
	}
	return nil
}

// Remove deletes the record and its dependent tag and projection rows.
// Removing an absent record is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, category, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kberrors.Newf(kberrors.ErrCodeStorageClosed, "index is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageRemove, err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE category = ? AND path = ?`,
		category, path).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageRemove, err, "failed to look up %s/%s", category, path)
	}

	// Tag rows cascade from the documents delete; the FTS projection
	// is a virtual table and must be cleared explicitly.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE document_id = ?`, id); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageRemove, err, "failed to remove projection for %s/%s", category, path)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeStorageRemove, err, "failed to remove %s/%s", category, path)
	}

	if err := tx.Commit(); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageRemove, err)
	}
	return nil
}

// Snapshot returns the (category, path) -> (id, updatedAt) mapping for
// every indexed record, from a single consistent query. The scanner uses
// it for staleness comparison without reading document content.
func (s *Store) Snapshot(ctx context.Context) (map[Key]RecordMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kberrors.Newf(kberrors.ErrCodeStorageClosed, "index is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, path, updated_at FROM documents`)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}
	defer rows.Close()

	snapshot := make(map[Key]RecordMeta)
	for rows.Next() {
		var id int64
		var category, path, updatedAt string
		if err := rows.Scan(&id, &category, &path, &updatedAt); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
		}
		snapshot[Key{Category: category, Path: path}] = RecordMeta{ID: id, UpdatedAt: updatedAt}
	}
	if err := rows.Err(); err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}

	return snapshot, nil
}

// Get returns the record for (category, path), or nil when absent.
func (s *Store) Get(ctx context.Context, category, path string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kberrors.Newf(kberrors.ErrCodeStorageClosed, "index is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, path, content, title, description, author, created_at, updated_at, metadata
		FROM documents WHERE category = ? AND path = ?`, category, path)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}

	if err := s.loadTags(ctx, []*Record{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// Count returns the number of indexed records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, kberrors.Newf(kberrors.ErrCodeStorageClosed, "index is closed")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}
	return count, nil
}

// Close closes the store. Idempotent. Forces a WAL checkpoint first so
// everything is durable in the main database file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Category, &rec.Path, &rec.Content, &rec.Title,
		&rec.Description, &rec.Author, &rec.CreatedAt, &rec.UpdatedAt, &rec.MetadataYAML)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// loadTags populates Tags for the given records in position order.
func (s *Store) loadTags(ctx context.Context, recs []*Record) error {
	if len(recs) == 0 {
		return nil
	}

	byID := make(map[int64]*Record, len(recs))
	placeholders := make([]string, 0, len(recs))
	args := make([]any, 0, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
		placeholders = append(placeholders, "?")
		args = append(args, rec.ID)
	}

	query := fmt.Sprintf(
		`SELECT document_id, tag FROM document_tags WHERE document_id IN (%s) ORDER BY document_id, position`,
		strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
		}
		if rec, ok := byID[id]; ok {
			rec.Tags = append(rec.Tags, tag)
		}
	}
	return rows.Err()
}
