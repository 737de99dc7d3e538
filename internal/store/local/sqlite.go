// Package local is the fallback document store: a small SQLite database on
// the author's machine, holding one JSON document per storage key. It is the
// only store used in sandbox mode and the safety net when the remote store is
// unreachable.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_documents (
	doc_key    TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// ExerciseSQLite stores exercise documents in a local SQLite file keyed by
// Locator.Key.
type ExerciseSQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the local fallback database at path.
func Open(ctx context.Context, path string) (*ExerciseSQLite, error) {
	if path == "" {
		path = "file:dragdrop.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure local schema: %w", err)
	}
	return &ExerciseSQLite{db: db}, nil
}

// NewExerciseSQLite wraps an already-open database (used by tests with an
// in-memory file).
func NewExerciseSQLite(db *sql.DB) *ExerciseSQLite {
	return &ExerciseSQLite{db: db}
}

func (s *ExerciseSQLite) Load(ctx context.Context, loc store.Locator) (*models.Exercise, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT document FROM local_documents WHERE doc_key = ?`, loc.Key())

	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load local document: %w", err)
	}

	return store.DecodeDocument([]byte(doc))
}

func (s *ExerciseSQLite) Save(ctx context.Context, ex *models.Exercise, loc store.Locator) error {
	data, err := store.EncodeDocument(ex)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO local_documents (doc_key, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (doc_key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		loc.Key(), string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save local document: %w", err)
	}
	return nil
}

func (s *ExerciseSQLite) Delete(ctx context.Context, loc store.Locator) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM local_documents WHERE doc_key = ?`, loc.Key())
	if err != nil {
		return fmt.Errorf("failed to delete local document: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *ExerciseSQLite) Close() error {
	return s.db.Close()
}
