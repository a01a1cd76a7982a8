package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	origin TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (origin, key)
);
CREATE TABLE IF NOT EXISTS cookies (
	origin TEXT NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (origin, name)
);
`

// SQLiteStore keeps storage in a single SQLite file shared by every origin.
type SQLiteStore struct {
	db     *sql.DB
	origin string

	mu     sync.RWMutex
	closed bool
}

// OpenSQLite creates the database file and its tables when missing.
func OpenSQLite(ctx context.Context, path, origin string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite storage path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	// A single connection keeps writes ordered and lets ":memory:" work.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure storage schema: %w", err)
	}
	return &SQLiteStore{db: db, origin: origin}, nil
}

// Get reads one local storage value.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.lookup(ctx, "SELECT value FROM local_storage WHERE origin = ? AND key = ?", key)
}

// Set upserts one local storage value.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return s.exec(ctx, `INSERT INTO local_storage (origin, key, value) VALUES (?, ?, ?)
		ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.origin, key, value)
}

// Remove deletes a local storage value; missing keys are not an error.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	return s.exec(ctx, "DELETE FROM local_storage WHERE origin = ? AND key = ?", s.origin, key)
}

// Cookie reads one cookie.
func (s *SQLiteStore) Cookie(ctx context.Context, name string) (string, bool, error) {
	return s.lookup(ctx, "SELECT value FROM cookies WHERE origin = ? AND name = ?", name)
}

// SetCookie upserts one cookie.
func (s *SQLiteStore) SetCookie(ctx context.Context, name, value string) error {
	return s.exec(ctx, `INSERT INTO cookies (origin, name, value) VALUES (?, ?, ?)
		ON CONFLICT(origin, name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.origin, name, value)
}

// DeleteCookie removes a cookie; missing cookies are not an error.
func (s *SQLiteStore) DeleteCookie(ctx context.Context, name string) error {
	return s.exec(ctx, "DELETE FROM cookies WHERE origin = ? AND name = ?", s.origin, name)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore) lookup(ctx context.Context, query, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx, query, s.origin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("storage write: %w", err)
	}
	return nil
}
