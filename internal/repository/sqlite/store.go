package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	scope TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (scope, key)
);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// schemaVersion is recorded in meta so later releases can migrate older files.
const schemaVersion = "1"

// Store implements app.KeyValueStore on one scope (profile) of a SQLite file.
// Several Stores, in this or other processes, may share the same file.
type Store struct {
	db    *sql.DB
	scope string
}

// New opens the SQLite database at path (creating parent dirs and schema) and
// returns a store for scope.
func New(path, scope string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?) ON CONFLICT(key) DO NOTHING`,
		schemaVersion,
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite meta: %w", err)
	}
	return &Store{db: db, scope: scope}, nil
}

// Get implements app.KeyValueStore.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, errClosed
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE scope = ? AND key = ?", s.scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s/%s: %w", s.scope, key, err)
	}
	return value, true, nil
}

// Set implements app.KeyValueStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.db == nil {
		return errClosed
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.scope, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("kv set %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// Delete implements app.KeyValueStore. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		return errClosed
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE scope = ? AND key = ?", s.scope, key); err != nil {
		return fmt.Errorf("kv delete %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// Close releases the database connection. Call on shutdown for clean exit.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var errClosed = errors.New("sqlite store closed")

