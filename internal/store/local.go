// Package store keeps an offline copy of the variable catalog in SQLite so
// the editor can start without the catalog service.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"formulate/internal/catalog"

	_ "modernc.org/sqlite"
)

// LocalStore is the SQLite-backed catalog cache.
// The last successful fetch replaces the whole table; reads return the
// variables in the order the service sent them.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore initializes the SQLite database at the given path.
func NewLocalStore(path string) (*LocalStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	variablesTable := `
	CREATE TABLE IF NOT EXISTS variables (
		position INTEGER PRIMARY KEY,
		id TEXT,
		name TEXT NOT NULL,
		category TEXT,
		value TEXT,
		inputs TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_variables_name ON variables(name);
	`

	metaTable := `
	CREATE TABLE IF NOT EXISTS cache_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	for _, ddl := range []string{variablesTable, metaTable} {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	// Caches written by older versions keep their table; add what is missing.
	if _, err := RunMigrations(s.db); err != nil {
		return err
	}
	return nil
}

// Path returns the database file location.
func (s *LocalStore) Path() string {
	return s.dbPath
}

// Save replaces the cached catalog with vars in a single transaction.
func (s *LocalStore) Save(ctx context.Context, vars []catalog.Variable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM variables"); err != nil {
		return fmt.Errorf("failed to clear variables: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO variables (position, id, name, category, value, inputs) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range vars {
		if _, err := stmt.ExecContext(ctx, i, v.ID, v.Name, v.Category, string(v.Value), v.Inputs); err != nil {
			return fmt.Errorf("failed to store variable %q: %w", v.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO cache_meta (key, value) VALUES ('saved_at', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to record save time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// Load returns the cached variables in their original order.
// An empty cache yields an empty slice and no error.
func (s *LocalStore) Load(ctx context.Context) ([]catalog.Variable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, category, value, inputs FROM variables ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query variables: %w", err)
	}
	defer rows.Close()

	var vars []catalog.Variable
	for rows.Next() {
		var (
			v                         catalog.Variable
			id, category, val, inputs sql.NullString
		)
		if err := rows.Scan(&id, &v.Name, &category, &val, &inputs); err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		v.ID = id.String
		v.Category = category.String
		v.Value = catalog.Value(val.String)
		v.Inputs = inputs.String
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read variables: %w", err)
	}
	return vars, nil
}

// SavedAt returns when the cache was last written. ok is false for a cache
// that has never been saved.
func (s *LocalStore) SavedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err = s.db.QueryRowContext(ctx, "SELECT value FROM cache_meta WHERE key = 'saved_at'").Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read save time: %w", err)
	}
	t, err = time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse save time: %w", err)
	}
	return t, true, nil
}

// Clear removes every cached variable.
func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM variables"); err != nil {
		return fmt.Errorf("failed to clear variables: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_meta WHERE key = 'saved_at'"); err != nil {
		return fmt.Errorf("failed to clear cache metadata: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
