package store

import (
	"database/sql"
	"fmt"
)

// Schema versions:
// v1: variables(position, id, name, category, value)
// v2: added inputs column
const CurrentSchemaVersion = 2

// Migration defines a column added after the first release of the cache.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists columns that caches written by older versions
// may be missing.
var pendingMigrations = []Migration{
	{"variables", "inputs", "TEXT"},
}

// RunMigrations adds missing columns and records the schema version.
// It returns the number of columns added.
func RunMigrations(db *sql.DB) (int, error) {
	applied := 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) || columnExists(db, m.Table, m.Column) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(stmt); err != nil {
			return applied, fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		applied++
	}

	if err := SetSchemaVersion(db, CurrentSchemaVersion); err != nil {
		return applied, err
	}
	return applied, nil
}

// GetSchemaVersion returns the recorded schema version, 0 when none is
// recorded.
func GetSchemaVersion(db *sql.DB) int {
	if !tableExists(db, "cache_meta") {
		return 0
	}
	var version int
	if err := db.QueryRow("SELECT CAST(value AS INTEGER) FROM cache_meta WHERE key = 'schema_version'").Scan(&version); err != nil {
		return 0
	}
	return version
}

// SetSchemaVersion records the schema version.
func SetSchemaVersion(db *sql.DB, version int) error {
	_, err := db.Exec(
		"INSERT INTO cache_meta (key, value) VALUES ('schema_version', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		fmt.Sprint(version))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notnull, pk  int
			defaultValue interface{}
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &defaultValue, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// tableExists checks if a table exists in the database.
func tableExists(db *sql.DB, table string) bool {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count); err != nil {
		return false
	}
	return count > 0
}
