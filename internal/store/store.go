package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema versions, tracked through PRAGMA user_version:
// 0 - pre-versioned databases
// 1 - UNIQUE(cyclist_id, stat_name, version) on tbl_change_stat_history
const schemaVersion = 1

// Store is the SQLite-backed history store for one namespace. It owns
// the changes ledger, the cyclist identity table, and the append-only
// stat history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the tracking database at path and brings it to
// the current schema version. Opening an already-initialized database
// is a no-op beyond pragma setup.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open tracking database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to tracking database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY between the lookup queries and the inserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initialize(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenExisting opens the tracking database at path, failing when the
// file does not already exist. Callers that expect an initialized
// namespace use this so a missing store surfaces as a namespace-level
// failure instead of silently creating an empty database.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tracking database not found at %s: %w", path, err)
	}
	return Open(path)
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initialize applies pragmas, the embedded schema, and any pending
// migrations. Safe to run on every open.
func initialize(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db)
}

// migrate walks the database from its recorded user_version up to
// schemaVersion.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version < 1 {
		// Databases created before the schema carried the version
		// uniqueness constraint inline need the index added here.
		_, err := db.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_stat_history_version_unique
			ON tbl_change_stat_history(cyclist_id, stat_name, version)
		`)
		if err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
