// Package sqlite provides the local single-player save store on
// modernc.org/sqlite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection shared by the repositories.
type DB struct {
	db *sql.DB
}

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT    NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT    NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS characters (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id            INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		name                  TEXT    NOT NULL COLLATE NOCASE,
		class                 TEXT    NOT NULL,
		level                 INTEGER NOT NULL,
		xp                    INTEGER NOT NULL,
		xp_to_next            INTEGER NOT NULL,
		health                INTEGER NOT NULL,
		mana                  INTEGER NOT NULL,
		last_regen_time       INTEGER NOT NULL DEFAULT 0,
		ink_drops             INTEGER NOT NULL DEFAULT 0,
		luck_stat             REAL    NOT NULL DEFAULT 0,
		available_stat_points INTEGER NOT NULL DEFAULT 0,
		xp_boost              REAL    NOT NULL DEFAULT 0,
		attributes            TEXT    NOT NULL,
		equipment             TEXT    NOT NULL,
		inventory             TEXT    NOT NULL,
		cosmetics             TEXT    NOT NULL,
		skill_xp              TEXT    NOT NULL,
		counters              TEXT    NOT NULL,
		created_at            INTEGER NOT NULL,
		updated_at            INTEGER NOT NULL,
		UNIQUE (account_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_characters_account ON characters (account_id)`,
}

// Open opens or creates the save file at path and applies the schema.
//
// Precondition: path must be non-empty. ":memory:" opens a private in-memory database.
// Postcondition: Returns a ready DB or a non-nil error.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", stmt, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Accounts returns the account repository.
func (d *DB) Accounts() *AccountRepository {
	return &AccountRepository{db: d.db}
}

// Characters returns the character repository.
func (d *DB) Characters() *CharacterRepository {
	return &CharacterRepository{db: d.db}
}

func isDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Timestamps are stored as Unix milliseconds; 0 is the zero time.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
