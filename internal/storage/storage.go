// Package storage persists users and financial entries in SQLite. Every
// operation round-trips to the database; nothing is cached here.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// Repository owns the database handle. Stores are constructed from it and
// injected into the components that need them; nothing reaches for a
// global connection.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at dbPath and
// applies pending migrations. Pass ":memory:" for an ephemeral database.
func Open(dbPath string) (*Repository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serializes writers anyway; a single pooled connection avoids
	// SQLITE_BUSY and keeps ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Users returns the credential store.
func (r *Repository) Users() *UserStore {
	return &UserStore{db: r.db}
}

// Entries returns the record store bound to one variant's table.
func (r *Repository) Entries(v core.Variant) *EntryStore {
	return &EntryStore{db: r.db, variant: v}
}
