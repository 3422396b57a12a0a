// Package sqlite stores crawled records in a SQLite database. Records are
// deduplicated per source by a hash of their JSON encoding.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	url          TEXT NOT NULL DEFAULT '',
	data         TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	UNIQUE (source, content_hash)
);
CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
CREATE INDEX IF NOT EXISTS idx_records_url ON records(url);
`

// DB is a single-writer SQLite connection holding the records table.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns an unopened database at path.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects and migrates the schema.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", db.path, err)
	}
	conn.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if db.path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, stmt := range append(pragmas, schema) {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return fmt.Errorf("open %s: %w", db.path, err)
		}
	}

	db.db = conn
	return nil
}

// Close closes the connection if it is open.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// QueryRowContext executes a query that returns at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement without returning rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}
