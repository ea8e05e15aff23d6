// Package sqlite implements the feed registry and a content-addressed blob
// cache on an embedded SQLite database. It backs local deployments and
// tests; production deployments point the pipeline at the on-ledger registry
// and the public aggregator instead.
//
// modernc.org/sqlite is a pure-Go translation of SQLite, so the server
// cross-compiles without a C toolchain.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB pool and implements repository.FeedRegistry,
// repository.BlobStore and repository.BlobWriter.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single pooled connection: SQLite serializes writers anyway, and with
	// ":memory:" every new connection would otherwise get its own database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight, which matters
	// once feed updates and admin calls overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS feeds (
			id                TEXT PRIMARY KEY,
			blob_ref          TEXT NOT NULL,
			language          TEXT NOT NULL,
			return_type       TEXT NOT NULL,
			last_result       TEXT,
			update_cadence_ms INTEGER NOT NULL DEFAULT 0,
			last_update_ms    INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("creating feeds table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			ref        TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating blobs table: %w", err)
	}

	return nil
}
