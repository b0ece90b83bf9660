package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories can run
// inside or outside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// fileDSN enables WAL, foreign keys and a busy timeout on every pooled
// connection, and makes BEGIN take the write lock up front so concurrent
// writers queue instead of failing with SQLITE_BUSY on upgrade.
func fileDSN(path string) string {
	return "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
}

// OpenDB opens (creating if needed) the SQLite database at path and applies
// migrations. MemoryPath yields a single-connection in-memory database.
func OpenDB(path string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	if path == MemoryPath {
		db, err = sql.Open("sqlite", MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
		db, err = sql.Open("sqlite", fileDSN(path))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
