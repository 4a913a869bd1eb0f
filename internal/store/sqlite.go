package store

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

// DBFileName is the database file created inside the data directory.
const DBFileName = "constellations.db"

const createSlots = `CREATE TABLE IF NOT EXISTS slots (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at TEXT NOT NULL
);`

const upsertSlot = `INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`

// BusyTimeout is how long a connection waits on a lock held by another
// process, such as the CLI writing while the TUI is open.
const BusyTimeout = 5 * time.Second

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteSlot stores slots as rows of a single table.
type SQLiteSlot struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the slot database in dataDir.
func OpenSQLite(dataDir string) (*SQLiteSlot, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	db, err := openDB("sqlite", dsn(filepath.Join(dataDir, DBFileName)))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createSlots); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSlot{db: db}, nil
}

// dsn sets the pragmas on every pooled connection, not just the first.
func dsn(path string) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, BusyTimeout.Milliseconds())
}

func (s *SQLiteSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *SQLiteSlot) Put(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, upsertSlot, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Close is idempotent.
func (s *SQLiteSlot) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
