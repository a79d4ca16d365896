package fpstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS fingerprints (
    path TEXT PRIMARY KEY,
    duration INTEGER NOT NULL,
    fingerprint TEXT NOT NULL
)`

// SQLiteBackend stores the snapshot in a single fingerprints table. Each
// Write replaces the table contents inside one transaction.
type SQLiteBackend struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteBackend returns a backend for the database at path. The database
// is opened lazily.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

func (b *SQLiteBackend) Path() string { return b.path }

// Close closes the underlying database connection.
func (b *SQLiteBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *SQLiteBackend) Read() (map[string]Record, []Reject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		if _, err := os.Stat(b.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return map[string]Record{}, nil, nil
			}
			return nil, nil, fmt.Errorf("stat cache database: %w", err)
		}
	}
	db, err := b.open()
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.QueryContext(context.Background(), "SELECT path, duration, fingerprint FROM fingerprints")
	if err != nil {
		return nil, nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	records := map[string]Record{}
	for rows.Next() {
		var (
			path string
			rec  Record
		)
		if err := rows.Scan(&path, &rec.Duration, &rec.Fingerprint); err != nil {
			return nil, nil, fmt.Errorf("scan fingerprint row: %w", err)
		}
		records[path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return records, nil, nil
}

func (b *SQLiteBackend) Write(records map[string]Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.open()
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fingerprints"); err != nil {
		return fmt.Errorf("clear fingerprints: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO fingerprints (path, duration, fingerprint) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for path, rec := range records {
		if _, err := stmt.ExecContext(ctx, path, rec.Duration, rec.Fingerprint); err != nil {
			return fmt.Errorf("insert %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) open() (*sql.DB, error) {
	if b.db != nil {
		return b.db, nil
	}
	if dir := filepath.Dir(b.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	b.db = db
	return db, nil
}
