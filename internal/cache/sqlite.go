package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/dedene/iconfilter-cli/internal/phrases"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS rules (
	key         TEXT PRIMARY KEY,
	data        TEXT NOT NULL,
	compiled_at INTEGER NOT NULL
)`

// SQLiteStore keeps rule tables in a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	ttl  time.Duration
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating rules table: %w", err)
	}

	return &SQLiteStore{db: db, path: path, ttl: ttl}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(key string) ([]phrases.Rule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var data string

	err := s.db.QueryRowContext(ctx, `SELECT data FROM rules WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading rule cache: %w", err)
	}

	return decode([]byte(data), key, s.ttl), nil
}

// Save implements Store.
func (s *SQLiteStore) Save(key string, rules []phrases.Rule) error {
	data, err := encode(key, rules)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rules (key, data, compiled_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, compiled_at = excluded.compiled_at`,
		key, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing rule cache: %w", err)
	}

	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("clearing rule cache: %w", err)
	}

	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Location implements Store.
func (s *SQLiteStore) Location() string { return s.path }
