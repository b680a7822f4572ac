package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore keeps cache entries in a single SQLite database instead of
// one file per key. Reads go straight to the database; writes serialize on
// a mutex since the driver allows only one writer at a time.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at filename. An empty
// filename opens a shared in-memory database.
func NewSQLiteStore(filename string) (*SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("open cache db %s: %w", filename, err)
	}
	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS responses (key TEXT PRIMARY KEY, bytes BLOB)",
		"PRAGMA journal_mode=WAL",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("init cache db: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var b []byte
	err := s.db.QueryRow("SELECT bytes FROM responses WHERE key = ?", key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	return b, true, nil
}

func (s *SQLiteStore) Put(key string, b []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.Exec("INSERT OR REPLACE INTO responses (key, bytes) VALUES (?, ?)", key, b)
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Has(key string) bool {
	var one int
	return s.db.QueryRow("SELECT 1 FROM responses WHERE key = ?", key).Scan(&one) == nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
