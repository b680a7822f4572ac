package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DirStore keeps one file per key inside a directory. The existence of the
// file is the lookup mechanism; there is no index or manifest. Writes land
// in a temporary file and are installed with an atomic rename, so a
// concurrent reader observes either the old entry or the new one, never a
// partial write.
type DirStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDirStore creates dir if absent and returns a store backed by it.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &DirStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// keyLock returns the mutex for key, creating it on first use. Locking is
// scoped per key so unrelated requests never serialize on each other.
func (s *DirStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *DirStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *DirStore) Get(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	return b, true, nil
}

func (s *DirStore) Put(key string, b []byte) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	// Sanitized keys contain no path separators, so the key can name the
	// temp file directly.
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp entry for %s: %w", key, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("install cache entry %s: %w", key, err)
	}
	return nil
}

func (s *DirStore) Has(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}
