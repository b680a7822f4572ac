package cache

import "strings"

// Store is the persistence interface for cached origin responses.
//
// Implementations must be safe for concurrent use. Get must not mutate the
// store. Put replaces any existing entry for the key unconditionally.
type Store interface {
	// Get returns the stored bytes for key and whether an entry exists.
	Get(key string) ([]byte, bool, error)
	// Put stores b under key, overwriting any previous entry.
	Put(key string, b []byte) error
	// Has reports whether an entry exists for key.
	Has(key string) bool
}

var keyReplacer = strings.NewReplacer("/", "_", "?", "_", ":", "_")

// Key derives the filesystem-safe cache key for a request target by
// replacing "/", "?" and ":" with "_". The mapping is deterministic and
// total but not injective: distinct targets can collide ("a/b" and "a_b"
// map to the same key). That collision is long-standing on-disk behavior
// and is kept rather than papered over with a hash.
func Key(target string) string {
	return keyReplacer.Replace(target)
}
