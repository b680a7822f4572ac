package cache

// Package cache persists raw origin responses keyed by sanitized request
// targets.
//
// Entries are written once as a side effect of a successful GET forward and
// are never expired or evicted. Three backends exist: a directory with one
// file per key (the default), a SQLite database, and an in-memory map.
