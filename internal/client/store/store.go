// Package store provides the durable local slot store backing the
// collection registry: one serialized slot per collection plus slots for
// the sync cursor and last-sync time. The local store is a cache, not the
// system of record; callers treat failures as best-effort.
package store

import "context"

// Store is durable per-key local persistence. Implementations must survive
// process restarts.
type Store interface {
	// Load returns the value stored under key, or (nil, nil) when the
	// slot has never been written.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save overwrites the slot under key.
	Save(ctx context.Context, key string, value []byte) error

	Close() error
}

// Well-known slot keys. Collection slots are "collection/<kind>".
const (
	KeyCursor     = "sync/cursor"
	KeyLastSyncAt = "sync/last"
)

// CollectionKey returns the slot key for a collection name.
func CollectionKey(name string) string {
	return "collection/" + name
}
