// Package models defines the client-side domain records synchronized between
// devices: plods (activity types), data-point definitions, user profiles and
// completed activity log entries. Every record embeds Entity, the
// bookkeeping base the sync engine operates on.
package models

import (
	"github.com/google/uuid"
)

// LocalIDPrefix marks identifiers minted on a device before the record has
// ever been pushed. The sync cycle replaces them with server-assigned ids.
const LocalIDPrefix = "local_"

// Entity carries the per-record sync bookkeeping shared by all collections.
type Entity struct {
	// ID is unique within the record's collection. Local form carries
	// LocalIDPrefix; remote form is server-assigned and opaque.
	ID string `json:"id"`

	// Deleted marks the record as a tombstone. Tombstones stay in local
	// state until the deletion has been confirmed remotely.
	Deleted bool `json:"deleted,omitempty"`

	// Dirty marks local mutations not yet confirmed persisted remotely.
	// It is a local-only concern and is stripped from remote payloads.
	Dirty bool `json:"dirty,omitempty"`

	// UpdatedAt is the ISO-8601 stamp of the last mutation, local or
	// remote. It is the logical clock for last-writer-wins merges.
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Base returns the embedded bookkeeping fields.
func (e *Entity) Base() *Entity { return e }

// IsLocal reports whether the record still carries a device-minted id.
func (e *Entity) IsLocal() bool {
	return len(e.ID) >= len(LocalIDPrefix) && e.ID[:len(LocalIDPrefix)] == LocalIDPrefix
}

// NewLocalID mints a device-local identifier.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// Record is implemented by every synchronized domain type.
type Record interface {
	// Base exposes the embedded Entity for bookkeeping.
	Base() *Entity

	// Clone returns a deep copy. The sync cycle works on clones so a
	// failed cycle leaves registry state untouched.
	Clone() Record

	// Remap rewrites every reference this record holds to another
	// record's id (not its own id) from old to new. Used when local ids
	// are reconciled to server-assigned ids.
	Remap(old, new string)
}

func remapIDs(ids []string, old, new string) {
	for i, id := range ids {
		if id == old {
			ids[i] = new
		}
	}
}
