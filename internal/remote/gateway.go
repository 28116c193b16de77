// Package remote defines the gateway abstraction over the shared remote
// store. The sync engine needs only these capabilities from it: minting
// identifiers, per-document writes, collection queries, incremental queries
// and an atomic batch commit.
package remote

import (
	"context"
	"encoding/json"
	"time"
)

// Doc is one stored document: its server-side identifier, the logical
// timestamp used for incremental queries, and the entity payload.
type Doc struct {
	ID        string
	UpdatedAt time.Time
	Data      json.RawMessage
}

// OpKind discriminates staged batch operations.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one staged write in a batch. Data and UpdatedAt are ignored for
// deletes.
type Op struct {
	Kind      OpKind
	Path      string
	ID        string
	UpdatedAt time.Time
	Data      json.RawMessage
}

// Gateway is the remote persistence service. Implementations own the
// server-side copy of every collection.
type Gateway interface {
	// NewID mints a fresh, globally unique remote identifier for a
	// document under path. Minting performs no I/O; ids are never reused.
	NewID(path string) string

	// Create stores a new document and returns its assigned id.
	Create(ctx context.Context, path string, doc Doc) (string, error)

	// Update overwrites the full document (no field-level merge).
	Update(ctx context.Context, path, id string, doc Doc) error

	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, path, id string) error

	// QueryAll returns every document under path.
	QueryAll(ctx context.Context, path string) ([]Doc, error)

	// QuerySince returns documents with UpdatedAt strictly after since.
	QuerySince(ctx context.Context, path string, since time.Time) ([]Doc, error)

	// CommitBatch applies all operations atomically: all succeed or none
	// do.
	CommitBatch(ctx context.Context, ops []Op) error

	Close() error
}
