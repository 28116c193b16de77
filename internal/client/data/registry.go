// Package data implements the client-side collection registry and the
// mutation engine that stamps dirty flags and timestamps onto it. The
// registry owns the authoritative in-memory arrays; every change is
// mirrored to the local store as a best-effort cache write.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/client/store"
	"github.com/minetrack/plodsync/internal/common"
	"github.com/minetrack/plodsync/internal/logging"
)

// Kind tags one of the synchronized collections. Using a closed set of
// typed tags (instead of free-form names) keeps uniform access without
// losing the concrete record type behind each collection.
type Kind string

const (
	KindPlods       Kind = "plods"
	KindDefinitions Kind = "definitions"
	KindUsers       Kind = "users"
	KindLogs        Kind = "logs"
)

// Kinds lists every collection in a stable order.
func Kinds() []Kind {
	return []Kind{KindPlods, KindDefinitions, KindUsers, KindLogs}
}

// RemotePath is the collection's path in the remote store.
func (k Kind) RemotePath() string { return string(k) }

// New returns an empty record of the collection's concrete type.
func (k Kind) New() models.Record {
	switch k {
	case KindPlods:
		return &models.Plod{}
	case KindDefinitions:
		return &models.Definition{}
	case KindUsers:
		return &models.UserProfile{}
	case KindLogs:
		return &models.LogEntry{}
	default:
		return nil
	}
}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool { return k.New() != nil }

// DecodeItems unmarshals a serialized collection into typed records.
func DecodeItems(k Kind, b []byte) ([]models.Record, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("decode %q: %w", k, common.ErrUnknownCollection)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, fmt.Errorf("decode %q: %w", k, err)
	}
	items := make([]models.Record, 0, len(raws))
	for _, raw := range raws {
		rec := k.New()
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("decode %q item: %w", k, err)
		}
		items = append(items, rec)
	}
	return items, nil
}

// Registry holds the current array for every collection. It is constructed
// explicitly and passed to whoever needs it; there is no ambient global
// state. Arrays are swapped whole on every change, never mutated in place,
// so a caller holding a previous snapshot keeps a consistent view.
type Registry struct {
	mu    sync.RWMutex
	cols  map[Kind][]models.Record
	store store.Store
	log   logging.Logger
	now   func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the timestamp source. Test seam.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(st store.Store, log logging.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		cols:  make(map[Kind][]models.Record, len(Kinds())),
		store: st,
		log:   log.With("module", "registry"),
		now:   time.Now,
	}
	for _, k := range Kinds() {
		r.cols[k] = nil
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hydrate loads every collection from the local store. Missing slots leave
// the collection empty; a corrupt slot is an error so the caller can decide
// whether to discard local state.
func (r *Registry) Hydrate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range Kinds() {
		b, err := r.store.Load(ctx, store.CollectionKey(string(k)))
		if err != nil {
			return fmt.Errorf("failed to load collection %q: %w", k, err)
		}
		items, err := DecodeItems(k, b)
		if err != nil {
			return err
		}
		r.cols[k] = items
	}
	return nil
}

// Items returns the current array for a collection, tombstones included;
// filtering deleted items is the consumer's job. The returned slice is a
// fresh copy but shares record pointers: treat records as read-only and go
// through Upsert/SoftDelete for changes.
func (r *Registry) Items(k Kind) []models.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.cols[k]
	out := make([]models.Record, len(items))
	copy(out, items)
	return out
}

// Active returns the non-tombstoned records of a collection.
func (r *Registry) Active(k Kind) []models.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Record
	for _, rec := range r.cols[k] {
		if !rec.Base().Deleted {
			out = append(out, rec)
		}
	}
	return out
}

// Find returns the record with the given id, tombstoned or not.
func (r *Registry) Find(k Kind, id string) (models.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.cols[k] {
		if rec.Base().ID == id {
			return rec, true
		}
	}
	return nil, false
}

// Snapshot deep-clones every collection. The sync cycle works on the
// snapshot so that a failed cycle leaves the registry untouched.
func (r *Registry) Snapshot() map[Kind][]models.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Kind][]models.Record, len(r.cols))
	for k, items := range r.cols {
		clones := make([]models.Record, len(items))
		for i, rec := range items {
			clones[i] = rec.Clone()
		}
		out[k] = clones
	}
	return out
}

// NeedsSync reports whether any record in any collection is dirty.
func (r *Registry) NeedsSync() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, items := range r.cols {
		for _, rec := range items {
			if rec.Base().Dirty {
				return true
			}
		}
	}
	return false
}

// Replace swaps in a new array for one collection and mirrors it to the
// local store.
func (r *Registry) Replace(ctx context.Context, k Kind, items []models.Record) {
	r.mu.Lock()
	r.cols[k] = items
	r.mu.Unlock()
	r.persist(ctx, k, items)
}

// ReplaceAll swaps every collection at once (sync finalization).
func (r *Registry) ReplaceAll(ctx context.Context, cols map[Kind][]models.Record) {
	r.mu.Lock()
	for k, items := range cols {
		r.cols[k] = items
	}
	r.mu.Unlock()
	for k, items := range cols {
		r.persist(ctx, k, items)
	}
}

// persist mirrors a collection to the local store. The store is a cache:
// failures are logged and swallowed, never surfaced to the mutation caller.
func (r *Registry) persist(ctx context.Context, k Kind, items []models.Record) {
	if items == nil {
		items = []models.Record{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		r.log.Error(ctx, "failed to serialize collection", "collection", k, "error", err)
		return
	}
	if err := r.store.Save(ctx, store.CollectionKey(string(k)), b); err != nil {
		r.log.Error(ctx, "failed to persist collection", "collection", k, "error", err)
	}
}
