package data

import (
	"context"

	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/timex"
)

// Upsert applies a caller's record to a collection, stamping sync
// bookkeeping.
//
// A record arriving with a non-local id is an update to an existing
// (possibly remote-confirmed) item: its payload replaces the stored one.
// When no item with that id exists the call is a silent no-op; existence is
// deliberately not validated here. Anything else is treated as new: a local
// id is minted when none is supplied, a still-unsynced local item with the
// same id is overwritten, otherwise the record is appended.
//
// The stored record is always a clone with dirty=true and updatedAt=now;
// the caller's record is never retained or mutated.
func (r *Registry) Upsert(ctx context.Context, k Kind, rec models.Record) {
	if !k.Valid() || rec == nil {
		return
	}

	r.mu.Lock()
	now := timex.Stamp(r.now())
	items := r.cols[k]

	stored := rec.Clone()
	base := stored.Base()

	if base.ID != "" && !base.IsLocal() {
		idx := indexOf(items, base.ID)
		if idx < 0 {
			r.mu.Unlock()
			return
		}
		base.Dirty = true
		base.UpdatedAt = now
		items = replaceAt(items, idx, stored)
	} else {
		if base.ID == "" {
			base.ID = models.NewLocalID()
		}
		base.Dirty = true
		base.UpdatedAt = now
		if idx := indexOf(items, base.ID); idx >= 0 {
			items = replaceAt(items, idx, stored)
		} else {
			items = appendCopy(items, stored)
		}
	}

	r.cols[k] = items
	r.mu.Unlock()
	r.persist(ctx, k, items)
}

// SoftDelete tombstones a record: deleted=true, dirty=true, updatedAt=now.
// The record stays in the collection (and local store) until a sync cycle
// confirms the tombstone remotely. No-op when the id is not present.
func (r *Registry) SoftDelete(ctx context.Context, k Kind, id string) {
	if !k.Valid() {
		return
	}

	r.mu.Lock()
	items := r.cols[k]
	idx := indexOf(items, id)
	if idx < 0 {
		r.mu.Unlock()
		return
	}

	tombstone := items[idx].Clone()
	base := tombstone.Base()
	base.Deleted = true
	base.Dirty = true
	base.UpdatedAt = timex.Stamp(r.now())

	items = replaceAt(items, idx, tombstone)
	r.cols[k] = items
	r.mu.Unlock()
	r.persist(ctx, k, items)
}

func indexOf(items []models.Record, id string) int {
	for i, rec := range items {
		if rec.Base().ID == id {
			return i
		}
	}
	return -1
}

// replaceAt returns a fresh slice with items[idx] swapped; the previous
// array is never mutated so held snapshots stay consistent.
func replaceAt(items []models.Record, idx int, rec models.Record) []models.Record {
	out := make([]models.Record, len(items))
	copy(out, items)
	out[idx] = rec
	return out
}

func appendCopy(items []models.Record, rec models.Record) []models.Record {
	out := make([]models.Record, len(items), len(items)+1)
	copy(out, items)
	return append(out, rec)
}
