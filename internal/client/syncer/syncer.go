// Package syncer drives the two-phase push/pull synchronization of the
// collection registry against the remote gateway: staged dirty-item writes
// committed as one atomic batch, an incremental pull bounded by the sync
// cursor, last-writer-wins merging on the logical timestamp, and
// reconciliation of device-minted ids to server-assigned ones.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/minetrack/plodsync/internal/client/data"
	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/client/store"
	"github.com/minetrack/plodsync/internal/common"
	"github.com/minetrack/plodsync/internal/logging"
	"github.com/minetrack/plodsync/internal/remote"
	"github.com/minetrack/plodsync/internal/timex"
)

// OnlineCheck probes connectivity before a cycle starts. A non-nil error
// means offline: the cycle fails fast without touching the gateway.
type OnlineCheck func(ctx context.Context) error

// Result summarizes a successful cycle.
type Result struct {
	StartedAt time.Time
	Pushed    int
	Pulled    int
	Remapped  int
	Purged    int
}

// Syncer owns the registry for the duration of a cycle. Cycles never run
// concurrently: a request arriving while one is in progress is rejected
// with common.ErrSyncInProgress, and retry is the caller's decision.
type Syncer struct {
	reg     *data.Registry
	gw      remote.Gateway
	store   store.Store
	log     logging.Logger
	online  OnlineCheck
	now     func() time.Time
	syncing atomic.Bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithOnlineCheck installs a connectivity probe. Without one the syncer
// assumes it is online (e.g. standalone mode over the in-memory gateway).
func WithOnlineCheck(c OnlineCheck) Option {
	return func(s *Syncer) { s.online = c }
}

// WithClock overrides the cycle timestamp source. Test seam.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

func New(reg *data.Registry, gw remote.Gateway, st store.Store, log logging.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		reg:   reg,
		gw:    gw,
		store: st,
		log:   log.With("module", "syncer"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSyncing reports whether a cycle is currently running.
func (s *Syncer) IsSyncing() bool { return s.syncing.Load() }

// NeedsSync reports whether any collection holds unsynced mutations.
func (s *Syncer) NeedsSync() bool { return s.reg.NeedsSync() }

// LastSyncAt returns the completion time of the last successful cycle.
func (s *Syncer) LastSyncAt(ctx context.Context) (time.Time, bool) {
	b, err := s.store.Load(ctx, store.KeyLastSyncAt)
	if err != nil || len(b) == 0 {
		return time.Time{}, false
	}
	t := timex.Parse(string(b))
	return t, !t.IsZero()
}

// idMapping records one local→remote identifier assignment made while
// staging the push phase.
type idMapping struct {
	kind  data.Kind
	oldID string
	newID string
}

// Sync runs one full cycle. Until both the batch commit and the pull
// complete, no registry or local-store state changes; a failed push leaves
// every dirty flag and id bit-for-bit as it was. A pull failure after a
// successful push is surfaced as a failed cycle with dirty flags intact,
// so the next cycle resends the same items (accepted eventual-consistency
// gap; remote updates are idempotent overwrites).
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	if !s.syncing.CompareAndSwap(false, true) {
		return nil, common.ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	if s.online != nil {
		if err := s.online(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrOffline, err)
		}
	}

	start := s.now().UTC()
	res := &Result{StartedAt: start}
	snap := s.reg.Snapshot()

	// Push: stage every dirty item across all collections, then commit
	// the staged writes as one atomic batch.
	ops, mappings, err := s.stage(snap, start)
	if err != nil {
		return nil, fmt.Errorf("staging failed: %w", err)
	}
	if len(ops) > 0 {
		if err := s.gw.CommitBatch(ctx, ops); err != nil {
			return nil, fmt.Errorf("push failed: %w", err)
		}
	}
	res.Pushed = len(ops)

	// Pull: incremental per collection, strictly after the cursor.
	cursor := s.loadCursor(ctx)
	for _, k := range data.Kinds() {
		docs, err := s.pull(ctx, k, cursor)
		if err != nil {
			return nil, fmt.Errorf("pull failed for %q: %w", k, err)
		}
		merged, applied, err := mergeRemote(k, snap[k], docs)
		if err != nil {
			return nil, fmt.Errorf("merge failed for %q: %w", k, err)
		}
		snap[k] = merged
		res.Pulled += applied
	}

	// Reconcile identifiers after the merge so a freshly pulled copy of a
	// just-pushed item never ends up duplicated.
	res.Remapped = applyMappings(snap, mappings)

	// Finalize: everything reconciled, tombstones confirmed remotely.
	for _, k := range data.Kinds() {
		kept := snap[k][:0]
		for _, rec := range snap[k] {
			if rec.Base().Deleted {
				res.Purged++
				continue
			}
			rec.Base().Dirty = false
			kept = append(kept, rec)
		}
		snap[k] = kept
	}
	s.reg.ReplaceAll(ctx, snap)
	s.saveCursor(ctx, start)

	s.log.Info(ctx, "sync cycle finished",
		"pushed", res.Pushed, "pulled", res.Pulled,
		"remapped", res.Remapped, "purged", res.Purged)
	return res, nil
}

// stage builds the batch for one cycle. New records (local-form id) get a
// gateway-minted remote id recorded in the mapping list; tombstones become
// deletes; everything else becomes a full-document update stamped with the
// cycle timestamp.
func (s *Syncer) stage(snap map[data.Kind][]models.Record, start time.Time) ([]remote.Op, []idMapping, error) {
	var ops []remote.Op
	var mappings []idMapping

	for _, k := range data.Kinds() {
		path := k.RemotePath()
		for _, rec := range snap[k] {
			base := rec.Base()
			if !base.Dirty {
				continue
			}

			switch {
			case base.Deleted:
				// Created and deleted without an intervening sync:
				// nothing exists remotely, finalization purges it.
				if base.IsLocal() {
					continue
				}
				ops = append(ops, remote.Op{
					Kind: remote.OpDelete, Path: path, ID: base.ID,
				})
			case base.IsLocal():
				newID := s.gw.NewID(path)
				mappings = append(mappings, idMapping{kind: k, oldID: base.ID, newID: newID})
				payload, err := remotePayload(rec, newID, base.UpdatedAt)
				if err != nil {
					return nil, nil, err
				}
				ops = append(ops, remote.Op{
					Kind: remote.OpCreate, Path: path, ID: newID,
					UpdatedAt: timex.Parse(base.UpdatedAt), Data: payload,
				})
			default:
				stamp := timex.Stamp(start)
				payload, err := remotePayload(rec, base.ID, stamp)
				if err != nil {
					return nil, nil, err
				}
				ops = append(ops, remote.Op{
					Kind: remote.OpUpdate, Path: path, ID: base.ID,
					UpdatedAt: start, Data: payload,
				})
			}
		}
	}
	return ops, mappings, nil
}

// remotePayload serializes a record for the remote store: id and updatedAt
// rewritten, the local-only dirty flag stripped.
func remotePayload(rec models.Record, id, updatedAt string) (json.RawMessage, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	delete(doc, "dirty")
	doc["id"] = id
	doc["updatedAt"] = updatedAt
	return json.Marshal(doc)
}

func (s *Syncer) pull(ctx context.Context, k data.Kind, cursor time.Time) ([]remote.Doc, error) {
	if cursor.IsZero() {
		return s.gw.QueryAll(ctx, k.RemotePath())
	}
	return s.gw.QuerySince(ctx, k.RemotePath(), cursor)
}

// mergeRemote folds pulled documents into the local snapshot using
// last-writer-wins on the logical timestamp: a remote version applies only
// when absent locally or strictly newer; ties keep the local version.
func mergeRemote(k data.Kind, local []models.Record, docs []remote.Doc) ([]models.Record, int, error) {
	applied := 0
	for _, doc := range docs {
		rec := k.New()
		if err := json.Unmarshal(doc.Data, rec); err != nil {
			return nil, 0, fmt.Errorf("bad remote document %s: %w", doc.ID, err)
		}
		base := rec.Base()
		base.ID = doc.ID
		base.Dirty = false
		if base.UpdatedAt == "" {
			base.UpdatedAt = timex.Stamp(doc.UpdatedAt)
		}

		idx := -1
		for i, l := range local {
			if l.Base().ID == doc.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			local = append(local, rec)
			applied++
			continue
		}
		if timex.After(base.UpdatedAt, local[idx].Base().UpdatedAt) {
			local[idx] = rec
			applied++
		}
	}
	return local, applied, nil
}

// applyMappings rewrites every remapped local id: the record's own id in
// its collection, and every cross-collection reference anywhere. When the
// pull already delivered a copy under the new id, the stale local record is
// dropped instead of duplicated.
func applyMappings(snap map[data.Kind][]models.Record, mappings []idMapping) int {
	remapped := 0
	for _, m := range mappings {
		items := snap[m.kind]
		existing := -1
		stale := -1
		for i, rec := range items {
			switch rec.Base().ID {
			case m.newID:
				existing = i
			case m.oldID:
				stale = i
			}
		}
		if stale >= 0 {
			if existing >= 0 {
				items = append(items[:stale], items[stale+1:]...)
			} else {
				items[stale].Base().ID = m.newID
				items[stale].Base().Dirty = false
			}
			snap[m.kind] = items
			remapped++
		}

		for _, k := range data.Kinds() {
			for _, rec := range snap[k] {
				rec.Remap(m.oldID, m.newID)
			}
		}
	}
	return remapped
}

func (s *Syncer) loadCursor(ctx context.Context) time.Time {
	b, err := s.store.Load(ctx, store.KeyCursor)
	if err != nil {
		s.log.Warn(ctx, "failed to load sync cursor, pulling full collections", "error", err)
		return time.Time{}
	}
	return timex.Parse(string(b))
}

// saveCursor advances the cursor to the cycle start and records the sync
// time. Cursor persistence is cache-grade: a failure only means the next
// cycle refetches more than it strictly needs.
func (s *Syncer) saveCursor(ctx context.Context, start time.Time) {
	if err := s.store.Save(ctx, store.KeyCursor, []byte(timex.Stamp(start))); err != nil {
		s.log.Error(ctx, "failed to persist sync cursor", "error", err)
	}
	if err := s.store.Save(ctx, store.KeyLastSyncAt, []byte(timex.Stamp(s.now()))); err != nil {
		s.log.Error(ctx, "failed to persist last sync time", "error", err)
	}
}

// StartAutoSync runs Sync on a fixed interval until ctx is cancelled.
// Offline and already-running outcomes are expected while in the field and
// only logged. The re-entrancy gate stays in force: a manual sync and the
// ticker never interleave.
func (s *Syncer) StartAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.NeedsSync() {
				continue
			}
			if _, err := s.Sync(ctx); err != nil {
				s.log.Debug(ctx, "background sync skipped", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
