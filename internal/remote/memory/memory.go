// Package memory provides a map-backed Gateway used by tests and by the
// standalone (single-device) mode. Failure injection hooks let sync tests
// exercise error paths.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minetrack/plodsync/internal/remote"
)

// Gateway keeps documents in memory, grouped by collection path.
type Gateway struct {
	mu   sync.Mutex
	docs map[string]map[string]remote.Doc

	// FailCommit, when set, is returned by CommitBatch before any
	// operation is applied.
	FailCommit error

	// FailQuery, when set, is returned by QueryAll and QuerySince.
	FailQuery error

	// Calls counts invocations by method name; tests use it to assert
	// that offline cycles never touch the gateway.
	Calls map[string]int
}

func New() *Gateway {
	return &Gateway{
		docs:  make(map[string]map[string]remote.Doc),
		Calls: make(map[string]int),
	}
}

func (g *Gateway) record(method string) {
	g.Calls[method]++
}

func (g *Gateway) collection(path string) map[string]remote.Doc {
	c, ok := g.docs[path]
	if !ok {
		c = make(map[string]remote.Doc)
		g.docs[path] = c
	}
	return c
}

func (g *Gateway) NewID(path string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("NewID")
	return uuid.NewString()
}

func (g *Gateway) Create(ctx context.Context, path string, doc remote.Doc) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("Create")
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	g.collection(path)[doc.ID] = doc
	return doc.ID, nil
}

func (g *Gateway) Update(ctx context.Context, path, id string, doc remote.Doc) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("Update")
	doc.ID = id
	g.collection(path)[id] = doc
	return nil
}

func (g *Gateway) Delete(ctx context.Context, path, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("Delete")
	delete(g.collection(path), id)
	return nil
}

func (g *Gateway) QueryAll(ctx context.Context, path string) ([]remote.Doc, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("QueryAll")
	if g.FailQuery != nil {
		return nil, g.FailQuery
	}
	var out []remote.Doc
	for _, d := range g.collection(path) {
		out = append(out, d)
	}
	return out, nil
}

func (g *Gateway) QuerySince(ctx context.Context, path string, since time.Time) ([]remote.Doc, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("QuerySince")
	if g.FailQuery != nil {
		return nil, g.FailQuery
	}
	var out []remote.Doc
	for _, d := range g.collection(path) {
		if d.UpdatedAt.After(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (g *Gateway) CommitBatch(ctx context.Context, ops []remote.Op) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("CommitBatch")
	if g.FailCommit != nil {
		return g.FailCommit
	}
	for _, op := range ops {
		switch op.Kind {
		case remote.OpCreate, remote.OpUpdate:
			g.collection(op.Path)[op.ID] = remote.Doc{
				ID:        op.ID,
				UpdatedAt: op.UpdatedAt,
				Data:      op.Data,
			}
		case remote.OpDelete:
			delete(g.collection(op.Path), op.ID)
		}
	}
	return nil
}

func (g *Gateway) Close() error { return nil }

// Seed inserts a document directly, bypassing call counting. Test helper.
func (g *Gateway) Seed(path string, doc remote.Doc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.collection(path)[doc.ID] = doc
}

// Get returns a stored document. Test helper.
func (g *Gateway) Get(path, id string) (remote.Doc, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.collection(path)[id]
	return d, ok
}

// Len returns the number of documents under path. Test helper.
func (g *Gateway) Len(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.collection(path))
}
