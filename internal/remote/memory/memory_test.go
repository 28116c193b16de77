package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minetrack/plodsync/internal/remote"
)

func TestGateway_CreateQuery(t *testing.T) {
	ctx := context.Background()
	g := New()

	id, err := g.Create(ctx, "plods", remote.Doc{Data: []byte(`{"name":"Drilling"}`), UpdatedAt: time.Now()})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	docs, err := g.QueryAll(ctx, "plods")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, id, docs[0].ID)
}

func TestGateway_QuerySinceStrictlyGreater(t *testing.T) {
	ctx := context.Background()
	g := New()
	cursor := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	g.Seed("plods", remote.Doc{ID: "at-cursor", UpdatedAt: cursor})
	g.Seed("plods", remote.Doc{ID: "after", UpdatedAt: cursor.Add(time.Nanosecond)})
	g.Seed("plods", remote.Doc{ID: "before", UpdatedAt: cursor.Add(-time.Second)})

	docs, err := g.QuerySince(ctx, "plods", cursor)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "after", docs[0].ID)
}

func TestGateway_CommitBatchAtomicFailure(t *testing.T) {
	ctx := context.Background()
	g := New()
	g.FailCommit = errors.New("remote rejected batch")

	err := g.CommitBatch(ctx, []remote.Op{
		{Kind: remote.OpCreate, Path: "plods", ID: "p1", Data: []byte(`{}`)},
	})
	require.Error(t, err)
	require.Equal(t, 0, g.Len("plods"))
}

func TestGateway_CommitBatchAppliesAllKinds(t *testing.T) {
	ctx := context.Background()
	g := New()
	g.Seed("plods", remote.Doc{ID: "old", Data: []byte(`{"name":"Old"}`)})

	err := g.CommitBatch(ctx, []remote.Op{
		{Kind: remote.OpCreate, Path: "plods", ID: "p1", Data: []byte(`{"name":"New"}`)},
		{Kind: remote.OpUpdate, Path: "plods", ID: "old", Data: []byte(`{"name":"Renamed"}`)},
		{Kind: remote.OpDelete, Path: "defs", ID: "gone"},
	})
	require.NoError(t, err)

	d, ok := g.Get("plods", "p1")
	require.True(t, ok)
	require.JSONEq(t, `{"name":"New"}`, string(d.Data))

	d, ok = g.Get("plods", "old")
	require.True(t, ok)
	require.JSONEq(t, `{"name":"Renamed"}`, string(d.Data))

	_, ok = g.Get("defs", "gone")
	require.False(t, ok)
}

func TestGateway_NewIDUnique(t *testing.T) {
	g := New()
	require.NotEqual(t, g.NewID("plods"), g.NewID("plods"))
}
