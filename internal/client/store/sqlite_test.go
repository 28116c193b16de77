package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS slots (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(setupDB(t))

	v, err := s.Load(ctx, "collection/plods")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, s.Save(ctx, "collection/plods", []byte(`[{"id":"p1"}]`)))
	v, err = s.Load(ctx, "collection/plods")
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"id":"p1"}]`), v)

	// overwrite
	require.NoError(t, s.Save(ctx, "collection/plods", []byte(`[]`)))
	v, err = s.Load(ctx, "collection/plods")
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), v)
}

func TestSQLiteStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	a := NewSQLiteStore(db, WithNamespace("op-a"))
	b := NewSQLiteStore(db, WithNamespace("op-b"))

	require.NoError(t, a.Save(ctx, KeyCursor, []byte("t1")))

	v, err := b.Load(ctx, KeyCursor)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = a.Load(ctx, KeyCursor)
	require.NoError(t, err)
	require.Equal(t, []byte("t1"), v)
}

func TestSQLiteStore_SaveAll(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(setupDB(t))

	require.NoError(t, s.SaveAll(ctx, map[string][]byte{
		CollectionKey("plods"): []byte(`[]`),
		KeyCursor:              []byte("t9"),
	}))

	v, err := s.Load(ctx, KeyCursor)
	require.NoError(t, err)
	require.Equal(t, []byte("t9"), v)
}

func TestOpenSQLite_RunsMigrations(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Save(ctx, "k", []byte("v")))
	v, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}
