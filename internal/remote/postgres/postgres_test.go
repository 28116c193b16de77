package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/plodsync/internal/remote"
)

func newGatewayWithMock(t *testing.T) (*Gateway, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock, db
}

func TestQuerySince_UsesStrictComparison(t *testing.T) {
	g, mock, _ := newGatewayWithMock(t)
	since := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "updated_at", "data"}).
		AddRow("p1", since.Add(time.Second), []byte(`{"id":"p1"}`))

	mock.ExpectQuery(`SELECT id, updated_at, data FROM documents WHERE path = \$1 AND updated_at > \$2`).
		WithArgs("plods", since).
		WillReturnRows(rows)

	docs, err := g.QuerySince(context.Background(), "plods", since)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "p1", docs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBatch_RunsInOneTransaction(t *testing.T) {
	g, mock, _ := newGatewayWithMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("plods", "p1", now, []byte(`{"id":"p1"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM documents WHERE path = \$1 AND id = \$2`).
		WithArgs("defs", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := g.CommitBatch(context.Background(), []remote.Op{
		{Kind: remote.OpCreate, Path: "plods", ID: "p1", UpdatedAt: now, Data: []byte(`{"id":"p1"}`)},
		{Kind: remote.OpDelete, Path: "defs", ID: "d1"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBatch_RollsBackOnFailure(t *testing.T) {
	g, mock, _ := newGatewayWithMock(t)
	now := time.Now().UTC()
	boom := errors.New("constraint violation")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("plods", "p1", now, []byte(`{}`)).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := g.CommitBatch(context.Background(), []remote.Op{
		{Kind: remote.OpCreate, Path: "plods", ID: "p1", UpdatedAt: now, Data: []byte(`{}`)},
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBatch_EmptyIsNoop(t *testing.T) {
	g, mock, _ := newGatewayWithMock(t)
	require.NoError(t, g.CommitBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewID_IsUniqueAndOpaque(t *testing.T) {
	g, _, _ := newGatewayWithMock(t)
	a, b := g.NewID("plods"), g.NewID("plods")
	require.NotEqual(t, a, b)
	require.NotContains(t, a, "local_")
}
