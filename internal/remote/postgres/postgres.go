// Package postgres implements the remote Gateway over a shared PostgreSQL
// database. Every collection lives in one documents table keyed by
// (path, id); batch commits run inside a single transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/minetrack/plodsync/internal/dbx"
	"github.com/minetrack/plodsync/internal/remote"
	"github.com/minetrack/plodsync/internal/remote/postgres/migrations"
)

type Gateway struct {
	db *sql.DB
}

// Open connects to the remote database and runs embedded migrations.
func Open(ctx context.Context, dsn string) (*Gateway, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	g := &Gateway{db: db}
	if err := g.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return g, nil
}

// New wraps an already-open database without running migrations. Intended
// for tests that manage their own schema.
func New(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, g.db, ".")
}

// NewID mints a remote identifier. UUIDs are globally unique, so no server
// round trip is needed while staging offline creates.
func (g *Gateway) NewID(path string) string {
	return uuid.NewString()
}

func (g *Gateway) Create(ctx context.Context, path string, doc remote.Doc) (string, error) {
	if doc.ID == "" {
		doc.ID = g.NewID(path)
	}
	query := `INSERT INTO documents (path, id, updated_at, data) VALUES ($1, $2, $3, $4)`
	if _, err := g.db.ExecContext(ctx, query, path, doc.ID, doc.UpdatedAt, []byte(doc.Data)); err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return doc.ID, nil
}

func (g *Gateway) Update(ctx context.Context, path, id string, doc remote.Doc) error {
	return execOp(ctx, g.db, remote.Op{
		Kind: remote.OpUpdate, Path: path, ID: id,
		UpdatedAt: doc.UpdatedAt, Data: doc.Data,
	})
}

func (g *Gateway) Delete(ctx context.Context, path, id string) error {
	return execOp(ctx, g.db, remote.Op{Kind: remote.OpDelete, Path: path, ID: id})
}

func (g *Gateway) QueryAll(ctx context.Context, path string) ([]remote.Doc, error) {
	query := `SELECT id, updated_at, data FROM documents WHERE path = $1`
	return g.queryDocs(ctx, query, path)
}

func (g *Gateway) QuerySince(ctx context.Context, path string, since time.Time) ([]remote.Doc, error) {
	// Strictly greater-than: the cursor row itself is never refetched.
	query := `SELECT id, updated_at, data FROM documents WHERE path = $1 AND updated_at > $2`
	return g.queryDocs(ctx, query, path, since)
}

func (g *Gateway) queryDocs(ctx context.Context, query string, args ...any) ([]remote.Doc, error) {
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var result []remote.Doc
	for rows.Next() {
		var d remote.Doc
		var data []byte
		if err := rows.Scan(&d.ID, &d.UpdatedAt, &data); err != nil {
			return nil, err
		}
		d.Data = data
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CommitBatch applies every op inside one transaction; the whole batch
// rolls back on the first failure.
func (g *Gateway) CommitBatch(ctx context.Context, ops []remote.Op) error {
	if len(ops) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, g.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, op := range ops {
			if err := execOp(ctx, tx, op); err != nil {
				return err
			}
		}
		return nil
	})
}

func execOp(ctx context.Context, db dbx.DBTX, op remote.Op) error {
	switch op.Kind {
	case remote.OpCreate:
		query := `INSERT INTO documents (path, id, updated_at, data) VALUES ($1, $2, $3, $4)`
		if _, err := db.ExecContext(ctx, query, op.Path, op.ID, op.UpdatedAt, []byte(op.Data)); err != nil {
			return fmt.Errorf("failed to create %s/%s: %w", op.Path, op.ID, err)
		}
	case remote.OpUpdate:
		query := `INSERT INTO documents (path, id, updated_at, data) VALUES ($1, $2, $3, $4)
			ON CONFLICT (path, id) DO UPDATE SET updated_at = excluded.updated_at, data = excluded.data`
		if _, err := db.ExecContext(ctx, query, op.Path, op.ID, op.UpdatedAt, []byte(op.Data)); err != nil {
			return fmt.Errorf("failed to update %s/%s: %w", op.Path, op.ID, err)
		}
	case remote.OpDelete:
		query := `DELETE FROM documents WHERE path = $1 AND id = $2`
		if _, err := db.ExecContext(ctx, query, op.Path, op.ID); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", op.Path, op.ID, err)
		}
	default:
		return errors.New("unknown batch operation")
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}
