package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/minetrack/plodsync/internal/client/store/migrations"
	"github.com/minetrack/plodsync/internal/dbx"
	"github.com/pressly/goose/v3"
)

// SQLiteStore keeps slots in a local SQLite database. Keys may be prefixed
// with a namespace so several operators can share one device without
// seeing each other's unsynced state.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithNamespace prefixes every key, isolating per-operator state.
func WithNamespace(ns string) Option {
	return func(s *SQLiteStore) { s.namespace = ns }
}

// OpenSQLite opens (creating if needed) the local database at dsn and runs
// embedded migrations.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate local db: %w", err)
	}

	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewSQLiteStore wraps an already-open database without running migrations.
// Intended for tests that manage their own schema.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + "/" + key
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM slots WHERE key = ?`
	var value []byte
	err := s.db.QueryRowContext(ctx, query, s.key(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, err := s.db.ExecContext(ctx, query, s.key(key), value)
	if err != nil {
		return fmt.Errorf("failed to save slot %q: %w", key, err)
	}
	return nil
}

// SaveAll writes several slots in one transaction.
func (s *SQLiteStore) SaveAll(ctx context.Context, slots map[string][]byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO slots (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
		for k, v := range slots {
			if _, err := tx.ExecContext(ctx, query, s.key(k), v); err != nil {
				return fmt.Errorf("failed to save slot %q: %w", k, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
