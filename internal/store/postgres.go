package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cts_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS cts_list (
	key        TEXT NOT NULL,
	position   BIGINT NOT NULL,
	value      BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (key, position)
);`

// PostgresBackend stores keys in cts_kv and list elements in cts_list,
// one row per element with a dense 0-based position.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

var _ Backend = (*PostgresBackend)(nil)

// NewPostgresBackend ensures the schema exists on the given pool.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

// Pool returns the underlying pool (for metrics).
func (p *PostgresBackend) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PostgresBackend) Name() string { return "postgres" }

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM cts_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO cts_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

// AppendToList serializes appends per key with a transaction-scoped
// advisory lock so positions stay dense across processes.
func (p *PostgresBackend) AppendToList(ctx context.Context, key string, value []byte) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return 0, err
	}

	var next int64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0) FROM cts_list WHERE key = $1`,
		key).Scan(&next)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO cts_list (key, position, value) VALUES ($1, $2, $3)`,
		key, next, value); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return next + 1, nil
}

func (p *PostgresBackend) RangeOfList(ctx context.Context, key string, start, end int64) ([][]byte, error) {
	if start < 0 {
		start = 0
	}
	query := `SELECT value FROM cts_list WHERE key = $1 AND position >= $2 ORDER BY position`
	args := []any{key, start}
	if end >= 0 {
		query = `SELECT value FROM cts_list WHERE key = $1 AND position >= $2 AND position <= $3 ORDER BY position`
		args = append(args, end)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]byte{}
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}
