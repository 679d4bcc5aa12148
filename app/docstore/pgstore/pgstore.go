// Package pgstore persists documents in PostgreSQL through a pgx pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"inkwell/app/docstore"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT  NOT NULL,
	id         TEXT  NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (collection, id)
)`

var _ docstore.Backend = (*Backend)(nil)

// Backend implements docstore.Backend on a pgxpool.Pool.
type Backend struct {
	pool *pgxpool.Pool
}

// Options tune the pool created by Open.
type Options struct {
	MaxConns int32
}

// Open connects to dsn and makes sure the documents table exists.
func Open(ctx context.Context, dsn string, opts Options) (*Backend, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 64

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Backend{pool: pool}, nil
}

// NewBackend wraps an existing pool. The documents table must already exist.
func NewBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

func (b *Backend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := b.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, collection, id string, data []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Modify locks the row with FOR UPDATE for the duration of fn.
func (b *Backend) Modify(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current []byte
	err = tx.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select for update: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET data = $3 WHERE collection = $1 AND id = $2`,
		collection, id, next,
	); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return tx.Commit(ctx)
}

func (b *Backend) Delete(ctx context.Context, collection, id string) error {
	if _, err := b.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (b *Backend) Scan(ctx context.Context, collection string, fn func(string, []byte) error) error {
	rows, err := b.pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return fmt.Errorf("scan collection: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if err := fn(id, data); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Truncate removes every document.
func (b *Backend) Truncate(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `TRUNCATE documents`)
	return err
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}
