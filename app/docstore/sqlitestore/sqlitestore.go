// Package sqlitestore persists documents in a single SQLite table.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkwell/app/docstore"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       BLOB NOT NULL,
	PRIMARY KEY (collection, id)
);
`

var _ docstore.Backend = (*Backend)(nil)

// Backend implements docstore.Backend using SQLite.
type Backend struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Use ":memory:" for a throwaway database.
//
// The database is configured with WAL mode, NORMAL synchronous mode and a
// 5-second busy timeout.
func Open(path string) (*Backend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Backend{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// DB returns the underlying sql.DB.
func (b *Backend) DB() *sql.DB {
	return b.db
}

func (b *Backend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, collection, id string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// Modify reads and rewrites a document in one transaction.
func (b *Backend) Modify(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current []byte
	err = tx.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET data = ? WHERE collection = ? AND id = ?",
		next, collection, id,
	); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return tx.Commit()
}

func (b *Backend) Delete(ctx context.Context, collection, id string) error {
	_, err := b.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (b *Backend) Scan(ctx context.Context, collection string, fn func(string, []byte) error) error {
	rows, err := b.db.QueryContext(ctx,
		"SELECT id, data FROM documents WHERE collection = ? ORDER BY id",
		collection,
	)
	if err != nil {
		return fmt.Errorf("failed to scan collection: %w", err)
	}

	// Rows are buffered so fn may call back into the store while the
	// single connection is free.
	type row struct {
		id   string
		data []byte
	}
	var buffered []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.data); err != nil {
			rows.Close()
			return fmt.Errorf("failed to read row: %w", err)
		}
		buffered = append(buffered, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, r := range buffered {
		if err := fn(r.id, r.data); err != nil {
			return err
		}
	}
	return nil
}

// Truncate removes every document.
func (b *Backend) Truncate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, "DELETE FROM documents")
	return err
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
