// Package badgerstore persists documents in BadgerDB.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"inkwell/app/docstore"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Documents live under doc:<collection>:<id>.
	DocKeyPrefix = "doc:"

	loadMaxPendingWrites = 4
)

var _ docstore.Backend = (*Backend)(nil)

// Backend implements docstore.Backend using BadgerDB.
type Backend struct {
	db *badger.DB
}

// Open opens or creates a Badger database at path.
func Open(path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("badger path cannot be empty")
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	return open(opts)
}

// OpenInMemory opens a Badger database that lives only in memory.
func OpenInMemory() (*Backend, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	return open(opts)
}

func open(opts badger.Options) (*Backend, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Backend{db: db}, nil
}

// NewBackend wraps an already opened Badger database.
func NewBackend(db *badger.DB) *Backend {
	return &Backend{db: db}
}

func docKey(collection, id string) []byte {
	return []byte(DocKeyPrefix + collection + ":" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte(DocKeyPrefix + collection + ":")
}

// Get retrieves a document by collection and id
func (b *Backend) Get(_ context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put creates or replaces a document
func (b *Backend) Put(_ context.Context, collection, id string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(collection, id), data)
	})
}

// Modify rewrites an existing document inside one transaction
func (b *Backend) Modify(_ context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := docKey(collection, id)

		// Verify document exists
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.ErrNotFound
		}
		if err != nil {
			return err
		}

		current, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return txn.Set(key, next)
	})
}

// Delete removes a document; deleting a missing key is not an error in Badger
func (b *Backend) Delete(_ context.Context, collection, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(collection, id))
	})
}

// Scan iterates a collection in key order
func (b *Backend) Scan(ctx context.Context, collection string, fn func(string, []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := collectionPrefix(collection)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), string(prefix))
			data, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read document %s: %w", id, err)
			}
			if err := fn(id, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Backup writes a full backup of the database to w.
func (b *Backend) Backup(w io.Writer) error {
	if _, err := b.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup.
func (b *Backend) Restore(r io.Reader) error {
	if err := b.db.Load(r, loadMaxPendingWrites); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// DropAll removes every key.
func (b *Backend) DropAll() error {
	return b.db.DropAll()
}

func (b *Backend) Close() error {
	return b.db.Close()
}
