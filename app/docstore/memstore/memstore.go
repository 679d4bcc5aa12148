// Package memstore is an in-process docstore backend. It is used in tests
// and for the "memory" driver.
package memstore

import (
	"context"
	"sort"
	"sync"

	"inkwell/app/docstore"
)

var _ docstore.Backend = (*Backend)(nil)

type Backend struct {
	collections map[string]map[string][]byte
	mutex       sync.RWMutex
}

func New() *Backend {
	return &Backend{
		collections: make(map[string]map[string][]byte),
	}
}

// NewDB is shorthand for docstore.New(memstore.New(), opts...).
func NewDB(opts ...docstore.Option) *docstore.DB {
	return docstore.New(New(), opts...)
}

func (b *Backend) Get(_ context.Context, collection, id string) ([]byte, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	data, exists := b.collections[collection][id]
	if !exists {
		return nil, docstore.ErrNotFound
	}
	return clone(data), nil
}

func (b *Backend) Put(_ context.Context, collection, id string, data []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	docs, ok := b.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		b.collections[collection] = docs
	}
	docs[id] = clone(data)
	return nil
}

func (b *Backend) Modify(_ context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	current, exists := b.collections[collection][id]
	if !exists {
		return docstore.ErrNotFound
	}
	next, err := fn(clone(current))
	if err != nil {
		return err
	}
	b.collections[collection][id] = clone(next)
	return nil
}

func (b *Backend) Delete(_ context.Context, collection, id string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	delete(b.collections[collection], id)
	return nil
}

// Scan visits documents in id order.
func (b *Backend) Scan(_ context.Context, collection string, fn func(string, []byte) error) error {
	b.mutex.RLock()
	docs := b.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	copies := make([][]byte, len(ids))
	for i, id := range ids {
		copies[i] = clone(docs[id])
	}
	b.mutex.RUnlock()

	for i, id := range ids {
		if err := fn(id, copies[i]); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every collection.
func (b *Backend) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.collections = make(map[string]map[string][]byte)
}

func (b *Backend) Close() error {
	return nil
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
