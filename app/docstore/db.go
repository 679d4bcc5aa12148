package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Backend persists encoded documents. Implementations live in the
// memstore, badgerstore, sqlitestore and pgstore packages.
type Backend interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, data []byte) error
	// Modify atomically replaces a document with fn's result. Returns
	// ErrNotFound without calling fn when the document does not exist.
	Modify(ctx context.Context, collection, id string, fn func(current []byte) ([]byte, error)) error
	// Delete succeeds for missing documents.
	Delete(ctx context.Context, collection, id string) error
	// Scan visits every document of a collection in backend order.
	Scan(ctx context.Context, collection string, fn func(id string, data []byte) error) error
	Close() error
}

var _ Store = (*DB)(nil)

// DB implements Store on top of a Backend.
type DB struct {
	backend Backend
	newID   func() string
}

// Option configures a DB.
type Option func(*DB)

// WithIDGenerator replaces the default random id generator.
func WithIDGenerator(fn func() string) Option {
	return func(db *DB) {
		db.newID = fn
	}
}

// New creates a DB over backend.
func New(backend Backend, opts ...Option) *DB {
	db := &DB{
		backend: backend,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Close closes the backend.
func (db *DB) Close() error {
	return db.backend.Close()
}

// Backend returns the underlying backend.
func (db *DB) Backend() Backend {
	return db.backend
}

// Add writes a new document under a generated id.
func (db *DB) Add(ctx context.Context, collection string, doc Document) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("collection cannot be empty")
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return "", err
	}
	id := db.newID()
	if err := db.backend.Put(ctx, collection, id, data); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}
	return id, nil
}

// Get reads one document.
func (db *DB) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	if collection == "" || id == "" {
		return Snapshot{}, fmt.Errorf("collection and id cannot be empty")
	}
	data, err := db.backend.Get(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{ID: id}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get document: %w", err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, Data: doc, Exists: true}, nil
}

// GetAll reads a whole collection.
func (db *DB) GetAll(ctx context.Context, collection string) ([]Snapshot, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection cannot be empty")
	}
	snaps := make([]Snapshot, 0)
	err := db.backend.Scan(ctx, collection, func(id string, data []byte) error {
		doc, err := DecodeDocument(data)
		if err != nil {
			return fmt.Errorf("document %s: %w", id, err)
		}
		snaps = append(snaps, Snapshot{ID: id, Data: doc, Exists: true})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection %s: %w", collection, err)
	}
	return snaps, nil
}

// Query filters and sorts a collection.
func (db *DB) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	all, err := db.GetAll(ctx, q.Collection)
	if err != nil {
		return nil, err
	}

	matched := make([]Snapshot, 0, len(all))
	for _, snap := range all {
		if matches(snap.Data, q) {
			matched = append(matched, snap)
		}
	}

	if q.Sort != nil {
		field, desc := q.Sort.Field, q.Sort.Direction == Desc
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i].Data[field], matched[j].Data[field])
			if c == 0 {
				return matched[i].ID < matched[j].ID
			}
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return matched, nil
}

func matches(doc Document, q Query) bool {
	for _, f := range q.Filters {
		v, ok := doc[f.Field]
		if !ok || rank(v) != rank(f.Value) || compareValues(v, f.Value) != 0 {
			return false
		}
	}
	if q.Sort != nil {
		if _, ok := doc[q.Sort.Field]; !ok {
			return false
		}
	}
	return true
}

// Update merges fields into an existing document.
func (db *DB) Update(ctx context.Context, collection, id string, fields Document) error {
	if collection == "" || id == "" {
		return fmt.Errorf("collection and id cannot be empty")
	}
	// Encode up front so an unsupported value fails before touching the backend.
	if _, err := EncodeDocument(fields); err != nil {
		return err
	}
	err := db.backend.Modify(ctx, collection, id, func(current []byte) ([]byte, error) {
		doc, err := DecodeDocument(current)
		if err != nil {
			return nil, err
		}
		for k, v := range fields {
			doc[k] = v
		}
		return EncodeDocument(doc)
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

// Delete removes a document if present.
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	if collection == "" || id == "" {
		return fmt.Errorf("collection and id cannot be empty")
	}
	if err := db.backend.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
