// Package docstore is a small collection-oriented document database. It
// offers what the blog layer needs from a hosted document store: per
// collection documents with store-assigned ids, point reads, full scans,
// equality queries with a single sort field, and merge updates. Timestamps
// are kept in their own Timestamp type, separate from strings and from
// time.Time, the way hosted stores expose them.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by backends and by Update when a document is missing.
var ErrNotFound = errors.New("document not found")

// Document is an untyped field bag. Supported value types are nil, string,
// bool, int, int64, float64, Timestamp, *Timestamp and time.Time. time.Time
// values are stored as Timestamp.
type Document map[string]any

// Timestamp is the store-native point in time.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// NewTimestamp converts t to a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// Snapshot is the result of reading one document.
type Snapshot struct {
	ID     string
	Data   Document
	Exists bool
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is an equality condition on one field.
type Filter struct {
	Field string
	Value any
}

// Sort orders query results by one field.
type Sort struct {
	Field     string
	Direction Direction
}

// Query selects documents from one collection.
type Query struct {
	Collection string
	Filters    []Filter
	Sort       *Sort
}

// NewQuery starts a query over collection.
func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

// Where adds an equality filter.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// OrderBy sets the sort field. Documents without the field are excluded
// from the result.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.Sort = &Sort{Field: field, Direction: dir}
	return q
}

// Store is the document store contract.
type Store interface {
	// Add writes a new document and returns the id the store assigned.
	Add(ctx context.Context, collection string, doc Document) (string, error)

	// Get reads one document. A missing document is not an error; the
	// snapshot reports Exists == false.
	Get(ctx context.Context, collection, id string) (Snapshot, error)

	// GetAll reads every document of a collection in backend order.
	GetAll(ctx context.Context, collection string) ([]Snapshot, error)

	// Query runs equality filters and an optional sort.
	Query(ctx context.Context, q Query) ([]Snapshot, error)

	// Update merges fields into an existing document. Returns ErrNotFound
	// when the document does not exist.
	Update(ctx context.Context, collection, id string, fields Document) error

	// Delete removes a document. Deleting a missing document succeeds.
	Delete(ctx context.Context, collection, id string) error
}
