// Package cache holds the two client-state views of the post list: a
// revalidating key-addressed fetch cache and a reducer-driven list.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultDedupeInterval is how long a cached entry counts as fresh.
const DefaultDedupeInterval = 2 * time.Second

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("cache closed")

// Fetcher loads the value for key.
type Fetcher[T any] func(ctx context.Context, key string) (T, error)

// Snapshot is what a reader sees for one key.
type Snapshot[T any] struct {
	Data    T
	HasData bool

	// IsLoading is true only while nothing has ever been cached for the
	// key and a fetch is outstanding.
	IsLoading bool

	// Err is the last fetch failure. Data is kept when a fetch fails.
	Err error

	UpdatedAt time.Time
}

type entry[T any] struct {
	data      T
	hasData   bool
	err       error
	updatedAt time.Time
	settledAt time.Time
	inFlight  bool
	// epoch increments on Invalidate so a flight started before the
	// invalidation does not mark the entry fresh.
	epoch       uint64
	invalidated bool
}

// Keyed is a stale-while-revalidate cache. Concurrent loads of one key
// share a single fetch.
type Keyed[T any] struct {
	fetch   Fetcher[T]
	dedupe  time.Duration
	now     func() time.Time
	group   singleflight.Group
	entries map[string]*entry[T]
	mutex   sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// KeyedOption configures a Keyed cache.
type KeyedOption func(*keyedOptions)

type keyedOptions struct {
	dedupe time.Duration
	now    func() time.Time
}

// WithDedupeInterval sets how long an entry stays fresh.
func WithDedupeInterval(d time.Duration) KeyedOption {
	return func(o *keyedOptions) {
		if d >= 0 {
			o.dedupe = d
		}
	}
}

// WithKeyedClock replaces time.Now.
func WithKeyedClock(now func() time.Time) KeyedOption {
	return func(o *keyedOptions) {
		o.now = now
	}
}

// NewKeyed creates a cache that loads entries with fetch.
func NewKeyed[T any](fetch Fetcher[T], opts ...KeyedOption) *Keyed[T] {
	o := keyedOptions{dedupe: DefaultDedupeInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Keyed[T]{
		fetch:   fetch,
		dedupe:  o.dedupe,
		now:     o.now,
		entries: make(map[string]*entry[T]),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Read returns the current view of key without blocking. A missing or
// stale entry starts a background revalidation.
func (k *Keyed[T]) Read(key string) Snapshot[T] {
	k.mutex.Lock()
	defer k.mutex.Unlock()

	e := k.entry(key)
	if k.needsFetch(e) {
		k.startLocked(key, e)
	}
	return snapshotOf(e)
}

// Get serves cached data when there is any, revalidating in the
// background if stale. With nothing cached it waits for the shared fetch.
func (k *Keyed[T]) Get(ctx context.Context, key string) (T, error) {
	k.mutex.Lock()
	e := k.entry(key)
	if k.needsFetch(e) {
		k.startLocked(key, e)
	}
	if e.hasData {
		data := e.data
		k.mutex.Unlock()
		return data, nil
	}
	if !e.inFlight {
		err := e.err
		k.mutex.Unlock()
		var zero T
		if err == nil {
			err = ErrClosed
		}
		return zero, err
	}
	ch := k.group.DoChan(key, k.loader(key, e.epoch))
	k.mutex.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Revalidate marks key stale and waits for a fetch that started after the
// call. A flight already running is waited out first.
func (k *Keyed[T]) Revalidate(ctx context.Context, key string) (T, error) {
	var zero T
	k.Invalidate(key)
	for {
		k.mutex.Lock()
		if k.ctx.Err() != nil {
			k.mutex.Unlock()
			return zero, ErrClosed
		}
		e := k.entry(key)
		var (
			ch    <-chan singleflight.Result
			fresh bool
		)
		if e.inFlight {
			ch = k.group.DoChan(key, k.loader(key, e.epoch))
		} else {
			e.invalidated = true
			ch = k.startLocked(key, e)
			fresh = true
		}
		k.mutex.Unlock()

		select {
		case res := <-ch:
			if !fresh {
				continue
			}
			if res.Err != nil {
				return zero, res.Err
			}
			return res.Val.(T), nil
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Invalidate marks key stale. The next Read or Get revalidates it.
func (k *Keyed[T]) Invalidate(key string) {
	k.mutex.Lock()
	defer k.mutex.Unlock()

	if e, ok := k.entries[key]; ok {
		e.epoch++
		e.invalidated = true
	}
}

// Close stops new fetches and waits for outstanding ones to settle.
// Fetches only start under the mutex after checking k.ctx, so cancelling
// under the mutex orders every wg.Add before the Wait.
func (k *Keyed[T]) Close() {
	k.mutex.Lock()
	k.cancel()
	k.mutex.Unlock()
	k.wg.Wait()
}

func (k *Keyed[T]) entry(key string) *entry[T] {
	e, ok := k.entries[key]
	if !ok {
		e = &entry[T]{}
		k.entries[key] = e
	}
	return e
}

func (k *Keyed[T]) needsFetch(e *entry[T]) bool {
	if e.inFlight || k.ctx.Err() != nil {
		return false
	}
	if e.settledAt.IsZero() || e.invalidated {
		return true
	}
	return k.now().Sub(e.settledAt) >= k.dedupe
}

// startLocked launches a fetch for key. The caller holds the mutex.
func (k *Keyed[T]) startLocked(key string, e *entry[T]) <-chan singleflight.Result {
	e.inFlight = true
	k.wg.Add(1)
	return k.group.DoChan(key, k.loader(key, e.epoch))
}

func (k *Keyed[T]) loader(key string, epoch uint64) func() (any, error) {
	return func() (any, error) {
		defer k.wg.Done()

		data, err := k.fetch(k.ctx, key)

		k.mutex.Lock()
		defer k.mutex.Unlock()

		e := k.entry(key)
		e.inFlight = false
		e.settledAt = k.now()
		if e.epoch == epoch {
			e.invalidated = false
		}
		if err != nil {
			e.err = err
		} else {
			e.data = data
			e.hasData = true
			e.err = nil
			e.updatedAt = e.settledAt
		}
		// A later flight for key must run its own loader.
		k.group.Forget(key)
		return data, err
	}
}

func snapshotOf[T any](e *entry[T]) Snapshot[T] {
	return Snapshot[T]{
		Data:      e.data,
		HasData:   e.hasData,
		IsLoading: !e.hasData && e.inFlight,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}
