package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"inkwell/app/apperr"
	"inkwell/app/models"
)

// State is the post list as a view sees it.
type State struct {
	Posts   []models.Post `json:"posts"`
	Loading bool          `json:"loading"`
	Error   string        `json:"error,omitempty"`
}

// InitialState is the state before any load: not loading, no error, no posts.
func InitialState() State {
	return State{Posts: []models.Post{}}
}

// ActionType identifies a load lifecycle event.
type ActionType int

const (
	ActionPending ActionType = iota
	ActionFulfilled
	ActionRejected
)

func (t ActionType) String() string {
	switch t {
	case ActionPending:
		return "pending"
	case ActionFulfilled:
		return "fulfilled"
	case ActionRejected:
		return "rejected"
	}
	return "unknown"
}

// Action is one event of a load request.
type Action struct {
	Type      ActionType
	RequestID uint64
	Posts     []models.Post
	Error     string
}

func Pending(requestID uint64) Action {
	return Action{Type: ActionPending, RequestID: requestID}
}

func Fulfilled(requestID uint64, posts []models.Post) Action {
	return Action{Type: ActionFulfilled, RequestID: requestID, Posts: posts}
}

func Rejected(requestID uint64, message string) Action {
	return Action{Type: ActionRejected, RequestID: requestID, Error: message}
}

// Reduce applies a to s. It does not look at request ids; every
// settlement overwrites the state.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionPending:
		return State{Posts: s.Posts, Loading: true}
	case ActionFulfilled:
		posts := slices.Clone(a.Posts)
		if posts == nil {
			posts = []models.Post{}
		}
		return State{Posts: posts, Loading: false}
	case ActionRejected:
		msg := a.Error
		if msg == "" {
			msg = "unknown error"
		}
		return State{Posts: []models.Post{}, Loading: false, Error: msg}
	}
	return s
}

// StateFromSnapshot presents a keyed cache entry in reducer shape.
func StateFromSnapshot(s Snapshot[[]models.Post]) State {
	posts := slices.Clone(s.Data)
	if posts == nil {
		posts = []models.Post{}
	}
	return State{
		Posts:   posts,
		Loading: s.IsLoading,
		Error:   apperr.Message(s.Err),
	}
}

// Request is a handle on one LoadAll call.
type Request struct {
	ID   uint64
	done chan struct{}
}

// Done is closed once the request has settled and been dispatched.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// ListOption configures a PostList.
type ListOption func(*PostList)

// WithLatestOnly drops settlements from requests that are no longer the
// most recently issued one.
func WithLatestOnly() ListOption {
	return func(l *PostList) {
		l.latestOnly = true
	}
}

// PostList drives Reduce with an asynchronous load-all-posts action.
// Loads are not deduplicated. By default the last request to settle
// wins, regardless of issue order.
type PostList struct {
	fetch      func(ctx context.Context) ([]models.Post, error)
	latestOnly bool

	nextID     atomic.Uint64
	mutex      sync.Mutex
	state      State
	lastIssued uint64
	subs       map[int]func(State)
	nextSub    int
	wg         sync.WaitGroup
}

// NewPostList creates a list fed by fetch.
func NewPostList(fetch func(ctx context.Context) ([]models.Post, error), opts ...ListOption) *PostList {
	l := &PostList{
		fetch: fetch,
		state: InitialState(),
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll dispatches Pending, then fetches in the background and
// dispatches Fulfilled or Rejected. The fetch is not cancelled when ctx is.
func (l *PostList) LoadAll(ctx context.Context) *Request {
	req := &Request{ID: l.nextID.Add(1), done: make(chan struct{})}
	l.Dispatch(Pending(req.ID))

	fetchCtx := context.WithoutCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(req.done)

		posts, err := l.fetch(fetchCtx)
		if err != nil {
			l.Dispatch(Rejected(req.ID, apperr.Message(err)))
			return
		}
		l.Dispatch(Fulfilled(req.ID, posts))
	}()
	return req
}

// Dispatch applies a to the list and notifies subscribers.
func (l *PostList) Dispatch(a Action) {
	l.mutex.Lock()
	if a.Type == ActionPending {
		if a.RequestID > l.lastIssued {
			l.lastIssued = a.RequestID
		}
	} else if l.latestOnly && a.RequestID != l.lastIssued {
		l.mutex.Unlock()
		return
	}
	l.state = Reduce(l.state, a)
	state := cloneState(l.state)
	subs := make([]func(State), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mutex.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// State returns a copy of the current state.
func (l *PostList) State() State {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return cloneState(l.state)
}

// Subscribe registers fn to run after every transition. The returned
// func removes it.
func (l *PostList) Subscribe(fn func(State)) func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		delete(l.subs, id)
	}
}

// Wait blocks until every issued request has settled.
func (l *PostList) Wait() {
	l.wg.Wait()
}

func cloneState(s State) State {
	s.Posts = slices.Clone(s.Posts)
	if s.Posts == nil {
		s.Posts = []models.Post{}
	}
	return s
}
