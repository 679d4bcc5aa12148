// Package comments loads and submits the comment thread of one post view.
package comments

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"inkwell/app/apperr"
	"inkwell/app/codec"
	"inkwell/app/gateway"
	"inkwell/app/models"

	"github.com/rs/zerolog/log"
)

// ErrSubmitInProgress is returned when Submit is called while an earlier
// submit on the same thread has not finished.
var ErrSubmitInProgress = errors.New("comment submit already in progress")

// State is the visible state of a thread.
type State struct {
	PostID     string           `json:"postId"`
	Comments   []models.Comment `json:"comments"`
	Loading    bool             `json:"loading"`
	Submitting bool             `json:"submitting"`
	Error      string           `json:"error,omitempty"`
}

// Thread tracks the comments shown for one post. Responses from loads that
// were superseded by a newer Load, or that arrive after Close, are dropped.
// The store calls themselves always run to completion.
type Thread struct {
	gateway gateway.CommentGateway
	codec   *codec.Codec

	mutex      sync.Mutex
	generation uint64
	closed     bool
	state      State
}

// NewThread creates a thread. A nil codec means codec.New().
func NewThread(gw gateway.CommentGateway, c *codec.Codec) *Thread {
	if c == nil {
		c = codec.New()
	}
	return &Thread{
		gateway: gw,
		codec:   c,
		state:   State{Comments: []models.Comment{}},
	}
}

// Load fetches the comments of postID and shows them unless a newer Load
// or Close happened meanwhile. It blocks until the fetch settles.
func (t *Thread) Load(ctx context.Context, postID string) error {
	t.mutex.Lock()
	if t.closed {
		t.mutex.Unlock()
		return nil
	}
	t.generation++
	gen := t.generation
	if t.state.PostID != postID {
		t.state.Comments = []models.Comment{}
	}
	t.state.PostID = postID
	t.state.Loading = true
	t.state.Error = ""
	t.mutex.Unlock()

	list, err := t.gateway.FetchCommentsForPost(ctx, postID)

	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.closed || gen != t.generation {
		log.Debug().Str("postID", postID).Msg("dropping stale comment load")
		return nil
	}
	t.state.Loading = false
	if err != nil {
		t.state.Error = apperr.Message(err)
		return err
	}
	t.state.Comments = nonNil(list)
	return nil
}

// Submit validates and stores a comment, then reloads the thread. Blank
// author or text is rejected without contacting the store. Validation and
// store failures are both kept in the state's error.
func (t *Thread) Submit(ctx context.Context, postID, author, text string) error {
	in := models.CommentInput{PostID: strings.TrimSpace(postID), Author: author, Text: text}.Trimmed()
	if err := in.Validate(); err != nil {
		msg := "Author and comment text are required."
		if in.PostID == "" {
			msg = "A post is required."
		}
		verr := apperr.Validation("add comment", "%s", msg)
		t.setError(verr)
		return verr
	}

	t.mutex.Lock()
	if t.state.Submitting {
		t.mutex.Unlock()
		return ErrSubmitInProgress
	}
	t.state.Submitting = true
	t.mutex.Unlock()

	defer func() {
		t.mutex.Lock()
		t.state.Submitting = false
		t.mutex.Unlock()
	}()

	in.CreatedAt = t.codec.NowISO()
	if err := t.gateway.AddComment(ctx, in); err != nil {
		t.setError(err)
		return err
	}

	return t.Load(ctx, postID)
}

func (t *Thread) setError(err error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.closed {
		t.state.Error = apperr.Message(err)
	}
}

// State returns a copy of the visible state.
func (t *Thread) State() State {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	s := t.state
	s.Comments = slices.Clone(t.state.Comments)
	if s.Comments == nil {
		s.Comments = []models.Comment{}
	}
	return s
}

// Close detaches the thread. Later results are discarded.
func (t *Thread) Close() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.closed = true
}

func nonNil(list []models.Comment) []models.Comment {
	if list == nil {
		return []models.Comment{}
	}
	return slices.Clone(list)
}
