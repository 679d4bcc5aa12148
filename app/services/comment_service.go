package services

import (
	"context"
	"sync"

	"inkwell/app/codec"
	"inkwell/app/comments"
	"inkwell/app/gateway"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments gateway.CommentGateway
	posts    gateway.PostGateway
	codec    *codec.Codec

	mutex   sync.Mutex
	threads map[string]*sharedThread
}

// sharedThread is the submit thread of one post, alive while any request
// is using it.
type sharedThread struct {
	thread *comments.Thread
	users  int
}

// NewCommentService creates a new CommentService
func NewCommentService(commentGW gateway.CommentGateway, postGW gateway.PostGateway, c *codec.Codec) *CommentService {
	if c == nil {
		c = codec.New()
	}
	return &CommentService{
		comments: commentGW,
		posts:    postGW,
		codec:    c,
		threads:  make(map[string]*sharedThread),
	}
}

// ListPostComments returns the thread of an existing post, oldest first
func (s *CommentService) ListPostComments(ctx context.Context, postID string) (comments.State, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return comments.State{}, err
	}

	thread := comments.NewThread(s.comments, s.codec)
	defer thread.Close()
	if err := thread.Load(ctx, postID); err != nil {
		return comments.State{}, err
	}
	return thread.State(), nil
}

// CreateComment stores a comment and returns the refreshed thread. While a
// submit for the same post is outstanding, further submits fail with
// comments.ErrSubmitInProgress.
func (s *CommentService) CreateComment(ctx context.Context, postID, author, text string) (comments.State, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return comments.State{}, err
	}

	thread := s.acquire(postID)
	defer s.release(postID)
	if err := thread.Submit(ctx, postID, author, text); err != nil {
		return comments.State{}, err
	}
	return thread.State(), nil
}

func (s *CommentService) acquire(postID string) *comments.Thread {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	shared, ok := s.threads[postID]
	if !ok {
		shared = &sharedThread{thread: comments.NewThread(s.comments, s.codec)}
		s.threads[postID] = shared
	}
	shared.users++
	return shared.thread
}

func (s *CommentService) release(postID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	shared, ok := s.threads[postID]
	if !ok {
		return
	}
	shared.users--
	if shared.users == 0 {
		shared.thread.Close()
		delete(s.threads, postID)
	}
}

func (s *CommentService) requirePost(ctx context.Context, postID string) error {
	post, err := s.posts.FetchPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return notFoundPost()
	}
	return nil
}
