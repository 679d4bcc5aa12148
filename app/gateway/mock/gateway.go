// Package mock provides an in-memory gateway with call counting and
// overridable methods for tests.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inkwell/app/apperr"
	"inkwell/app/gateway"
	"inkwell/app/models"
)

var (
	_ gateway.PostGateway    = (*Gateway)(nil)
	_ gateway.CommentGateway = (*Gateway)(nil)
)

type Gateway struct {
	posts    map[string]models.Post
	comments []models.Comment
	nextID   int
	calls    map[string]int
	mutex    sync.RWMutex

	// Optional overrides. They run without the mutex held.
	FetchAllPostsFunc        func(ctx context.Context) ([]models.Post, error)
	FetchCommentsForPostFunc func(ctx context.Context, postID string) ([]models.Comment, error)
	AddCommentFunc           func(ctx context.Context, in models.CommentInput) error
}

func New() *Gateway {
	return &Gateway{
		posts:  make(map[string]models.Post),
		calls:  make(map[string]int),
		nextID: 1,
	}
}

// Calls reports how many times method was invoked.
func (m *Gateway) Calls(method string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[method]
}

// Clear drops all data and call counts.
func (m *Gateway) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]models.Post)
	m.comments = nil
	m.calls = make(map[string]int)
	m.nextID = 1
}

func (m *Gateway) record(method string) {
	m.mutex.Lock()
	m.calls[method]++
	m.mutex.Unlock()
}

func (m *Gateway) newID(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, m.nextID)
	m.nextID++
	return id
}

func (m *Gateway) FetchAllPosts(ctx context.Context) ([]models.Post, error) {
	m.record("FetchAllPosts")
	if m.FetchAllPostsFunc != nil {
		return m.FetchAllPostsFunc(ctx)
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	posts := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (m *Gateway) FetchPostByID(_ context.Context, id string) (*models.Post, error) {
	m.record("FetchPostByID")
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, nil
	}
	return &post, nil
}

func (m *Gateway) CreatePost(_ context.Context, in models.PostInput) (models.Post, error) {
	m.record("CreatePost")
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post := models.Post{
		ID:        m.newID("post"),
		Title:     in.Title,
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: in.CreatedAt,
	}
	m.posts[post.ID] = post
	return post, nil
}

func (m *Gateway) UpdatePost(_ context.Context, id string, patch models.PostPatch) error {
	m.record("UpdatePost")
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post, exists := m.posts[id]
	if !exists {
		return apperr.NotFound("update post", "No document to update: posts/%s", id)
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Author != nil {
		post.Author = *patch.Author
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.CreatedAt != nil {
		post.CreatedAt = *patch.CreatedAt
	}
	m.posts[id] = post
	return nil
}

func (m *Gateway) DeletePost(_ context.Context, id string) error {
	m.record("DeletePost")
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.posts, id)
	return nil
}

func (m *Gateway) FetchCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	m.record("FetchCommentsForPost")
	if m.FetchCommentsForPostFunc != nil {
		return m.FetchCommentsForPostFunc(ctx, postID)
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var comments []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt < comments[j].CreatedAt
	})
	return comments, nil
}

func (m *Gateway) AddComment(ctx context.Context, in models.CommentInput) error {
	m.record("AddComment")
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, in)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.comments = append(m.comments, models.Comment{
		ID:        m.newID("comment"),
		PostID:    in.PostID,
		Author:    in.Author,
		Text:      in.Text,
		CreatedAt: in.CreatedAt,
	})
	return nil
}
