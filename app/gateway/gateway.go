// Package gateway is the only code that addresses the posts and comments
// collections directly. Every error it returns is an *apperr.Error.
package gateway

import (
	"context"
	"errors"
	"sort"
	"time"

	"inkwell/app/apperr"
	"inkwell/app/codec"
	"inkwell/app/docstore"
	"inkwell/app/models"

	"github.com/rs/zerolog/log"
)

const (
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

var (
	_ PostGateway    = (*Gateway)(nil)
	_ CommentGateway = (*Gateway)(nil)
)

// Gateway implements PostGateway and CommentGateway over a docstore.Store.
// It performs no retries.
type Gateway struct {
	store docstore.Store
	codec *codec.Codec
}

// New creates a Gateway. A nil codec means codec.New().
func New(store docstore.Store, c *codec.Codec) *Gateway {
	if c == nil {
		c = codec.New()
	}
	return &Gateway{store: store, codec: c}
}

// Codec returns the codec used for reads and writes.
func (g *Gateway) Codec() *codec.Codec {
	return g.codec
}

// FetchAllPosts returns every post in store order.
func (g *Gateway) FetchAllPosts(ctx context.Context) ([]models.Post, error) {
	snaps, err := g.store.GetAll(ctx, PostsCollection)
	if err != nil {
		return nil, g.fail("fetch posts", err)
	}

	posts := make([]models.Post, 0, len(snaps))
	for _, s := range snaps {
		posts = append(posts, g.codec.Decode(s.Data, s.ID))
	}
	return posts, nil
}

// FetchPostByID returns nil, nil when no post has that id.
func (g *Gateway) FetchPostByID(ctx context.Context, id string) (*models.Post, error) {
	snap, err := g.store.Get(ctx, PostsCollection, id)
	if err != nil {
		return nil, g.fail("fetch post", err)
	}
	if !snap.Exists {
		return nil, nil
	}
	post := g.codec.Decode(snap.Data, snap.ID)
	return &post, nil
}

// CreatePost writes a new post and returns it with its id and resolved
// createdAt.
func (g *Gateway) CreatePost(ctx context.Context, in models.PostInput) (models.Post, error) {
	doc := g.codec.EncodeForCreate(in)
	id, err := g.store.Add(ctx, PostsCollection, doc)
	if err != nil {
		return models.Post{}, g.fail("create post", err)
	}

	return models.Post{
		ID:        id,
		Title:     in.Title,
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: g.codec.DecodeTimestamp(doc[codec.FieldCreatedAt]),
	}, nil
}

// UpdatePost applies a sparse update and stamps updatedAt. An empty patch
// does not touch the store.
func (g *Gateway) UpdatePost(ctx context.Context, id string, patch models.PostPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	doc := g.codec.EncodeForUpdate(patch)
	doc[codec.FieldUpdatedAt] = docstore.NewTimestamp(g.codec.Now())

	if err := g.store.Update(ctx, PostsCollection, id, doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.NotFound("update post", "No document to update: %s/%s", PostsCollection, id)
		}
		return g.fail("update post", err)
	}
	return nil
}

// DeletePost removes a post. Deleting a missing post succeeds.
func (g *Gateway) DeletePost(ctx context.Context, id string) error {
	if err := g.store.Delete(ctx, PostsCollection, id); err != nil {
		return g.fail("delete post", err)
	}
	return nil
}

// FetchCommentsForPost returns a post's comments oldest first. Ordering
// uses the decoded instant, so native timestamps and ISO strings interleave
// correctly. Comments without a createdAt are kept and decode to now.
func (g *Gateway) FetchCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	q := docstore.NewQuery(CommentsCollection).Where(codec.FieldPostID, postID)

	snaps, err := g.store.Query(ctx, q)
	if err != nil {
		return nil, g.fail("fetch comments", err)
	}

	comments := make([]models.Comment, 0, len(snaps))
	instants := make(map[string]time.Time, len(snaps))
	for _, s := range snaps {
		c := g.codec.DecodeComment(s.Data, s.ID)
		instants[c.ID], _ = codec.ParseISO(c.CreatedAt)
		comments = append(comments, c)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		ti, tj := instants[comments[i].ID], instants[comments[j].ID]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

// AddComment stores one comment.
func (g *Gateway) AddComment(ctx context.Context, in models.CommentInput) error {
	if _, err := g.store.Add(ctx, CommentsCollection, g.codec.EncodeComment(in)); err != nil {
		return g.fail("add comment", err)
	}
	return nil
}

func (g *Gateway) fail(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	log.Error().Err(err).Str("op", op).Msg("store request failed")
	return apperr.Transport(op, err)
}
