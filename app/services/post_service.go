package services

import (
	"context"
	"strings"
	"time"

	"inkwell/app/apperr"
	"inkwell/app/cache"
	"inkwell/app/gateway"
	"inkwell/app/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

// PostsKey is the keyed cache entry holding the full post list.
const PostsKey = "posts"

// PostServiceOptions tune the caches behind PostService.
type PostServiceOptions struct {
	DedupeInterval time.Duration
	LatestOnly     bool
}

// PostService handles business logic for blog posts
type PostService struct {
	posts gateway.PostGateway
	cache *cache.Keyed[[]models.Post]
	feed  *cache.PostList
}

// NewPostService creates a new PostService
func NewPostService(posts gateway.PostGateway, opts PostServiceOptions) *PostService {
	dedupe := opts.DedupeInterval
	if dedupe <= 0 {
		dedupe = cache.DefaultDedupeInterval
	}

	var listOpts []cache.ListOption
	if opts.LatestOnly {
		listOpts = append(listOpts, cache.WithLatestOnly())
	}

	return &PostService{
		posts: posts,
		cache: cache.NewKeyed(func(ctx context.Context, _ string) ([]models.Post, error) {
			return posts.FetchAllPosts(ctx)
		}, cache.WithDedupeInterval(dedupe)),
		feed: cache.NewPostList(posts.FetchAllPosts, listOpts...),
	}
}

// ListPosts returns the keyed cache view of all posts, optionally narrowed
// to authors containing the given text. It waits for the first load when
// nothing is cached yet.
func (s *PostService) ListPosts(ctx context.Context, author string) (cache.State, error) {
	if _, err := s.cache.Get(ctx, PostsKey); err != nil {
		snap := s.cache.Read(PostsKey)
		if !snap.HasData {
			return cache.StateFromSnapshot(snap), err
		}
	}

	state := cache.StateFromSnapshot(s.cache.Read(PostsKey))
	state.Posts = s.FilterByAuthor(state.Posts, author)
	return state, nil
}

// FilterByAuthor keeps posts whose author contains query, ignoring case.
// An empty query keeps everything.
func (s *PostService) FilterByAuthor(posts []models.Post, query string) []models.Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return posts
	}
	// Casers are stateful; each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query)

	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(fold.String(p.Author), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Feed issues a reducer load and returns the state right after dispatch.
// With wait set it returns the state once that load has settled.
func (s *PostService) Feed(ctx context.Context, wait bool) cache.State {
	req := s.feed.LoadAll(ctx)
	if wait {
		select {
		case <-req.Done():
		case <-ctx.Done():
		}
	}
	return s.feed.State()
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id string) (models.Post, error) {
	post, err := s.posts.FetchPostByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if post == nil {
		return models.Post{}, notFoundPost()
	}
	return *post, nil
}

func notFoundPost() error {
	return apperr.NotFound("fetch post", "Post not found")
}

// CreatePost validates and stores a new post
func (s *PostService) CreatePost(ctx context.Context, in models.PostInput) (models.Post, error) {
	if err := in.Validate(); err != nil {
		return models.Post{}, apperr.Validation("create post", "%s", models.ValidationMessage(err))
	}

	post, err := s.posts.CreatePost(ctx, in.Trimmed())
	if err != nil {
		return models.Post{}, err
	}

	log.Info().Str("postID", post.ID).Str("author", post.Author).Msg("post created")
	s.refresh(ctx)
	return post, nil
}

// UpdatePost applies a sparse update and returns the stored result
func (s *PostService) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (models.Post, error) {
	if err := patch.Validate(); err != nil {
		return models.Post{}, apperr.Validation("update post", "%s", models.ValidationMessage(err))
	}

	if err := s.posts.UpdatePost(ctx, id, trimPatch(patch)); err != nil {
		return models.Post{}, err
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	s.refresh(ctx)
	return post, nil
}

// DeletePost removes a post. Deleting a missing post succeeds.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return err
	}
	log.Info().Str("postID", id).Msg("post deleted")
	s.refresh(ctx)
	return nil
}

// Close waits for background loads to finish.
func (s *PostService) Close() {
	s.cache.Close()
	s.feed.Wait()
}

// refresh re-reads the post list after a write. A failed re-read is only
// logged; the write itself succeeded.
func (s *PostService) refresh(ctx context.Context) {
	if _, err := s.cache.Revalidate(ctx, PostsKey); err != nil {
		log.Warn().Err(err).Msg("post list refresh failed")
	}
	s.feed.LoadAll(ctx)
}

// trimPatch trims the editable fields. createdAt is set once at creation and
// is never taken from an update.
func trimPatch(p models.PostPatch) models.PostPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		return models.StringPtr(strings.TrimSpace(*v))
	}
	return models.PostPatch{
		Title:   trim(p.Title),
		Author:  trim(p.Author),
		Content: trim(p.Content),
	}
}
