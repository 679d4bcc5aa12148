package services

import (
	"context"
	"errors"
	"testing"

	"inkwell/app/apperr"
	"inkwell/app/gateway/mock"
	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostService(t *testing.T) (*PostService, *mock.Gateway) {
	t.Helper()
	gw := mock.New()
	service := NewPostService(gw, PostServiceOptions{})
	t.Cleanup(service.Close)
	return service, gw
}

func validInput(title, author string) models.PostInput {
	return models.PostInput{
		Title:   title,
		Author:  author,
		Content: "This is a test post content",
	}
}

func TestPostService(t *testing.T) {
	ctx := context.Background()
	service, gw := newTestPostService(t)

	var created models.Post

	t.Run("create post", func(t *testing.T) {
		var err error
		created, err = service.CreatePost(ctx, models.PostInput{
			Title:   "  Test Post ",
			Author:  "Alice",
			Content: "This is a test post content",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Test Post", created.Title, "input is trimmed before storing")
	})

	t.Run("get post", func(t *testing.T) {
		post, err := service.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test Post", post.Title)
		assert.Equal(t, "This is a test post content", post.Content)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := service.GetPost(ctx, "missing-id")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("update post", func(t *testing.T) {
		updated, err := service.UpdatePost(ctx, created.ID, models.PostPatch{Title: models.StringPtr("Updated Title")})
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.Equal(t, "This is a test post content", updated.Content)
	})

	t.Run("update missing post", func(t *testing.T) {
		_, err := service.UpdatePost(ctx, "gone", models.PostPatch{Title: models.StringPtr("Updated Title")})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("list reflects writes", func(t *testing.T) {
		state, err := service.ListPosts(ctx, "")
		require.NoError(t, err)
		require.Len(t, state.Posts, 1)
		assert.Equal(t, "Updated Title", state.Posts[0].Title)
		assert.False(t, state.Loading)
	})

	t.Run("delete post twice", func(t *testing.T) {
		require.NoError(t, service.DeletePost(ctx, created.ID))
		require.NoError(t, service.DeletePost(ctx, created.ID))

		state, err := service.ListPosts(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, state.Posts)
		assert.Equal(t, 2, gw.Calls("DeletePost"))
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name  string
			input models.PostInput
			want  string
		}{
			{"empty title", models.PostInput{Author: "Al", Content: "Long enough content"}, "title is required"},
			{"short author", models.PostInput{Title: "Title", Author: "A", Content: "Long enough content"}, "author must be at least 2 characters"},
			{"short content", models.PostInput{Title: "Title", Author: "Al", Content: "short"}, "content must be at least 10 characters"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				before := gw.Calls("CreatePost")
				_, err := service.CreatePost(ctx, tt.input)
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				assert.Equal(t, tt.want, apperr.Message(err))
				assert.Equal(t, before, gw.Calls("CreatePost"))
			})
		}
	})

	t.Run("patch validation", func(t *testing.T) {
		_, err := service.UpdatePost(ctx, "any", models.PostPatch{Content: models.StringPtr("tiny")})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})
}

func TestListPostsFiltersByAuthor(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestPostService(t)

	for _, author := range []string{"Alice Smith", "BOB", "alicia", "Straße Fan"} {
		_, err := service.CreatePost(ctx, validInput("A title", author))
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Alice Smith", "BOB", "alicia", "Straße Fan"}},
		{"ALI", []string{"Alice Smith", "alicia"}},
		{"bob", []string{"BOB"}},
		{"STRASSE", []string{"Straße Fan"}},
		{"nobody", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			state, err := service.ListPosts(ctx, tt.query)
			require.NoError(t, err)

			var authors []string
			for _, p := range state.Posts {
				authors = append(authors, p.Author)
			}
			assert.ElementsMatch(t, tt.want, authors)
		})
	}
}

func TestListPostsFailure(t *testing.T) {
	gw := mock.New()
	gw.FetchAllPostsFunc = func(ctx context.Context) ([]models.Post, error) {
		return nil, apperr.Transport("fetch posts", errors.New("offline"))
	}
	service := NewPostService(gw, PostServiceOptions{})
	defer service.Close()

	state, err := service.ListPosts(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "failed to fetch posts: offline", state.Error)
	assert.Empty(t, state.Posts)
}

func TestFeed(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestPostService(t)

	_, err := service.CreatePost(ctx, validInput("Feed post", "Ann"))
	require.NoError(t, err)

	state := service.Feed(ctx, true)
	assert.False(t, state.Loading)
	require.Len(t, state.Posts, 1)
	assert.Equal(t, "Feed post", state.Posts[0].Title)
}
