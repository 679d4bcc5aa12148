package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inkwell/app/apperr"
	"inkwell/app/codec"
	"inkwell/app/comments"
	"inkwell/app/docstore/memstore"
	"inkwell/app/gateway"
	"inkwell/app/gateway/mock"
	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	c := codec.New(codec.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	gw := gateway.New(memstore.NewDB(), c)
	service := NewCommentService(gw, gw, c)

	post, err := gw.CreatePost(ctx, validInput("Test Post", "Alice"))
	require.NoError(t, err)

	t.Run("create comment", func(t *testing.T) {
		state, err := service.CreateComment(ctx, post.ID, "Test Author", "Test Comment Content")
		require.NoError(t, err)
		require.Len(t, state.Comments, 1)
		assert.Equal(t, "Test Author", state.Comments[0].Author)
		assert.Equal(t, post.ID, state.Comments[0].PostID)
	})

	t.Run("list keeps chronological order", func(t *testing.T) {
		_, err := service.CreateComment(ctx, post.ID, "Second", "Another comment")
		require.NoError(t, err)

		state, err := service.ListPostComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, state.Comments, 2)
		assert.Equal(t, "Test Author", state.Comments[0].Author)
		assert.Equal(t, "Second", state.Comments[1].Author)
		assert.Less(t, state.Comments[0].CreatedAt, state.Comments[1].CreatedAt)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := service.ListPostComments(ctx, "missing")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		_, err = service.CreateComment(ctx, "missing", "Ann", "Hi")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("blank author", func(t *testing.T) {
		_, err := service.CreateComment(ctx, post.ID, " ", "Hi")
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})
}

func TestCommentServiceBlankTextSkipsStore(t *testing.T) {
	gw := mock.New()
	post, err := gw.CreatePost(context.Background(), validInput("Title", "Al"))
	require.NoError(t, err)

	service := NewCommentService(gw, gw, nil)
	_, err = service.CreateComment(context.Background(), post.ID, "Ann", "   ")
	require.Error(t, err)
	assert.Zero(t, gw.Calls("AddComment"))
}

func TestCreateCommentRejectsConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	gw := mock.New()
	post, err := gw.CreatePost(ctx, validInput("Title", "Al"))
	require.NoError(t, err)
	other, err := gw.CreatePost(ctx, validInput("Other", "Al"))
	require.NoError(t, err)

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	gw.AddCommentFunc = func(ctx context.Context, in models.CommentInput) error {
		if in.PostID == post.ID {
			entered <- struct{}{}
			<-release
		}
		return nil
	}
	service := NewCommentService(gw, gw, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := service.CreateComment(ctx, post.ID, "bob", "hello")
		assert.NoError(t, err)
	}()
	<-entered

	_, err = service.CreateComment(ctx, post.ID, "bob", "hello")
	assert.ErrorIs(t, err, comments.ErrSubmitInProgress)

	_, err = service.CreateComment(ctx, other.ID, "ann", "elsewhere")
	assert.NoError(t, err, "other posts are not blocked")

	close(release)
	wg.Wait()
	assert.Equal(t, 2, gw.Calls("AddComment"))

	t.Run("submits are accepted again once settled", func(t *testing.T) {
		_, err := service.CreateComment(ctx, post.ID, "bob", "again")
		assert.NoError(t, err)
		assert.Equal(t, 3, gw.Calls("AddComment"))
	})
}
