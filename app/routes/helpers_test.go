package routes

import (
	"context"
	"testing"

	"inkwell/app/controllers"
	"inkwell/app/docstore"
	"inkwell/app/docstore/badgerstore"
	"inkwell/app/gateway"
	"inkwell/app/models"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *docstore.DB {
	t.Helper()
	backend, err := badgerstore.OpenInMemory()
	require.NoError(t, err)
	db := docstore.New(backend)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestRouter(t *testing.T, db *docstore.DB) (*mux.Router, *gateway.Gateway) {
	t.Helper()
	gw := gateway.New(db, nil)
	postService := services.NewPostService(gw, services.PostServiceOptions{})
	t.Cleanup(postService.Close)
	commentService := services.NewCommentService(gw, gw, gw.Codec())

	router := SetupRoutes(
		controllers.NewPostController(postService),
		controllers.NewCommentController(commentService),
	)
	return router, gw
}

func setupTestData(t *testing.T, gw *gateway.Gateway) models.Post {
	t.Helper()
	post, err := gw.CreatePost(context.Background(), models.PostInput{
		Title:     "Test Post",
		Author:    "Alice",
		Content:   "This is a test post",
		CreatedAt: "2024-01-01T00:00:00.000Z",
	})
	require.NoError(t, err)
	return post
}
