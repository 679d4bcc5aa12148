package gateway

import (
	"context"

	"inkwell/app/models"
)

// PostGateway defines post data access
type PostGateway interface {
	FetchAllPosts(ctx context.Context) ([]models.Post, error)
	FetchPostByID(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (models.Post, error)
	UpdatePost(ctx context.Context, id string, patch models.PostPatch) error
	DeletePost(ctx context.Context, id string) error
}

// CommentGateway defines comment data access
type CommentGateway interface {
	FetchCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error)
	AddComment(ctx context.Context, in models.CommentInput) error
}
