package models

// Post represents a blog post in its canonical shape. Timestamps are
// ISO-8601 strings and identifiers are opaque strings assigned by the store.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// PostInput is a post that has not been stored yet.
type PostInput struct {
	Title     string `json:"title" validate:"required,min=3"`
	Author    string `json:"author" validate:"required,min=2"`
	Content   string `json:"content" validate:"required,min=10"`
	CreatedAt string `json:"createdAt,omitempty" validate:"-"`
}

// PostPatch is a sparse update. Nil fields are left untouched in the store.
type PostPatch struct {
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	Content   *string `json:"content,omitempty"`
	CreatedAt *string `json:"createdAt,omitempty"`
}

// CommentInput is a comment that has not been stored yet.
type CommentInput struct {
	PostID    string `json:"postId" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Text      string `json:"text" validate:"required"`
	CreatedAt string `json:"createdAt"`
}
