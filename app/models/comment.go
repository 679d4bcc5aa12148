package models

import "strings"

// Validate checks that the comment has a post, an author and some text.
// Author and text are checked after trimming.
func (c CommentInput) Validate() error {
	trimmed := c.Trimmed()
	return validate.Struct(&trimmed)
}

// Trimmed returns a copy with author and text trimmed.
func (c CommentInput) Trimmed() CommentInput {
	c.Author = strings.TrimSpace(c.Author)
	c.Text = strings.TrimSpace(c.Text)
	return c
}
