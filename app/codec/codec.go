// Package codec maps store documents to posts and comments and back.
//
// Reads never fail: missing or malformed fields are coerced to defaults so
// every Post handed to callers is fully populated. Writes always store
// createdAt as a docstore.Timestamp.
package codec

import (
	"strings"
	"time"

	"inkwell/app/docstore"
	"inkwell/app/models"
)

// ISOLayout is the canonical timestamp format: UTC, milliseconds, Z suffix.
const ISOLayout = "2006-01-02T15:04:05.000Z"

const (
	DefaultTitle  = "Untitled post"
	DefaultAuthor = "Anonymous"
)

// Field names as stored.
const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldContent   = "content"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldPostID    = "postId"
	FieldText      = "text"
)

// Accepted string layouts, tried in order.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Codec converts between documents and records. The zero value is not
// usable; call New.
type Codec struct {
	now func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// New returns a Codec using the wall clock unless overridden.
func New(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the codec clock's current instant.
func (c *Codec) Now() time.Time {
	return c.now()
}

// NowISO returns the current instant in canonical form.
func (c *Codec) NowISO() string {
	return FormatISO(c.now())
}

// FormatISO renders t in canonical form.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Decode builds a Post from a document.
func (c *Codec) Decode(fields docstore.Document, id string) models.Post {
	return models.Post{
		ID:        id,
		Title:     stringOr(fields[FieldTitle], DefaultTitle),
		Author:    stringOr(fields[FieldAuthor], DefaultAuthor),
		Content:   stringOr(fields[FieldContent], ""),
		CreatedAt: c.DecodeTimestamp(fields[FieldCreatedAt]),
	}
}

// DecodeComment builds a Comment from a document.
func (c *Codec) DecodeComment(fields docstore.Document, id string) models.Comment {
	return models.Comment{
		ID:        id,
		PostID:    stringOr(fields[FieldPostID], ""),
		Author:    stringOr(fields[FieldAuthor], DefaultAuthor),
		Text:      stringOr(fields[FieldText], ""),
		CreatedAt: c.DecodeTimestamp(fields[FieldCreatedAt]),
	}
}

// EncodeForCreate builds the document for a new post.
func (c *Codec) EncodeForCreate(in models.PostInput) docstore.Document {
	return docstore.Document{
		FieldTitle:     in.Title,
		FieldAuthor:    in.Author,
		FieldContent:   in.Content,
		FieldCreatedAt: c.ToTimestamp(in.CreatedAt),
	}
}

// EncodeForUpdate builds a sparse document holding only the fields set in
// the patch. An empty patch yields an empty document.
func (c *Codec) EncodeForUpdate(p models.PostPatch) docstore.Document {
	doc := docstore.Document{}
	if p.Title != nil {
		doc[FieldTitle] = *p.Title
	}
	if p.Author != nil {
		doc[FieldAuthor] = *p.Author
	}
	if p.Content != nil {
		doc[FieldContent] = *p.Content
	}
	if p.CreatedAt != nil {
		doc[FieldCreatedAt] = c.ToTimestamp(*p.CreatedAt)
	}
	return doc
}

// EncodeComment builds the document for a new comment.
func (c *Codec) EncodeComment(in models.CommentInput) docstore.Document {
	return docstore.Document{
		FieldPostID:    in.PostID,
		FieldAuthor:    in.Author,
		FieldText:      in.Text,
		FieldCreatedAt: c.ToTimestamp(in.CreatedAt),
	}
}

// ToTimestamp converts an ISO string to a store timestamp. Empty or
// unparseable input yields the current instant.
func (c *Codec) ToTimestamp(value string) docstore.Timestamp {
	if t, ok := ParseISO(value); ok {
		return docstore.NewTimestamp(t)
	}
	return docstore.NewTimestamp(c.now())
}

// DecodeTimestamp renders any stored createdAt value in canonical form.
// Store timestamps, time.Time and parseable strings convert directly;
// anything else becomes the current instant.
func (c *Codec) DecodeTimestamp(value any) string {
	switch v := value.(type) {
	case docstore.Timestamp:
		return FormatISO(v.Time())
	case *docstore.Timestamp:
		if v != nil {
			return FormatISO(v.Time())
		}
	case time.Time:
		if !v.IsZero() {
			return FormatISO(v)
		}
	case *time.Time:
		if v != nil && !v.IsZero() {
			return FormatISO(*v)
		}
	case string:
		if t, ok := ParseISO(v); ok {
			return FormatISO(t)
		}
	}
	return c.NowISO()
}

// ParseISO parses the date formats accepted from clients and older
// documents. Strings without a zone are read as UTC.
func ParseISO(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func stringOr(value any, fallback string) string {
	s, ok := value.(string)
	if !ok || (fallback != "" && strings.TrimSpace(s) == "") {
		return fallback
	}
	return s
}
