package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the post form rules. Values are trimmed before the
// length checks so whitespace padding does not satisfy a minimum.
func (in PostInput) Validate() error {
	trimmed := in.Trimmed()
	return validate.Struct(&trimmed)
}

// Trimmed returns a copy with surrounding whitespace removed from the text fields.
func (in PostInput) Trimmed() PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

// Validate applies the post form rules to the fields present in the patch.
func (p PostPatch) Validate() error {
	var (
		in     PostInput
		fields []string
	)
	if p.Title != nil {
		in.Title = *p.Title
		fields = append(fields, "Title")
	}
	if p.Author != nil {
		in.Author = *p.Author
		fields = append(fields, "Author")
	}
	if p.Content != nil {
		in.Content = *p.Content
		fields = append(fields, "Content")
	}
	if len(fields) == 0 {
		return nil
	}
	trimmed := in.Trimmed()
	return validate.StructPartial(&trimmed, fields...)
}

// IsEmpty reports whether the patch carries no fields at all.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Content == nil && p.CreatedAt == nil
}

// StringPtr is a convenience for building patches.
func StringPtr(s string) *string {
	return &s
}
