package product

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is returned before any call is made when a draft is
// incomplete. Field is the JSON name of the first offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var fieldMessages = map[string]string{
	"Title": "Title is required",
	"Image": "Image URL is required",
}

// Normalize trims both fields of a draft.
func (d Draft) Normalize() Draft {
	return Draft{
		Title: strings.TrimSpace(d.Title),
		Image: strings.TrimSpace(d.Image),
	}
}

// Validate checks the trimmed draft. Title is reported before image.
func (d Draft) Validate() error {
	err := validate.Struct(d.Normalize())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	f := verrs[0]
	msg, ok := fieldMessages[f.Field()]
	if !ok {
		msg = f.Field() + " is invalid"
	}
	return &ValidationError{Field: strings.ToLower(f.Field()), Message: msg}
}
