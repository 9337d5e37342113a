package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ProductDash/internal/product"
)

const maxMessageBody = 200

// RequestFailed is a non-2xx answer from a backend.
type RequestFailed struct {
	Status int
	Body   string
}

func (e *RequestFailed) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// Is lets a 404 match product.ErrNotFound.
func (e *RequestFailed) Is(target error) bool {
	return target == product.ErrNotFound && e.Status == http.StatusNotFound
}

// Unreachable means the backend could not be contacted at all.
type Unreachable struct {
	Service string
	Port    string
	Err     error
}

func (e *Unreachable) Error() string {
	return fmt.Sprintf("%s service unreachable on port %s: %v", e.Service, e.Port, e.Err)
}

func (e *Unreachable) Unwrap() error { return e.Err }

// Message turns any data-access error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		verr *product.ValidationError
		unr  *Unreachable
		rf   *RequestFailed
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &unr):
		return fmt.Sprintf("Failed to reach the %s service. Make sure it is running on port %s.", unr.Service, unr.Port)
	case errors.Is(err, product.ErrNotFound):
		return "Product not found"
	case errors.Is(err, product.ErrNotSaved):
		return "Failed to save product"
	case errors.As(err, &rf):
		return fmt.Sprintf("Request failed (HTTP %d): %s", rf.Status, truncate(rf.Body))
	default:
		return "Request failed: " + err.Error()
	}
}

// truncate keeps at most maxMessageBody runes.
func truncate(s string) string {
	s = strings.TrimSpace(s)
	n := 0
	for i := range s {
		if n == maxMessageBody {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
