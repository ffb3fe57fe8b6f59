package apiclient

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrTransport wraps failures where no response was received from the backend.
var ErrTransport = errors.New("apiclient: backend unreachable")

// Error is a non-2xx answer from the backend. Message is the body's "error" field, or the
// status text when the body carried none.
type Error struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsTransport reports whether err means the backend could not be reached.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the text a form should display for err.
func MessageOf(err error) string {
	var apiErr *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case IsTransport(err):
		return "The server could not be reached. Please try again."
	}
	return http.StatusText(http.StatusInternalServerError)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
