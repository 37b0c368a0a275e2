package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a single-record lookup resolves to null.
var ErrNotFound = errors.New("graphql: not found")

// Error is one entry of a GraphQL "errors" array.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseError carries the GraphQL errors of a response. Whatever data the
// response held has still been decoded into the result returned alongside.
type ResponseError struct {
	Operation string
	Errors    []Error
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Message)
	}
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(msgs, "; "))
}

// StatusError is returned for a non-2xx reply without a GraphQL body.
type StatusError struct {
	Operation  string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql %s: unexpected status %d", e.Operation, e.StatusCode)
}
