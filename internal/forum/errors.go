// Package forum holds the store-access services for questions, answers and
// notifications, along with the denormalized-counter maintenance that keeps
// a question's answer_count and is_solved in step with its answers.
package forum

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired is returned when an operation needs an identity
// and the session has none.
var ErrAuthenticationRequired = errors.New("authentication required")

// ErrForbidden is returned when the acting user is not allowed to touch the
// target document (not the answer's author, not the question's owner).
var ErrForbidden = errors.New("operation not permitted")

// ValidationError rejects an operation before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing document.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Collection, e.ID)
}

// RemoteError wraps a failed call to the external store. It is surfaced as a
// generic failure and never retried here.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote store failure: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
