package core

import (
	"errors"
	"fmt"
)

// ErrNotFound signals an empty lookup result (patient, treatment, session).
// It is a valid outcome surfaced as a conversational fallback, not a failure.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps failures of immediate durable writes. Queued writes
// never produce it; they are in-memory appends and infallible by
// construction.
type PersistenceError struct {
	Op  string // storage operation that failed ("create_session", "flush_transcripts", ...)
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err with the failing operation name.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// UnknownAgentError reports a handoff request naming an agent that is not in
// the registry. Always fatal to the current turn.
type UnknownAgentError struct {
	Name string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("unknown agent %q", e.Name)
}
