package terminal

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionAlreadyExists is returned when creating a session whose id is live
	ErrSessionAlreadyExists = errors.New("session already exists")
	// ErrSessionNotFound is returned for operations on an unknown session id
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptySessionID is returned when creating a session without an id
	ErrEmptySessionID = errors.New("session id cannot be empty")
	// ErrSessionClosed is returned by Create when the session was closed
	// while its shell was starting
	ErrSessionClosed = errors.New("session closed while starting")
	// ErrInvalidSize is returned for a zero terminal dimension
	ErrInvalidSize = errors.New("terminal size must be positive")
)

// SessionError ties a session failure to the session id and operation
type SessionError struct {
	ID  string
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s session %q: %v", e.Op, e.ID, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }
