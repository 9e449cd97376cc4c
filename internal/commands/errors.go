package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand is returned when there is nothing to execute
	ErrEmptyCommand = errors.New("empty command")
	// ErrMissingCommandArguments is returned when only the binary name was given
	ErrMissingCommandArguments = errors.New("missing command arguments")
	// ErrExecutableNotFound is matched by *ExecutableNotFoundError
	ErrExecutableNotFound = errors.New("executable not found")
)

// ExecutableNotFoundError reports a binary that could not be located on PATH
type ExecutableNotFoundError struct {
	Binary string
	Err    error
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("%s not found in PATH; install it (https://kubernetes.io/docs/tasks/tools/) or set its location in the kdesk config", e.Binary)
}

func (e *ExecutableNotFoundError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExecutableNotFound) succeed
func (e *ExecutableNotFoundError) Is(target error) bool {
	return target == ErrExecutableNotFound
}
