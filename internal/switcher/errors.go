package switcher

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyContextName is returned when switching to an empty context name
	ErrEmptyContextName = errors.New("context name cannot be empty")
	// ErrContextSwitchFailed is matched by *ContextSwitchFailedError
	ErrContextSwitchFailed = errors.New("context switch failed")
	// ErrSuperseded is returned when a newer request replaced this one before
	// its result could be applied. The result was discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrSwitchInProgress is returned for operations that need a settled kubeconfig
	ErrSwitchInProgress = errors.New("kubeconfig switch in progress")
	// ErrUnknownContext is returned when a context is not in the loaded kubeconfig
	ErrUnknownContext = errors.New("context not found in kubeconfig")
)

// ContextSwitchFailedError carries kubectl's output for a failed use-context
type ContextSwitchFailedError struct {
	Context  string
	Stdout   string
	Stderr   string
	ExitCode *int
	Signal   string
}

func (e *ContextSwitchFailedError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.Stdout)
	}
	if detail == "" {
		switch {
		case e.ExitCode != nil:
			detail = fmt.Sprintf("exit code %d", *e.ExitCode)
		case e.Signal != "":
			detail = "terminated by signal " + e.Signal
		}
	}
	return fmt.Sprintf("switching to context %q failed: %s", e.Context, detail)
}

func (e *ContextSwitchFailedError) Is(target error) bool { return target == ErrContextSwitchFailed }
