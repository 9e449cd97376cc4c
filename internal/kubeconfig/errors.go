package kubeconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigUnreadable is matched by *ConfigUnreadableError
	ErrConfigUnreadable = errors.New("kubeconfig unreadable")
	// ErrConfigMalformed is matched by *ConfigMalformedError
	ErrConfigMalformed = errors.New("kubeconfig malformed")
)

// ConfigUnreadableError reports a kubeconfig that could not be opened or read
type ConfigUnreadableError struct {
	Path string
	Err  error
}

func (e *ConfigUnreadableError) Error() string {
	return fmt.Sprintf("cannot read kubeconfig %s: %v", e.Path, e.Err)
}

func (e *ConfigUnreadableError) Unwrap() error { return e.Err }

func (e *ConfigUnreadableError) Is(target error) bool { return target == ErrConfigUnreadable }

// ConfigMalformedError reports a kubeconfig that is not a valid YAML mapping
type ConfigMalformedError struct {
	Path string
	Err  error
}

func (e *ConfigMalformedError) Error() string {
	return fmt.Sprintf("kubeconfig %s is not valid YAML: %v", e.Path, e.Err)
}

func (e *ConfigMalformedError) Unwrap() error { return e.Err }

func (e *ConfigMalformedError) Is(target error) bool { return target == ErrConfigMalformed }
