package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"github.com/renato0307/kdesk/internal/logging"
)

const waitDelay = 2 * time.Second

// CommandResult is the outcome of a one-shot command
type CommandResult struct {
	Stdout string
	Stderr string
	// ExitCode is nil when the process was terminated by a signal
	ExitCode *int
	// Signal names the terminating signal when ExitCode is nil
	Signal string
}

// Success reports whether the process exited normally with code 0
func (r CommandResult) Success() bool {
	return r.ExitCode != nil && *r.ExitCode == 0
}

// Output returns stderr when stdout is empty, which is how kubectl reports
// most failures.
func (r CommandResult) Output() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout
}

// ExecOptions configures a single execution
type ExecOptions struct {
	// Kubeconfig is exported as KUBECONFIG when non-empty
	Kubeconfig string
	// Env overrides entries of the inherited process environment
	Env map[string]string
	// Timeout overrides the executor default
	Timeout time.Duration
}

// Runner runs kubectl with the given arguments
type Runner interface {
	Execute(ctx context.Context, args []string, opts ExecOptions) (CommandResult, error)
}

// KubectlExecutor runs kubectl commands via subprocess
type KubectlExecutor struct {
	binary  string
	timeout time.Duration
	log     *logging.Logger
}

// NewKubectlExecutor creates a new kubectl executor. An empty binary means
// "kubectl" from PATH; a zero timeout means DefaultKubectlTimeout.
func NewKubectlExecutor(binary string, timeout time.Duration) *KubectlExecutor {
	if binary == "" {
		binary = DefaultKubectlBinary
	}
	if timeout <= 0 {
		timeout = DefaultKubectlTimeout
	}
	return &KubectlExecutor{
		binary:  binary,
		timeout: timeout,
		log:     logging.For("executor"),
	}
}

// Binary returns the configured binary name or path
func (e *KubectlExecutor) Binary() string {
	return e.binary
}

// Execute runs the binary with args and waits for it to finish.
//
// A non-zero exit status is not an error: it is reported in the result. Errors
// are returned only when the process could not be run at all.
func (e *KubectlExecutor) Execute(ctx context.Context, args []string, opts ExecOptions) (CommandResult, error) {
	if len(args) == 0 {
		return CommandResult{}, ErrEmptyCommand
	}

	path, err := exec.LookPath(e.binary)
	if err != nil {
		if isNotFound(err) {
			return CommandResult{}, &ExecutableNotFoundError{Binary: e.binary, Err: err}
		}
		return CommandResult{}, fmt.Errorf("failed to locate %s: %w", e.binary, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = buildEnv(os.Environ(), opts)
	// kubectl plugins may leave children holding the pipes after a kill
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t := e.log.Start("kubectl")
	err = cmd.Run()
	logging.End(t, "args", args)

	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
		fillExitStatus(&result, cmd.ProcessState)
	case isNotFound(err):
		return CommandResult{}, &ExecutableNotFoundError{Binary: e.binary, Err: err}
	default:
		return CommandResult{}, err
	}

	if ctx.Err() == context.DeadlineExceeded {
		e.log.Warn("kubectl command timed out", "timeout", timeout, "args", args)
	}

	return result, nil
}

// CheckAvailable reports whether the binary can be found on PATH
func (e *KubectlExecutor) CheckAvailable() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		if isNotFound(err) {
			return &ExecutableNotFoundError{Binary: e.binary, Err: err}
		}
		return err
	}
	return nil
}

func fillExitStatus(result *CommandResult, state *os.ProcessState) {
	if state == nil {
		return
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		result.Signal = ws.Signal().String()
		return
	}
	code := state.ExitCode()
	if code < 0 {
		result.Signal = "killed"
		return
	}
	result.ExitCode = &code
}

// buildEnv layers the kubeconfig and explicit overrides on top of base.
// Later entries win when the same key appears twice.
func buildEnv(base []string, opts ExecOptions) []string {
	env := append([]string{}, base...)
	if opts.Kubeconfig != "" {
		env = append(env, KubeconfigEnvVar+"="+opts.Kubeconfig)
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+opts.Env[k])
	}
	return env
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
