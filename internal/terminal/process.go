package terminal

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// ExitStatus describes how a shell process ended
type ExitStatus struct {
	// ExitCode is nil when the process was terminated by a signal
	ExitCode *int
	Signal   string
}

// SpawnRequest describes the shell process to start
type SpawnRequest struct {
	Shell string
	Args  []string
	Dir   string
	Env   []string
	Cols  uint16
	Rows  uint16
}

// Process is a shell running on a pseudo-terminal. Read returns the
// terminal output and Write feeds its input.
type Process interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Resize(cols, rows uint16) error
	// Wait blocks until the process exits
	Wait() (ExitStatus, error)
	// Kill terminates the process
	Kill() error
	// Close releases the terminal; pending reads return an error
	Close() error
	Pid() int
}

// Spawner starts shell processes
type Spawner interface {
	Spawn(req SpawnRequest) (Process, error)
}

// PtySpawner starts processes on a real pseudo-terminal
type PtySpawner struct{}

// Spawn implements Spawner
func (PtySpawner) Spawn(req SpawnRequest) (Process, error) {
	path, err := exec.LookPath(req.Shell)
	if err != nil {
		return nil, fmt.Errorf("shell %q not found: %w", req.Shell, err)
	}

	cmd := exec.Command(path, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = req.Env

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: req.Cols, Rows: req.Rows})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s on a pty: %w", req.Shell, err)
	}
	return &ptyProcess{cmd: cmd, pty: f}, nil
}

type ptyProcess struct {
	cmd       *exec.Cmd
	pty       *os.File
	closeOnce sync.Once
	closeErr  error
}

func (p *ptyProcess) Read(b []byte) (int, error)  { return p.pty.Read(b) }
func (p *ptyProcess) Write(b []byte) (int, error) { return p.pty.Write(b) }
func (p *ptyProcess) Pid() int                    { return p.cmd.Process.Pid }

func (p *ptyProcess) Resize(cols, rows uint16) error {
	return pty.Setsize(p.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

func (p *ptyProcess) Wait() (ExitStatus, error) {
	err := p.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return ExitStatus{}, err
		}
	}

	state := p.cmd.ProcessState
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Signal: ws.Signal().String()}, nil
	}
	code := state.ExitCode()
	return ExitStatus{ExitCode: &code}, nil
}

func (p *ptyProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *ptyProcess) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.pty.Close()
	})
	return p.closeErr
}
