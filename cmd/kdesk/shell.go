package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/renato0307/kdesk/internal/app"
	"github.com/renato0307/kdesk/internal/logging"
	"github.com/renato0307/kdesk/internal/terminal"
)

const shellSessionID = "shell"

// runShell bridges the user's terminal to a shell session until the shell
// exits. The local terminal is put in raw mode so keys reach the shell as
// typed.
func runShell(ctx context.Context, svc *app.Service, in io.Reader, out io.Writer) error {
	stdin, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(stdin.Fd())) {
		return errors.New("kdesk shell needs an interactive terminal")
	}
	fd := int(stdin.Fd())

	cols, rows := terminal.DefaultCols, terminal.DefaultRows
	if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
		cols, rows = uint16(w), uint16(h)
	}

	exited := make(chan terminal.ExitEvent, 1)
	listener := func(ev terminal.Event) {
		switch ev := ev.(type) {
		case terminal.OutputEvent:
			_, _ = out.Write(ev.Data)
		case terminal.EditModeEvent:
			logging.Debug("shell edit mode changed", "editing", ev.Editing)
		case terminal.ExitEvent:
			exited <- ev
		}
	}

	if err := svc.CreateSession(shellSessionID, terminal.Options{Cols: cols, Rows: rows, Listener: listener}); err != nil {
		return err
	}
	defer svc.CloseSession(shellSessionID)

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	stopResize := watchResize(fd, func(cols, rows uint16) {
		if err := svc.ResizeSession(shellSessionID, cols, rows); err != nil {
			logging.Debug("resize failed", "error", err)
		}
	})
	defer stopResize()

	// The read blocks until the next key press, so this goroutine outlives
	// the session; kdesk exits right after.
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := stdin.Read(buf)
			if n > 0 {
				if werr := svc.WriteSession(shellSessionID, buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	select {
	case ev := <-exited:
		if ev.ExitCode != nil && *ev.ExitCode != 0 {
			return &exitCodeError{code: *ev.ExitCode}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
