//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// watchResize calls fn with the new size whenever the terminal is resized
func watchResize(fd int, fn func(cols, rows uint16)) (stop func()) {
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(signals, syscall.SIGWINCH)

	go func() {
		for {
			select {
			case <-signals:
				if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
					fn(uint16(w), uint16(h))
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}
