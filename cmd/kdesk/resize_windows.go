//go:build windows

package main

// watchResize is a no-op: Windows consoles have no resize signal
func watchResize(int, func(cols, rows uint16)) (stop func()) {
	return func() {}
}
