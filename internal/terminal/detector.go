package terminal

import (
	"bytes"

	"github.com/charmbracelet/x/ansi"
)

// Detector decides from the output stream whether a full-screen program
// (an editor, a pager) currently owns the terminal.
type Detector interface {
	// Feed inspects one output chunk. changed is true only on a transition.
	Feed(chunk []byte) (editing bool, changed bool)
	Editing() bool
}

// DetectorFactory creates the detector for a new session
type DetectorFactory func() Detector

var (
	altScreenEnter = [][]byte{
		[]byte(ansi.SetAltScreenSaveCursorMode),
		[]byte(ansi.SetAltScreenMode),
		[]byte(ansi.SetMode(ansi.DECMode(47))),
		[]byte("VIM - Vi IMproved"),
		[]byte("GNU nano"),
	}
	altScreenExit = [][]byte{
		[]byte(ansi.ResetAltScreenSaveCursorMode),
		[]byte(ansi.ResetAltScreenMode),
		[]byte(ansi.ResetMode(ansi.DECMode(47))),
	}
	longestPattern = maxLen(altScreenEnter, altScreenExit)
)

// AltScreenDetector is the default heuristic: switching to the alternate
// screen buffer, or one of a few editor banners, means editing; leaving the
// alternate screen means not editing. When a chunk holds both, leaving wins.
//
// It only sees bytes. A program that draws full-screen without the
// alternate buffer is not detected, and a banner string printed by an
// ordinary command is a false positive.
//
// Patterns split across two chunks are still found: the detector keeps the
// tail of the previous chunk and only counts matches that end in the new
// one. Not safe for concurrent use; the session manager feeds it from a
// single goroutine.
type AltScreenDetector struct {
	editing bool
	tail    []byte
}

// NewAltScreenDetector returns a detector starting in the not-editing state
func NewAltScreenDetector() Detector {
	return &AltScreenDetector{}
}

// Feed implements Detector
func (d *AltScreenDetector) Feed(chunk []byte) (bool, bool) {
	if len(chunk) == 0 {
		return d.editing, false
	}

	carried := len(d.tail)
	window := make([]byte, 0, carried+len(chunk))
	window = append(append(window, d.tail...), chunk...)

	keep := longestPattern - 1
	if len(window) > keep {
		d.tail = append(d.tail[:0], window[len(window)-keep:]...)
	} else {
		d.tail = append(d.tail[:0], window...)
	}

	next := d.editing
	switch {
	case containsNew(window, carried, altScreenExit):
		next = false
	case containsNew(window, carried, altScreenEnter):
		next = true
	}

	changed := next != d.editing
	d.editing = next
	return next, changed
}

// Editing implements Detector
func (d *AltScreenDetector) Editing() bool {
	return d.editing
}

// containsNew reports whether a pattern occurs in data ending after the
// first carried bytes
func containsNew(data []byte, carried int, patterns [][]byte) bool {
	for _, p := range patterns {
		start := carried - len(p) + 1
		if start < 0 {
			start = 0
		}
		if bytes.Contains(data[start:], p) {
			return true
		}
	}
	return false
}

func maxLen(groups ...[][]byte) int {
	n := 0
	for _, group := range groups {
		for _, p := range group {
			if len(p) > n {
				n = len(p)
			}
		}
	}
	return n
}
