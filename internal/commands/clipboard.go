package commands

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// For mocking in tests
var (
	writeClipboard       = clipboard.WriteAll
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
)

// CopyToClipboard copies command output to the system clipboard and returns
// a user-friendly message
func CopyToClipboard(text string) (string, error) {
	if clipboardUnsupported() {
		return "", fmt.Errorf("failed to copy to clipboard: no clipboard utility available")
	}
	if err := writeClipboard(text); err != nil {
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return fmt.Sprintf("copied %d bytes of output to the clipboard", len(text)), nil
}
