package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// MessageType defines the kind of status line printed to the user
type MessageType int

const (
	MessageTypeInfo MessageType = iota
	MessageTypeSuccess
	MessageTypeWarning
	MessageTypeError
)

const (
	circleBullet     = "⏺ "
	minMessageLength = 20
)

// RenderMessage renders a user message with styling based on its type.
// Long messages are truncated to fit width; zero width means no limit.
func RenderMessage(text string, msgType MessageType, theme *Theme, width int) string {
	if text == "" {
		return ""
	}

	if width > 0 {
		// prefix (2) + margin (5)
		maxMessageLength := width - 7
		if maxMessageLength < minMessageLength {
			maxMessageLength = minMessageLength
		}
		if runes := []rune(text); len(runes) > maxMessageLength {
			text = string(runes[:maxMessageLength-1]) + "…"
		}
	}

	var messageColor lipgloss.AdaptiveColor
	switch msgType {
	case MessageTypeSuccess:
		messageColor = theme.Success
	case MessageTypeWarning:
		messageColor = theme.Warning
	case MessageTypeError:
		messageColor = theme.Error
	default:
		messageColor = theme.Muted
	}

	return lipgloss.NewStyle().Foreground(messageColor).Render(circleBullet + text)
}
