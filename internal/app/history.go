package app

import (
	"sync"
	"time"
)

// MaxCommandHistory bounds the one-shot command history
const MaxCommandHistory = 100

// CommandRecord is one one-shot kubectl execution
type CommandRecord struct {
	CommandLine string
	Args        []string
	Context     string
	Kubeconfig  string
	// ExitCode is nil when kubectl was killed or never started
	ExitCode  *int
	Err       error
	Timestamp time.Time
	Duration  time.Duration
}

// History keeps the most recent one-shot commands
type History struct {
	mu      sync.RWMutex
	entries []CommandRecord
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{
		entries: make([]CommandRecord, 0, MaxCommandHistory),
	}
}

// Add appends a record, dropping the oldest beyond MaxCommandHistory
func (h *History) Add(record CommandRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, record)
	if len(h.entries) > MaxCommandHistory {
		h.entries = h.entries[len(h.entries)-MaxCommandHistory:]
	}
}

// All returns the records newest first
func (h *History) All() []CommandRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]CommandRecord, len(h.entries))
	for i, entry := range h.entries {
		result[len(h.entries)-1-i] = entry
	}
	return result
}

// Clear removes all records
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]CommandRecord, 0, MaxCommandHistory)
}

// Count returns the number of records
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
