package logging

import (
	"time"
)

// TimingContext holds timing information for manual Start/End tracking
type TimingContext struct {
	name      string
	startTime time.Time
	logger    *Logger
}

// Start begins a timing measurement on the global logger.
// Must be paired with End() to log the duration.
//
// Example:
//
//	t := logging.Start("load kubeconfig summary")
//	summary, err := resolver.LoadSummary(ctx)
//	logging.End(t, "contexts", len(summary.Contexts))
func Start(name string) TimingContext {
	return Get().Start(name)
}

// Start begins a timing measurement bound to this logger
func (l *Logger) Start(name string) TimingContext {
	return TimingContext{
		name:      name,
		startTime: time.Now(),
		logger:    l,
	}
}

// End completes a timing measurement started with Start() and logs the
// duration together with any extra key-value pairs.
func End(t TimingContext, args ...any) time.Duration {
	duration := time.Since(t.startTime)

	logger := t.logger
	if logger == nil {
		logger = Get()
	}
	if !logger.IsEnabled() {
		return duration
	}

	fields := append([]any{
		"duration", duration.String(),
		"ms", duration.Milliseconds(),
	}, args...)
	logger.Debug(t.name, fields...)

	return duration
}

// Time executes fn and logs its execution time
func Time(name string, fn func()) {
	t := Start(name)
	fn()
	End(t)
}
