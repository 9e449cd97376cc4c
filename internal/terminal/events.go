package terminal

// Event is delivered to a session's listener. Events of one session arrive
// in order on that session's reader goroutine.
type Event interface {
	SessionID() string
	isEvent()
}

// Listener receives session events. It must not call Close for its own
// session; doing so from another goroutine is fine.
type Listener func(Event)

// OutputEvent carries a chunk of raw terminal output
type OutputEvent struct {
	ID   string
	Data []byte
}

// ExitEvent is emitted once when the shell process ends on its own.
// ExitCode is nil when the process was killed by a signal.
type ExitEvent struct {
	ID       string
	ExitCode *int
	Signal   string
	Err      error
}

// EditModeEvent is emitted when the detector sees a full-screen program
// take over or release the terminal
type EditModeEvent struct {
	ID      string
	Editing bool
}

func (e OutputEvent) SessionID() string   { return e.ID }
func (e ExitEvent) SessionID() string     { return e.ID }
func (e EditModeEvent) SessionID() string { return e.ID }

func (OutputEvent) isEvent()   {}
func (ExitEvent) isEvent()     {}
func (EditModeEvent) isEvent() {}
