// Package terminal runs interactive shells on pseudo-terminals and streams
// their output to listeners, flagging when a full-screen editor takes over.
package terminal

import (
	"errors"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/renato0307/kdesk/internal/logging"
)

const (
	readBufferSize = 8192
	// drainTimeout bounds how long the waiter lets the reader flush output
	// after the shell exited; a background job holding the terminal open
	// must not keep the session alive.
	drainTimeout = 500 * time.Millisecond
)

// Options configures a new session. Zero Cols or Rows use the manager default.
type Options struct {
	WorkingDirectory string
	Env              map[string]string
	Cols             uint16
	Rows             uint16
	// Listener receives the session's events until the session is closed
	Listener Listener
}

// Info describes a live session
type Info struct {
	ID        string
	Shell     string
	Pid       int
	CreatedAt time.Time
	Cols      uint16
	Rows      uint16
	EditMode  bool
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithSpawner replaces the pty spawner
func WithSpawner(s Spawner) ManagerOption {
	return func(m *Manager) { m.spawner = s }
}

// WithDetectorFactory replaces the edit-mode heuristic
func WithDetectorFactory(f DetectorFactory) ManagerOption {
	return func(m *Manager) { m.newDetector = f }
}

// WithShell sets the configured shell. KDESK_SHELL still takes precedence.
func WithShell(shell string) ManagerOption {
	return func(m *Manager) { m.shell = shell }
}

// WithDefaultSize sets the size used when Options leaves it zero
func WithDefaultSize(cols, rows uint16) ManagerOption {
	return func(m *Manager) {
		if cols > 0 {
			m.defaultCols = cols
		}
		if rows > 0 {
			m.defaultRows = rows
		}
	}
}

// WithBaseEnv replaces os.Environ as the inherited environment
func WithBaseEnv(fn func() []string) ManagerOption {
	return func(m *Manager) { m.baseEnv = fn }
}

// Manager owns every live session, keyed by a caller-chosen id
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	// starting reserves ids whose shell is being spawned; true once a
	// Close asked for the session to go away
	starting map[string]bool

	spawner     Spawner
	newDetector DetectorFactory
	shell       string
	baseEnv     func() []string
	defaultCols uint16
	defaultRows uint16
	log         *logging.Logger
}

// NewManager creates a session manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:    make(map[string]*session),
		starting:    make(map[string]bool),
		spawner:     PtySpawner{},
		newDetector: NewAltScreenDetector,
		baseEnv:     os.Environ,
		defaultCols: DefaultCols,
		defaultRows: DefaultRows,
		log:         logging.For("terminal"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type session struct {
	id        string
	shell     string
	proc      Process
	detector  Detector
	createdAt time.Time
	editing   atomic.Bool
	closing   atomic.Bool

	sizeMu sync.Mutex
	cols   uint16
	rows   uint16

	// deliverMu orders event delivery against listener detachment
	deliverMu  sync.Mutex
	listener   Listener
	readerDone chan struct{}
	exited     chan struct{}
}

// Create spawns a shell for id and starts streaming its output
func (m *Manager) Create(id string, opts Options) error {
	if id == "" {
		return ErrEmptySessionID
	}

	cols, rows := opts.Cols, opts.Rows
	if cols == 0 {
		cols = m.defaultCols
	}
	if rows == 0 {
		rows = m.defaultRows
	}

	m.mu.Lock()
	_, live := m.sessions[id]
	_, pending := m.starting[id]
	if live || pending {
		m.mu.Unlock()
		return &SessionError{ID: id, Op: "create", Err: ErrSessionAlreadyExists}
	}
	m.starting[id] = false
	m.mu.Unlock()

	// Spawning forks and allocates a pty; other sessions stay usable meanwhile.
	shell := defaultShell(m.shell)
	proc, err := m.spawner.Spawn(SpawnRequest{
		Shell: shell,
		Dir:   opts.WorkingDirectory,
		Env:   sessionEnv(m.baseEnv(), opts.Env),
		Cols:  cols,
		Rows:  rows,
	})
	if err != nil {
		m.mu.Lock()
		delete(m.starting, id)
		m.mu.Unlock()
		return &SessionError{ID: id, Op: "create", Err: err}
	}

	s := &session{
		id:         id,
		shell:      shell,
		proc:       proc,
		detector:   m.newDetector(),
		createdAt:  time.Now(),
		cols:       cols,
		rows:       rows,
		listener:   opts.Listener,
		readerDone: make(chan struct{}),
		exited:     make(chan struct{}),
	}

	m.mu.Lock()
	cancelled := m.starting[id]
	delete(m.starting, id)
	if !cancelled {
		m.sessions[id] = s
	}
	m.mu.Unlock()

	if cancelled {
		s.listener = nil
		_ = proc.Kill()
		_ = proc.Close()
		m.log.Info("session closed while starting", "id", id)
		return &SessionError{ID: id, Op: "create", Err: ErrSessionClosed}
	}

	go m.read(s)
	go m.wait(s)

	m.log.Info("session created", "id", id, "shell", shell, "pid", proc.Pid(), "cols", cols, "rows", rows)
	return nil
}

func (m *Manager) read(s *session) {
	defer close(s.readerDone)

	buf := make([]byte, readBufferSize)
	for {
		n, err := s.proc.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.deliverOutput(chunk)
		}
		if err != nil {
			return
		}
	}
}

func (m *Manager) wait(s *session) {
	status, waitErr := s.proc.Wait()
	close(s.exited)

	select {
	case <-s.readerDone:
	case <-time.After(drainTimeout):
		_ = s.proc.Close()
		<-s.readerDone
	}
	if err := s.proc.Close(); err != nil && !s.closing.Load() {
		m.log.Debug("closing pty after exit failed", "id", s.id, "error", err)
	}

	m.mu.Lock()
	if m.sessions[s.id] == s {
		delete(m.sessions, s.id)
	}
	m.mu.Unlock()

	m.log.Info("session exited", "id", s.id, "exit_code", status.ExitCode, "signal", status.Signal, "error", waitErr)
	s.deliver(ExitEvent{ID: s.id, ExitCode: status.ExitCode, Signal: status.Signal, Err: waitErr})
}

func (s *session) deliverOutput(chunk []byte) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	editing, changed := s.detector.Feed(chunk)
	s.editing.Store(editing)

	if s.listener == nil {
		return
	}
	s.listener(OutputEvent{ID: s.id, Data: chunk})
	if changed {
		s.listener(EditModeEvent{ID: s.id, Editing: editing})
	}
}

func (s *session) deliver(ev Event) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.listener != nil {
		s.listener(ev)
	}
}

func (m *Manager) get(id string) (*session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Write sends input to the session's shell
func (m *Manager) Write(id string, data []byte) error {
	s, ok := m.get(id)
	if !ok {
		return &SessionError{ID: id, Op: "write", Err: ErrSessionNotFound}
	}
	if _, err := s.proc.Write(data); err != nil {
		return &SessionError{ID: id, Op: "write", Err: err}
	}
	return nil
}

// Resize changes the terminal size of a session. Failures on a session that
// is already shutting down are logged and ignored.
func (m *Manager) Resize(id string, cols, rows uint16) error {
	s, ok := m.get(id)
	if !ok {
		return &SessionError{ID: id, Op: "resize", Err: ErrSessionNotFound}
	}
	if cols == 0 || rows == 0 {
		return &SessionError{ID: id, Op: "resize", Err: ErrInvalidSize}
	}

	if err := s.proc.Resize(cols, rows); err != nil {
		if s.tearingDown() {
			m.log.Debug("ignoring resize of exiting session", "id", id, "error", err)
			return nil
		}
		return &SessionError{ID: id, Op: "resize", Err: err}
	}

	s.sizeMu.Lock()
	s.cols, s.rows = cols, rows
	s.sizeMu.Unlock()
	return nil
}

func (s *session) tearingDown() bool {
	if s.closing.Load() {
		return true
	}
	select {
	case <-s.exited:
		return true
	default:
		return false
	}
}

// Close terminates a session. Closing an unknown or already closed session
// is a no-op; a session still starting is killed as soon as its shell is up. The listener is detached first, so it sees no events from the
// termination.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	if _, pending := m.starting[id]; pending {
		m.starting[id] = true
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	m.shutdown(s)
	return nil
}

// CloseAll terminates every session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	for id := range m.starting {
		m.starting[id] = true
	}
	m.mu.Unlock()

	for _, s := range sessions {
		m.shutdown(s)
	}
}

func (m *Manager) shutdown(s *session) {
	if !s.closing.CompareAndSwap(false, true) {
		return
	}

	s.deliverMu.Lock()
	s.listener = nil
	s.deliverMu.Unlock()

	if err := s.proc.Kill(); err != nil {
		m.log.Warn("failed to kill session process", "id", s.id, "error", err)
	}
	if err := s.proc.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		m.log.Warn("failed to close session pty", "id", s.id, "error", err)
	}
	m.log.Info("session closed", "id", s.id)
}

// IsEditMode reports whether a full-screen program owns the session's
// terminal. Unknown sessions are never in edit mode.
func (m *Manager) IsEditMode(id string) bool {
	s, ok := m.get(id)
	if !ok {
		return false
	}
	return s.editing.Load()
}

// List returns the live sessions sorted by id
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		s.sizeMu.Lock()
		infos = append(infos, Info{
			ID:        s.id,
			Shell:     s.shell,
			Pid:       s.proc.Pid(),
			CreatedAt: s.createdAt,
			Cols:      s.cols,
			Rows:      s.rows,
			EditMode:  s.editing.Load(),
		})
		s.sizeMu.Unlock()
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

