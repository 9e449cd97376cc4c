// Package switcher keeps the selected kubeconfig, context and namespace
// consistent while switches overlap.
//
// Every request takes a generation token. Asynchronous results are applied
// only while their token is still the latest one; otherwise they are
// discarded and the caller gets ErrSuperseded. The selected context is only
// ever written together with the context list it belongs to, so a reader can
// never see a context name that is missing from the list beside it.
package switcher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"

	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/kubeconfig"
	"github.com/renato0307/kdesk/internal/logging"
)

// Phase is the externally visible state of the coordinator
type Phase string

const (
	// PhaseSwitching means a kubeconfig load is in flight
	PhaseSwitching Phase = "switching"
	// PhaseSettled means the selection reflects the latest requested kubeconfig
	PhaseSettled Phase = "settled"
)

// Selection is an immutable snapshot of the coordinator state
type Selection struct {
	// Version increases with every published change
	Version        uint64
	Phase          Phase
	KubeconfigPath string
	Contexts       []kubeconfig.Context
	Summary        kubeconfig.Summary
	Context        string
	Namespace      string
	// Err is the load error of the latest kubeconfig switch, if it failed
	Err error
}

// HasContext reports whether name is in the snapshot's context list
func (s Selection) HasContext(name string) bool {
	for _, c := range s.Contexts {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Listener receives selection snapshots in publication order
type Listener func(Selection)

// SummaryLoader is the part of kubeconfig.Resolver the coordinator drives
type SummaryLoader interface {
	SetOverride(path string)
	ResolveActivePath() string
	LoadSummaryAt(ctx context.Context, path string) (kubeconfig.Summary, error)
}

// Coordinator orchestrates kubeconfig and context switches. It is the only
// writer of the resolver's override path.
type Coordinator struct {
	loader SummaryLoader
	runner commands.Runner
	log    *logging.Logger

	mu        sync.RWMutex
	configGen uint64 // bumped by every kubeconfig switch
	selectGen uint64 // bumped by every context switch and kubeconfig switch
	version   uint64
	sel       Selection

	pubMu          sync.Mutex
	published      uint64
	listeners      map[int]Listener
	nextListenerID int
}

// New creates a coordinator. Nothing is loaded until Load or SwitchConfig.
func New(loader SummaryLoader, runner commands.Runner) *Coordinator {
	return &Coordinator{
		loader:    loader,
		runner:    runner,
		log:       logging.For("switcher"),
		sel:       Selection{Phase: PhaseSettled},
		listeners: make(map[int]Listener),
	}
}

// Selection returns the current snapshot
func (c *Coordinator) Selection() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sel
}

// Subscribe registers fn for selection changes. The returned func removes it.
// Listeners run on the goroutine that made the change. They must not block
// or call Subscribe and its returned func.
func (c *Coordinator) Subscribe(fn Listener) func() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn

	return func() {
		c.pubMu.Lock()
		defer c.pubMu.Unlock()
		delete(c.listeners, id)
	}
}

// Load loads the currently resolved kubeconfig without setting an override
func (c *Coordinator) Load(ctx context.Context) (Selection, error) {
	return c.switchConfig(ctx, "", false)
}

// SwitchConfig makes path the active kubeconfig and selects a context from
// it. An empty path clears the override and reloads the resolved default.
func (c *Coordinator) SwitchConfig(ctx context.Context, path string) (Selection, error) {
	return c.switchConfig(ctx, path, true)
}

func (c *Coordinator) switchConfig(ctx context.Context, path string, override bool) (Selection, error) {
	// Step 1: clear the selection and pin the path under one lock so the
	// override always belongs to the newest generation.
	c.mu.Lock()
	c.configGen++
	c.selectGen++
	token := c.configGen
	if override {
		c.loader.SetOverride(path)
	}
	if path == "" {
		path = c.loader.ResolveActivePath()
	}
	snap := c.writeLocked(func(s *Selection) {
		*s = Selection{Phase: PhaseSwitching, KubeconfigPath: path}
	})
	c.mu.Unlock()
	c.publish(snap)

	c.log.Info("switching kubeconfig", "path", path, "generation", token)

	// Step 2: load without holding the lock.
	summary, loadErr := c.loader.LoadSummaryAt(ctx, path)

	// Step 3: apply only if nobody asked for another kubeconfig meanwhile.
	c.mu.Lock()
	if c.configGen != token {
		c.mu.Unlock()
		c.log.Debug("discarding stale kubeconfig load", "path", path, "generation", token)
		return c.Selection(), ErrSuperseded
	}
	snap = c.writeLocked(func(s *Selection) {
		*s = Selection{Phase: PhaseSettled, KubeconfigPath: path, Err: loadErr}
		if loadErr != nil {
			return
		}
		s.Summary = summary
		s.Contexts = summary.Contexts
		if chosen, ok := chooseContext(summary); ok {
			s.Context = chosen.Name
			s.Namespace = chosen.Namespace
		}
	})
	c.mu.Unlock()
	c.publish(snap)

	if loadErr != nil {
		c.log.Warn("kubeconfig load failed", "path", path, "error", loadErr)
		return snap, loadErr
	}
	return snap, nil
}

// writeLocked applies fn to the selection and stamps it with a new version.
// c.mu must be held for writing.
func (c *Coordinator) writeLocked(fn func(*Selection)) Selection {
	fn(&c.sel)
	c.version++
	c.sel.Version = c.version
	return c.sel
}

// publish hands snap to the listeners. Snapshots are delivered in version
// order; one that lost the race to a newer publish is dropped.
func (c *Coordinator) publish(snap Selection) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	if snap.Version <= c.published {
		return
	}
	c.published = snap.Version
	for _, fn := range c.listeners {
		fn(snap)
	}
}

// chooseContext prefers the file's current-context when it exists, then the
// first context. current-context stays a hint in the summary either way.
func chooseContext(summary kubeconfig.Summary) (kubeconfig.Context, bool) {
	if summary.CurrentContextName != "" {
		if ctx, ok := summary.Context(summary.CurrentContextName); ok {
			return ctx, true
		}
	}
	if len(summary.Contexts) > 0 {
		return summary.Contexts[0], true
	}
	return kubeconfig.Context{}, false
}

// SwitchContext runs "kubectl config use-context" against the active
// kubeconfig and selects name once kubectl succeeds.
func (c *Coordinator) SwitchContext(ctx context.Context, name string) (Selection, error) {
	if name == "" {
		return c.Selection(), ErrEmptyContextName
	}

	c.mu.Lock()
	if c.sel.Phase == PhaseSwitching {
		c.mu.Unlock()
		return c.Selection(), ErrSwitchInProgress
	}
	c.selectGen++
	configToken, selectToken := c.configGen, c.selectGen
	path := c.sel.KubeconfigPath
	c.mu.Unlock()

	if path == "" {
		path = c.loader.ResolveActivePath()
	}

	result, err := c.runner.Execute(ctx, []string{"config", "use-context", name}, commands.ExecOptions{Kubeconfig: path})
	if err != nil {
		return c.Selection(), err
	}
	if !result.Success() {
		return c.Selection(), &ContextSwitchFailedError{
			Context:  name,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			ExitCode: result.ExitCode,
			Signal:   result.Signal,
		}
	}

	c.mu.Lock()
	if c.configGen != configToken || c.selectGen != selectToken {
		c.mu.Unlock()
		c.log.Debug("discarding stale context switch", "context", name)
		return c.Selection(), ErrSuperseded
	}
	var chosen kubeconfig.Context
	found := false
	for _, candidate := range c.sel.Contexts {
		if candidate.Name == name {
			chosen, found = candidate, true
			break
		}
	}
	if !found {
		c.mu.Unlock()
		c.log.Warn("kubectl switched to a context missing from the loaded kubeconfig", "context", name, "path", path)
		return c.Selection(), fmt.Errorf("%w: %s", ErrUnknownContext, name)
	}
	snap := c.writeLocked(func(s *Selection) {
		s.Context = chosen.Name
		s.Namespace = chosen.Namespace
		s.Summary.CurrentContextName = chosen.Name
	})
	c.mu.Unlock()
	c.publish(snap)

	c.log.Info("switched context", "context", name, "path", path)
	return snap, nil
}

// SelectNamespace sets the namespace for the selected context
func (c *Coordinator) SelectNamespace(namespace string) (Selection, error) {
	c.mu.Lock()
	if c.sel.Phase == PhaseSwitching {
		c.mu.Unlock()
		return c.Selection(), ErrSwitchInProgress
	}
	if c.sel.Context == "" {
		c.mu.Unlock()
		return c.Selection(), fmt.Errorf("%w: no context selected", ErrUnknownContext)
	}
	snap := c.writeLocked(func(s *Selection) {
		s.Namespace = namespace
	})
	c.mu.Unlock()
	c.publish(snap)
	return snap, nil
}

// ListNamespaces returns the sorted namespace names of contextName
func (c *Coordinator) ListNamespaces(ctx context.Context, contextName string) ([]string, error) {
	list, err := c.NamespaceList(ctx, contextName)
	if err != nil {
		return nil, err
	}
	return commands.NamespaceNames(list), nil
}

// NamespaceList lists the namespaces of contextName with kubectl. The
// context is checked against the latest context list both before kubectl
// runs and after it returns; a switch in between discards the result.
func (c *Coordinator) NamespaceList(ctx context.Context, contextName string) (*corev1.NamespaceList, error) {
	c.mu.RLock()
	token := c.configGen
	path := c.sel.KubeconfigPath
	valid := c.sel.Phase == PhaseSettled && c.sel.HasContext(contextName)
	c.mu.RUnlock()

	if !valid {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContext, contextName)
	}

	result, err := c.runner.Execute(ctx,
		commands.ListNamespacesArgs(contextName),
		commands.ExecOptions{Kubeconfig: path})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	stale := c.configGen != token || !c.sel.HasContext(contextName)
	c.mu.RUnlock()
	if stale {
		return nil, ErrSuperseded
	}

	if !result.Success() {
		return nil, fmt.Errorf("listing namespaces of %s failed: %s", contextName, strings.TrimSpace(result.Output()))
	}
	return commands.ParseNamespaceList(result.Stdout)
}
