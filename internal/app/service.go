// Package app wires kdesk's parts into one service: kubeconfig resolution,
// the context switch coordinator, the kubectl executor and shell sessions.
// Front-ends only talk to Service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"
	corev1 "k8s.io/api/core/v1"

	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/config"
	"github.com/renato0307/kdesk/internal/kubeconfig"
	"github.com/renato0307/kdesk/internal/logging"
	"github.com/renato0307/kdesk/internal/switcher"
	"github.com/renato0307/kdesk/internal/terminal"
)

// ErrNoContextMatch is returned when no context matches a query
var ErrNoContextMatch = errors.New("no context matches")

// Options configures a Service. Zero values use the real environment.
type Options struct {
	Config         config.Config
	KubeconfigOpts []kubeconfig.Option
	Runner         commands.Runner
	TerminalOpts   []terminal.ManagerOption
}

// Service is the facade over kubeconfig handling, kubectl and sessions
type Service struct {
	resolver    *kubeconfig.Resolver
	runner      commands.Runner
	coordinator *switcher.Coordinator
	terminals   *terminal.Manager
	history     *History
	log         *logging.Logger
}

// New builds a service. Nothing is loaded until LoadActiveSummary.
func New(opts Options) *Service {
	cfg := opts.Config

	resolver := kubeconfig.NewResolver(opts.KubeconfigOpts...)

	runner := opts.Runner
	if runner == nil {
		runner = commands.NewKubectlExecutor(cfg.Kubectl.Binary, cfg.KubectlTimeout())
	}

	termOpts := []terminal.ManagerOption{
		terminal.WithShell(cfg.Terminal.Shell),
		terminal.WithDefaultSize(cfg.Terminal.Cols, cfg.Terminal.Rows),
	}
	termOpts = append(termOpts, opts.TerminalOpts...)

	return &Service{
		resolver:    resolver,
		runner:      runner,
		coordinator: switcher.New(resolver, runner),
		terminals:   terminal.NewManager(termOpts...),
		history:     NewHistory(),
		log:         logging.For("app"),
	}
}

// HomeDir returns the user's home directory, or "" when unknown
func (s *Service) HomeDir() string {
	return s.resolver.HomeDir()
}

// ActiveKubeconfigPath returns the kubeconfig commands and sessions use
func (s *Service) ActiveKubeconfigPath() string {
	return s.resolver.ResolveActivePath()
}

// ListAvailableConfigs returns the kubeconfig files the user can switch to
func (s *Service) ListAvailableConfigs() []kubeconfig.File {
	return s.resolver.ListAvailableConfigs()
}

// LoadActiveSummary loads the active kubeconfig and selects a context in it
func (s *Service) LoadActiveSummary(ctx context.Context) (kubeconfig.Summary, error) {
	t := s.log.Start("load active summary")
	sel, err := s.coordinator.Load(ctx)
	logging.End(t, "path", sel.KubeconfigPath, "contexts", len(sel.Contexts))
	if err != nil {
		return kubeconfig.Summary{}, err
	}
	return sel.Summary, nil
}

// SwitchConfig makes path the active kubeconfig
func (s *Service) SwitchConfig(ctx context.Context, path string) (switcher.Selection, error) {
	return s.coordinator.SwitchConfig(ctx, path)
}

// SwitchContext runs kubectl config use-context and selects the context
func (s *Service) SwitchContext(ctx context.Context, name string) (switcher.Selection, error) {
	return s.coordinator.SwitchContext(ctx, name)
}

// ListNamespaces lists the namespaces of a context of the active kubeconfig
func (s *Service) ListNamespaces(ctx context.Context, contextName string) ([]string, error) {
	return s.coordinator.ListNamespaces(ctx, contextName)
}

// NamespaceList returns the namespace objects of a context of the active
// kubeconfig
func (s *Service) NamespaceList(ctx context.Context, contextName string) (*corev1.NamespaceList, error) {
	return s.coordinator.NamespaceList(ctx, contextName)
}

// SelectNamespace sets the namespace for the selected context
func (s *Service) SelectNamespace(namespace string) (switcher.Selection, error) {
	return s.coordinator.SelectNamespace(namespace)
}

// Selection returns the current selection snapshot
func (s *Service) Selection() switcher.Selection {
	return s.coordinator.Selection()
}

// Subscribe registers a selection listener; the returned func removes it
func (s *Service) Subscribe(fn switcher.Listener) func() {
	return s.coordinator.Subscribe(fn)
}

// ResolveContextName maps a partial name to a context of the current
// selection. An exact name wins; otherwise the best fuzzy match is used.
func (s *Service) ResolveContextName(query string) (string, error) {
	sel := s.coordinator.Selection()
	if sel.HasContext(query) {
		return query, nil
	}

	names := make([]string, len(sel.Contexts))
	for i, c := range sel.Contexts {
		names[i] = c.Name
	}
	matches := fuzzy.Find(query, names)
	if query == "" || len(matches) == 0 {
		return "", fmt.Errorf("%w %q", ErrNoContextMatch, query)
	}
	return matches[0].Str, nil
}

// RunOneShotCommand runs a kubectl command line against the active
// kubeconfig. A leading "kubectl" is optional; contextName, when set, is
// passed as --context unless the command line already names one.
func (s *Service) RunOneShotCommand(ctx context.Context, contextName, rawCommandLine string) (commands.CommandResult, error) {
	args, err := commands.BuildKubectlArgs(rawCommandLine, contextName)
	if err != nil {
		return commands.CommandResult{}, err
	}

	path := s.resolver.ResolveActivePath()
	s.log.Debug("running one-shot command", "args", args, "kubeconfig", path)

	started := time.Now()
	result, err := s.runner.Execute(ctx, args, commands.ExecOptions{Kubeconfig: path})
	s.history.Add(CommandRecord{
		CommandLine: rawCommandLine,
		Args:        args,
		Context:     contextName,
		Kubeconfig:  path,
		ExitCode:    result.ExitCode,
		Err:         err,
		Timestamp:   started,
		Duration:    time.Since(started),
	})
	return result, err
}

// History returns the one-shot commands run so far, newest first
func (s *Service) History() []CommandRecord {
	return s.history.All()
}

// CreateSession starts a shell session. The shell sees the active kubeconfig
// through KUBECONFIG unless opts.Env sets it.
func (s *Service) CreateSession(id string, opts terminal.Options) error {
	env := make(map[string]string, len(opts.Env)+1)
	if path := s.resolver.ResolveActivePath(); path != "" {
		env[commands.KubeconfigEnvVar] = path
	}
	for k, v := range opts.Env {
		env[k] = v
	}
	opts.Env = env
	return s.terminals.Create(id, opts)
}

// WriteSession sends input to a session
func (s *Service) WriteSession(id string, data []byte) error {
	return s.terminals.Write(id, data)
}

// ResizeSession changes a session's terminal size
func (s *Service) ResizeSession(id string, cols, rows uint16) error {
	return s.terminals.Resize(id, cols, rows)
}

// CloseSession terminates a session; unknown ids are ignored
func (s *Service) CloseSession(id string) error {
	return s.terminals.Close(id)
}

// IsSessionInEditMode reports whether a full-screen program owns a session
func (s *Service) IsSessionInEditMode(id string) bool {
	return s.terminals.IsEditMode(id)
}

// ListSessions returns the live sessions
func (s *Service) ListSessions() []terminal.Info {
	return s.terminals.List()
}

// Close terminates every session and forgets the command history
func (s *Service) Close() {
	s.log.Info("closing service", "sessions", s.terminals.Len(), "commands", s.history.Count())
	s.terminals.CloseAll()
	s.history.Clear()
}
