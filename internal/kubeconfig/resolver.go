// Package kubeconfig resolves which kubeconfig file is active, summarizes its
// contexts and discovers other kubeconfig files the user may switch to.
package kubeconfig

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/renato0307/kdesk/internal/logging"
)

// Option configures a Resolver or Discoverer
type Option func(*environment)

// environment holds the platform lookups used for path resolution. Tests
// replace them to avoid depending on the real HOME and KUBECONFIG.
type environment struct {
	getenv  func(string) string
	homeDir func() string
}

func newEnvironment(opts []Option) environment {
	env := environment{
		getenv:  os.Getenv,
		homeDir: homedir.HomeDir,
	}
	for _, opt := range opts {
		opt(&env)
	}
	return env
}

// WithGetenv replaces os.Getenv
func WithGetenv(fn func(string) string) Option {
	return func(e *environment) { e.getenv = fn }
}

// WithHomeDir replaces the home directory lookup
func WithHomeDir(fn func() string) Option {
	return func(e *environment) { e.homeDir = fn }
}

// defaultPath is ~/.kube/config, or empty when no home directory is known
func (e environment) defaultPath() string {
	home := e.homeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, clientcmd.RecommendedHomeDir, clientcmd.RecommendedFileName)
}

// envPaths returns the non-empty entries of KUBECONFIG in order
func (e environment) envPaths() []string {
	var paths []string
	for _, p := range filepath.SplitList(e.getenv(clientcmd.RecommendedConfigPathEnvVar)) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Resolver determines the active kubeconfig path and loads its summary.
//
// The override path is process-lifetime state owned by the context switch
// coordinator. It is never persisted.
type Resolver struct {
	mu       sync.RWMutex
	override string

	env        environment
	discoverer *Discoverer
	log        *logging.Logger
}

// NewResolver creates a resolver reading the real environment unless
// options say otherwise.
func NewResolver(opts ...Option) *Resolver {
	return &Resolver{
		env:        newEnvironment(opts),
		discoverer: NewDiscoverer(opts...),
		log:        logging.For("kubeconfig"),
	}
}

// SetOverride pins the active kubeconfig to path. An empty path clears it.
func (r *Resolver) SetOverride(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = path
}

// Override returns the explicit override path, if any
func (r *Resolver) Override() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.override
}

// DefaultPath returns the platform default kubeconfig location
func (r *Resolver) DefaultPath() string {
	return r.env.defaultPath()
}

// HomeDir returns the user's home directory (HOME, then USERPROFILE on Windows)
func (r *Resolver) HomeDir() string {
	return r.env.homeDir()
}

// ResolveActivePath applies the precedence override > first KUBECONFIG
// entry > ~/.kube/config.
func (r *Resolver) ResolveActivePath() string {
	if override := r.Override(); override != "" {
		return override
	}
	if paths := r.env.envPaths(); len(paths) > 0 {
		return paths[0]
	}
	return r.env.defaultPath()
}

// LoadSummary loads the summary of the currently active kubeconfig
func (r *Resolver) LoadSummary(ctx context.Context) (Summary, error) {
	return r.LoadSummaryAt(ctx, r.ResolveActivePath())
}

// LoadSummaryAt loads the summary of the kubeconfig at path. Callers that
// race with override changes pass the path they resolved themselves.
func (r *Resolver) LoadSummaryAt(ctx context.Context, path string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	t := r.log.Start("load kubeconfig summary")

	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, &ConfigUnreadableError{Path: path, Err: err}
	}

	doc, err := parseDocument(data)
	if err != nil {
		return Summary{}, &ConfigMalformedError{Path: path, Err: err}
	}

	summary := Summary{
		Contexts:             doc.contexts(),
		CurrentContextName:   doc.currentContext(),
		ActiveKubeconfigPath: path,
		AvailableConfigs:     r.discoverer.Discover(),
	}

	if summary.CurrentContextName != "" && !summary.HasContext(summary.CurrentContextName) {
		r.log.Warn("current-context does not name a known context",
			"path", path, "current", summary.CurrentContextName)
	}

	logging.End(t, "path", path, "contexts", len(summary.Contexts))
	return summary, nil
}

// ListAvailableConfigs runs discovery
func (r *Resolver) ListAvailableConfigs() []File {
	return r.discoverer.Discover()
}
