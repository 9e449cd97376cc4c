package switcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/kubeconfig"
)

type fakeLoader struct {
	mu       sync.Mutex
	override string
	active   string
	files    map[string]kubeconfig.Summary
	errs     map[string]error
	delays   map[string]time.Duration
	gates    map[string]chan struct{}
	started  chan string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		active: "/home/op/.kube/config",
		files:  map[string]kubeconfig.Summary{},
		errs:   map[string]error{},
		delays: map[string]time.Duration{},
		gates:  map[string]chan struct{}{},
	}
}

func (f *fakeLoader) SetOverride(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.override = path
}

func (f *fakeLoader) Override() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.override
}

func (f *fakeLoader) ResolveActivePath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.override != "" {
		return f.override
	}
	return f.active
}

func (f *fakeLoader) LoadSummaryAt(ctx context.Context, path string) (kubeconfig.Summary, error) {
	f.mu.Lock()
	summary, err := f.files[path], f.errs[path]
	delay, gate, started := f.delays[path], f.gates[path], f.started
	f.mu.Unlock()

	if started != nil {
		started <- path
	}
	if gate != nil {
		<-gate
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return kubeconfig.Summary{}, err
	}
	summary.ActiveKubeconfigPath = path
	return summary, nil
}

func (f *fakeLoader) add(path, current string, contexts ...kubeconfig.Context) {
	f.files[path] = kubeconfig.Summary{Contexts: contexts, CurrentContextName: current}
}

type runCall struct {
	args []string
	opts commands.ExecOptions
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []runCall
	handle func(args []string) (commands.CommandResult, error)
}

func (f *fakeRunner) Execute(ctx context.Context, args []string, opts commands.ExecOptions) (commands.CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{args: args, opts: opts})
	handle := f.handle
	f.mu.Unlock()
	if handle == nil {
		return ok(""), nil
	}
	return handle(args)
}

func (f *fakeRunner) lastCall() runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func ok(stdout string) commands.CommandResult {
	code := 0
	return commands.CommandResult{Stdout: stdout, ExitCode: &code}
}

func failed(stderr string, code int) commands.CommandResult {
	return commands.CommandResult{Stderr: stderr, ExitCode: &code}
}

func ctxNamed(name, ns string) kubeconfig.Context {
	return kubeconfig.Context{Name: name, ClusterName: name + "-cluster", Namespace: ns}
}

// recorder collects published snapshots and checks that no snapshot ever
// selects a context outside its own context list.
type recorder struct {
	mu    sync.Mutex
	snaps []Selection
}

func (r *recorder) listen(s Selection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) check(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var last uint64
	for _, s := range r.snaps {
		assert.Greater(t, s.Version, last, "snapshots must be delivered in order")
		last = s.Version
		if s.Context != "" {
			assert.True(t, s.HasContext(s.Context), "context %q not in list of %s", s.Context, s.KubeconfigPath)
		}
	}
}

func TestLoad_SelectsCurrentContext(t *testing.T) {
	loader := newFakeLoader()
	loader.add(loader.active, "b", ctxNamed("a", "ns-a"), ctxNamed("b", "ns-b"))
	c := New(loader, &fakeRunner{})

	sel, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseSettled, sel.Phase)
	assert.Equal(t, "b", sel.Context)
	assert.Equal(t, "ns-b", sel.Namespace)
	assert.Equal(t, loader.active, sel.KubeconfigPath)
	assert.Empty(t, loader.Override(), "Load must not pin an override")
}

func TestSwitchConfig_FallsBackToFirstContext(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		contexts []kubeconfig.Context
		want     string
	}{
		{"hint missing from contexts", "gone", []kubeconfig.Context{ctxNamed("x", ""), ctxNamed("y", "")}, "x"},
		{"no hint", "", []kubeconfig.Context{ctxNamed("x", "")}, "x"},
		{"no contexts", "gone", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newFakeLoader()
			loader.add("/p", tt.current, tt.contexts...)
			c := New(loader, &fakeRunner{})

			sel, err := c.SwitchConfig(context.Background(), "/p")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Context)
			assert.Equal(t, tt.current, sel.Summary.CurrentContextName)
			assert.Equal(t, "/p", loader.Override())
		})
	}
}

func TestSwitchConfig_LoadErrorSettlesEmpty(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/good", "a", ctxNamed("a", ""))
	loadErr := &kubeconfig.ConfigMalformedError{Path: "/bad", Err: errors.New("boom")}
	loader.errs["/bad"] = loadErr
	c := New(loader, &fakeRunner{})

	_, err := c.SwitchConfig(context.Background(), "/good")
	require.NoError(t, err)

	sel, err := c.SwitchConfig(context.Background(), "/bad")
	require.ErrorIs(t, err, kubeconfig.ErrConfigMalformed)
	assert.Equal(t, PhaseSettled, sel.Phase)
	assert.Empty(t, sel.Contexts)
	assert.Empty(t, sel.Context)
	assert.Equal(t, "/bad", sel.KubeconfigPath)
	assert.ErrorIs(t, sel.Err, kubeconfig.ErrConfigMalformed)
}

func TestSwitchConfig_ClearsSelectionWhileLoading(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/a", "a1", ctxNamed("a1", "ns"))
	loader.add("/b", "b1", ctxNamed("b1", ""))
	gate := make(chan struct{})
	loader.gates["/b"] = gate
	loader.started = make(chan string, 4)
	c := New(loader, &fakeRunner{})

	_, err := c.SwitchConfig(context.Background(), "/a")
	require.NoError(t, err)
	<-loader.started

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.SwitchConfig(context.Background(), "/b")
	}()
	<-loader.started

	sel := c.Selection()
	assert.Equal(t, PhaseSwitching, sel.Phase)
	assert.Empty(t, sel.Context)
	assert.Empty(t, sel.Namespace)
	assert.Equal(t, "/b", sel.KubeconfigPath)

	_, err = c.SwitchContext(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrSwitchInProgress)
	_, err = c.SelectNamespace("ns")
	assert.ErrorIs(t, err, ErrSwitchInProgress)

	close(gate)
	<-done
	assert.Equal(t, "b1", c.Selection().Context)
}

func TestSwitchConfig_FastThenSlow(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/slow", "s1", ctxNamed("s1", ""))
	loader.add("/fast", "f1", ctxNamed("f1", ""))
	gate := make(chan struct{})
	loader.gates["/slow"] = gate
	loader.started = make(chan string, 4)

	c := New(loader, &fakeRunner{})
	rec := &recorder{}
	c.Subscribe(rec.listen)

	slowErr := make(chan error, 1)
	go func() {
		_, err := c.SwitchConfig(context.Background(), "/slow")
		slowErr <- err
	}()
	require.Equal(t, "/slow", <-loader.started)

	sel, err := c.SwitchConfig(context.Background(), "/fast")
	require.NoError(t, err)
	<-loader.started
	assert.Equal(t, "f1", sel.Context)

	close(gate)
	assert.ErrorIs(t, <-slowErr, ErrSuperseded)

	final := c.Selection()
	assert.Equal(t, "/fast", final.KubeconfigPath)
	assert.Equal(t, "f1", final.Context)
	assert.Equal(t, "/fast", loader.Override())
	rec.check(t)
}

func TestSwitchConfig_LatestRequestWins(t *testing.T) {
	const files = 6
	loader := newFakeLoader()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < files; i++ {
		path := fmt.Sprintf("/k%d", i)
		loader.add(path, fmt.Sprintf("c%d", i), ctxNamed(fmt.Sprintf("c%d", i), ""), ctxNamed("shared", ""))
		loader.delays[path] = time.Duration(rng.Intn(20)) * time.Millisecond
	}
	loader.started = make(chan string, 64)

	for round := 0; round < 10; round++ {
		c := New(loader, &fakeRunner{})
		rec := &recorder{}
		c.Subscribe(rec.listen)

		order := rng.Perm(files)
		var wg sync.WaitGroup
		for _, i := range order {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				_, _ = c.SwitchConfig(context.Background(), path)
			}(fmt.Sprintf("/k%d", i))
			// wait until this request has taken its generation
			<-loader.started
		}
		wg.Wait()

		last := order[len(order)-1]
		final := c.Selection()
		assert.Equal(t, PhaseSettled, final.Phase)
		assert.Equal(t, fmt.Sprintf("/k%d", last), final.KubeconfigPath)
		assert.Equal(t, fmt.Sprintf("c%d", last), final.Context)
		rec.check(t)
	}
}

func TestSwitchContext(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", "ns-a"), ctxNamed("b", "ns-b"))
	runner := &fakeRunner{}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	sel, err := c.SwitchContext(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", sel.Context)
	assert.Equal(t, "ns-b", sel.Namespace)
	assert.Equal(t, "b", sel.Summary.CurrentContextName)

	call := runner.lastCall()
	assert.Equal(t, []string{"config", "use-context", "b"}, call.args)
	assert.Equal(t, "/p", call.opts.Kubeconfig)
}

func TestSwitchContext_EmptyName(t *testing.T) {
	runner := &fakeRunner{}
	c := New(newFakeLoader(), runner)

	_, err := c.SwitchContext(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyContextName)
	assert.Empty(t, runner.calls)
}

func TestSwitchContext_KubectlFailure(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""))
	runner := &fakeRunner{handle: func([]string) (commands.CommandResult, error) {
		return failed("error: no context exists with the name: \"nope\"\n", 1), nil
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	sel, err := c.SwitchContext(context.Background(), "nope")
	require.ErrorIs(t, err, ErrContextSwitchFailed)

	var switchErr *ContextSwitchFailedError
	require.True(t, errors.As(err, &switchErr))
	assert.Equal(t, "nope", switchErr.Context)
	require.NotNil(t, switchErr.ExitCode)
	assert.Equal(t, 1, *switchErr.ExitCode)
	assert.Contains(t, err.Error(), "no context exists")
	assert.Equal(t, "a", sel.Context, "selection unchanged on failure")
}

func TestSwitchContext_ExecutorError(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""))
	notFound := &commands.ExecutableNotFoundError{Binary: "kubectl", Err: errors.New("missing")}
	runner := &fakeRunner{handle: func([]string) (commands.CommandResult, error) {
		return commands.CommandResult{}, notFound
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	_, err = c.SwitchContext(context.Background(), "a")
	assert.ErrorIs(t, err, commands.ErrExecutableNotFound)
}

func TestSwitchContext_UnknownAfterSuccess(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""))
	c := New(loader, &fakeRunner{})
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	sel, err := c.SwitchContext(context.Background(), "elsewhere")
	assert.ErrorIs(t, err, ErrUnknownContext)
	assert.Equal(t, "a", sel.Context)
}

func TestSwitchContext_SupersededByConfigSwitch(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/a", "a1", ctxNamed("a1", ""), ctxNamed("a2", ""))
	loader.add("/b", "b1", ctxNamed("b1", ""))

	release := make(chan struct{})
	entered := make(chan struct{})
	runner := &fakeRunner{handle: func([]string) (commands.CommandResult, error) {
		close(entered)
		<-release
		return ok(""), nil
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/a")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.SwitchContext(context.Background(), "a2")
		errCh <- err
	}()
	<-entered

	_, err = c.SwitchConfig(context.Background(), "/b")
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-errCh, ErrSuperseded)
	sel := c.Selection()
	assert.Equal(t, "/b", sel.KubeconfigPath)
	assert.Equal(t, "b1", sel.Context)
}

func TestSwitchContext_LatestContextWins(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""), ctxNamed("b", ""), ctxNamed("c", ""))

	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	runner := &fakeRunner{handle: func(args []string) (commands.CommandResult, error) {
		if args[2] == "b" {
			entered <- struct{}{}
			<-release
		}
		return ok(""), nil
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.SwitchContext(context.Background(), "b")
		errCh <- err
	}()
	<-entered

	sel, err := c.SwitchContext(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, "c", sel.Context)

	close(release)
	assert.ErrorIs(t, <-errCh, ErrSuperseded)
	assert.Equal(t, "c", c.Selection().Context)
}

func TestSelectNamespace(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", "default"))
	c := New(loader, &fakeRunner{})

	_, err := c.SelectNamespace("kube-system")
	assert.ErrorIs(t, err, ErrUnknownContext, "nothing selected yet")

	_, err = c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	sel, err := c.SelectNamespace("kube-system")
	require.NoError(t, err)
	assert.Equal(t, "kube-system", sel.Namespace)
	assert.Equal(t, "a", sel.Context)
}

func TestListNamespaces(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""))
	runner := &fakeRunner{handle: func([]string) (commands.CommandResult, error) {
		return ok(`{"kind":"List","items":[{"metadata":{"name":"kube-system"}},{"metadata":{"name":"default"}}]}`), nil
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	namespaces, err := c.ListNamespaces(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "kube-system"}, namespaces)

	call := runner.lastCall()
	assert.Equal(t, []string{"get", "namespaces", "-o", "json", "--context", "a"}, call.args)
	assert.Equal(t, "/p", call.opts.Kubeconfig)
}

func TestListNamespaces_Errors(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""))
	runner := &fakeRunner{handle: func([]string) (commands.CommandResult, error) {
		return failed("Unable to connect to the server", 1), nil
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)

	_, err = c.ListNamespaces(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownContext)

	_, err = c.ListNamespaces(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to connect")
}

func TestListNamespaces_DiscardedAfterSwitch(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/a", "a1", ctxNamed("a1", ""))
	loader.add("/b", "b1", ctxNamed("b1", ""))

	release := make(chan struct{})
	entered := make(chan struct{})
	runner := &fakeRunner{handle: func([]string) (commands.CommandResult, error) {
		close(entered)
		<-release
		return ok(`{"kind":"List","items":[{"metadata":{"name":"default"}}]}`), nil
	}}
	c := New(loader, runner)
	_, err := c.SwitchConfig(context.Background(), "/a")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.ListNamespaces(context.Background(), "a1")
		errCh <- err
	}()
	<-entered

	_, err = c.SwitchConfig(context.Background(), "/b")
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-errCh, ErrSuperseded)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	loader := newFakeLoader()
	loader.add("/p", "a", ctxNamed("a", ""))
	c := New(loader, &fakeRunner{})

	var count int
	unsubscribe := c.Subscribe(func(Selection) { count++ })
	_, err := c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "switching and settled snapshots")

	unsubscribe()
	_, err = c.SwitchConfig(context.Background(), "/p")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPublish_DropsOlderSnapshots(t *testing.T) {
	c := New(newFakeLoader(), &fakeRunner{})
	rec := &recorder{}
	c.Subscribe(rec.listen)

	c.mu.Lock()
	older := c.writeLocked(func(s *Selection) { s.Namespace = "older" })
	newer := c.writeLocked(func(s *Selection) { s.Namespace = "newer" })
	c.mu.Unlock()

	c.publish(newer)
	c.publish(older)
	c.publish(newer)

	rec.check(t)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.snaps, 1)
	assert.Equal(t, "newer", rec.snaps[0].Namespace)
	assert.Equal(t, newer.Version, c.Selection().Version)
}

func TestPublish_ConcurrentWritersDeliverInOrder(t *testing.T) {
	c := New(newFakeLoader(), &fakeRunner{})
	rec := &recorder{}
	c.Subscribe(rec.listen)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.mu.Lock()
			snap := c.writeLocked(func(*Selection) {})
			c.mu.Unlock()
			c.publish(snap)
		}()
	}
	wg.Wait()

	rec.check(t)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.snaps)
	assert.Equal(t, uint64(20), rec.snaps[len(rec.snaps)-1].Version)
}

func TestSwitchConfig_EmptyPathReloadsDefault(t *testing.T) {
	loader := newFakeLoader()
	loader.add(loader.active, "a", ctxNamed("a", ""))
	loader.add("/other", "o", ctxNamed("o", ""))
	c := New(loader, &fakeRunner{})

	_, err := c.SwitchConfig(context.Background(), "/other")
	require.NoError(t, err)

	sel, err := c.SwitchConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, loader.Override())
	assert.Equal(t, loader.active, sel.KubeconfigPath)
	assert.Equal(t, "a", sel.Context)
}

func TestContextSwitchFailedError_Message(t *testing.T) {
	code := 2
	err := &ContextSwitchFailedError{Context: "x", ExitCode: &code}
	assert.Equal(t, `switching to context "x" failed: exit code 2`, err.Error())

	err = &ContextSwitchFailedError{Context: "x", Signal: "killed"}
	assert.Contains(t, err.Error(), "signal killed")
}
