package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/kubeconfig"
)

const testKubeconfig = `
current-context: staging
clusters:
- name: c1
  cluster:
    server: https://c1:6443
contexts:
- name: dev-eu
  context:
    cluster: c1
    user: dev
- name: staging
  context:
    cluster: c1
    user: admin
`

const prodKubeconfig = `
contexts:
- name: prod
  context:
    cluster: p
`

type scriptedRunner struct {
	mu     sync.Mutex
	calls  [][]string
	stdout string
	code   int
}

func (r *scriptedRunner) Execute(_ context.Context, args []string, _ commands.ExecOptions) (commands.CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, args)
	code := r.code
	return commands.CommandResult{Stdout: r.stdout, ExitCode: &code}, nil
}

type harness struct {
	runner *scriptedRunner
	home   string
	prod   string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	kubeDir := filepath.Join(home, ".kube")
	require.NoError(t, os.MkdirAll(kubeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(kubeDir, "config"), []byte(testKubeconfig), 0o600))

	h := &harness{
		runner: &scriptedRunner{},
		home:   home,
		prod:   filepath.Join(kubeDir, "prod.yaml"),
		config: filepath.Join(t.TempDir(), "kdesk.yaml"),
	}
	require.NoError(t, os.WriteFile(h.prod, []byte(prodKubeconfig), 0o600))
	return h
}

func (h *harness) run(args ...string) (string, string, error) {
	root := newRootCmd(deps{
		runner: h.runner,
		kubeconfigOpts: []kubeconfig.Option{
			kubeconfig.WithHomeDir(func() string { return h.home }),
			kubeconfig.WithGetenv(func(string) string { return "" }),
		},
	})
	root.Version = "1.2.3-test"

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", h.config}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd(deps{})
	assert.Equal(t, "kdesk", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.True(t, root.SilenceUsage)

	found := map[string]bool{}
	for _, cmd := range root.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range []string{"configs", "contexts", "use-context", "namespaces", "run", "shell", "pick", "version"} {
		assert.True(t, found[name], "missing subcommand %s", name)
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("version")
	require.NoError(t, err)
	assert.Equal(t, "kdesk version 1.2.3-test\n", out)
}

func TestConfigsCommand(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("configs")
	require.NoError(t, err)
	assert.Contains(t, out, "config (default)")
	assert.Contains(t, out, "prod.yaml")
}

func TestContextsCommand(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("contexts")
	require.NoError(t, err)
	assert.Contains(t, out, "dev-eu")
	assert.Contains(t, out, "staging")
	assert.Contains(t, out, "https://c1:6443")

	out, _, err = h.run("--kubeconfig", h.prod, "contexts")
	require.NoError(t, err)
	assert.Contains(t, out, "prod")
	assert.NotContains(t, out, "dev-eu")
}

func TestContextsCommand_MalformedKubeconfig(t *testing.T) {
	h := newHarness(t)
	bad := filepath.Join(h.home, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("contexts: [oops"), 0o600))

	_, _, err := h.run("--kubeconfig", bad, "contexts")
	assert.ErrorIs(t, err, kubeconfig.ErrConfigMalformed)
}

func TestUseContextCommand(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("use-context", "dev")
	require.NoError(t, err)
	require.Len(t, h.runner.calls, 1)
	assert.Equal(t, []string{"config", "use-context", "dev-eu"}, h.runner.calls[0])
	assert.Contains(t, stderr, "switched to context dev-eu")
}

func TestUseContextCommand_NoMatch(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("use-context", "zzz")
	require.Error(t, err)
	assert.Empty(t, h.runner.calls)
}

const namespacesJSON = `{"apiVersion":"v1","kind":"List","items":[
{"metadata":{"name":"kube-system"},"status":{"phase":"Active"}},
{"metadata":{"name":"default"},"status":{"phase":"Active"}}]}`

func TestNamespacesCommand(t *testing.T) {
	h := newHarness(t)
	h.runner.stdout = namespacesJSON

	out, _, err := h.run("namespaces")
	require.NoError(t, err)
	assert.Equal(t, "default\nkube-system\n", out)
	assert.Equal(t, []string{"get", "namespaces", "-o", "json", "--context", "staging"}, h.runner.calls[0])
}

func TestNamespacesCommand_Outputs(t *testing.T) {
	h := newHarness(t)
	h.runner.stdout = namespacesJSON

	out, _, err := h.run("namespaces", "dev", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: NamespaceList")
	assert.Contains(t, out, "name: kube-system")
	assert.Equal(t, []string{"get", "namespaces", "-o", "json", "--context", "dev-eu"}, h.runner.calls[0])

	out, _, err = h.run("namespaces", "-o", "wide")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "Active")

	_, _, err = h.run("namespaces", "-o", "json")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestRunCommand(t *testing.T) {
	h := newHarness(t)
	h.runner.stdout = "pod-a\n"

	out, _, err := h.run("run", "--context", "stag", "--", "kubectl", "get", "pods", "-n", "kube system")
	require.NoError(t, err)
	assert.Equal(t, "pod-a\n", out)
	assert.Equal(t, []string{"get", "pods", "-n", "kube system", "--context", "staging"}, h.runner.calls[0])
}

func TestRunCommand_SingleCommandLine(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("run", "get pods -l 'app=web'")
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "pods", "-l", "app=web"}, h.runner.calls[0])
}

func TestRunCommand_ExitCode(t *testing.T) {
	h := newHarness(t)
	h.runner.code = 2

	_, _, err := h.run("run", "get", "nope")
	var exitErr *exitCodeError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.code)
}

func TestRunCommand_OnlyKubectl(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("run", "kubectl")
	assert.ErrorIs(t, err, commands.ErrMissingCommandArguments)
}

func TestShellCommand_NeedsTerminal(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("shell")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"single line", []string{"get pods -n 'a b'"}, []string{"get", "pods", "-n", "a b"}},
		{"plain args", []string{"get", "pods"}, []string{"get", "pods"}},
		{"arg with space", []string{"get", "ns", "-l", "a b"}, []string{"get", "ns", "-l", "a b"}},
		{"arg with quotes", []string{"exec", "p", "--", "sh", "-c", `echo "hi" 'x'`}, []string{"exec", "p", "--", "sh", "-c", `echo "hi" 'x'`}},
		{"backslash", []string{"get", `C:\kube\config`, "x"}, []string{"get", `C:\kube\config`, "x"}},
		{"empty arg", []string{"get", "", "x"}, []string{"get", "", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commands.Tokenize(commandLine(tt.args)))
		})
	}
}
