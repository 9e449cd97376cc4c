package terminal

import (
	"os"
	"runtime"
	"sort"
)

const (
	// ShellEnvVar overrides the shell started for new sessions
	ShellEnvVar = "KDESK_SHELL"

	// DefaultCols and DefaultRows size a session when the caller does not
	DefaultCols uint16 = 80
	DefaultRows uint16 = 24

	termEnv = "TERM=xterm-256color"
)

// ResolveShell picks the shell for a new session: the KDESK_SHELL variable,
// then the configured shell, then the platform default.
func ResolveShell(configured string, getenv func(string) string, goos string) string {
	if getenv != nil {
		if shell := getenv(ShellEnvVar); shell != "" {
			return shell
		}
	}
	if configured != "" {
		return configured
	}
	switch goos {
	case "windows":
		return "powershell.exe"
	case "darwin":
		return "zsh"
	default:
		return "bash"
	}
}

func defaultShell(configured string) string {
	return ResolveShell(configured, os.Getenv, runtime.GOOS)
}

// sessionEnv layers TERM and the caller's overrides on top of base.
// Overrides come last so they win, and are sorted for a stable result.
func sessionEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides)+1)
	env = append(env, base...)
	env = append(env, termEnv)

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
