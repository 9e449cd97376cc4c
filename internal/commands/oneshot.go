package commands

import (
	"path/filepath"
	"strings"
)

// BuildKubectlArgs turns a raw command line typed by the user into the
// argument vector for kubectl.
//
// A leading "kubectl" token (or kubectl.exe, or a path to it) is dropped.
// When contextName is set and the user did not pass --context themselves, it
// is appended so the command runs against the selected context rather than
// whatever the kubeconfig currently points at.
func BuildKubectlArgs(raw, contextName string) ([]string, error) {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}

	if isKubectlToken(tokens[0]) {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, ErrMissingCommandArguments
	}

	if contextName != "" && !hasFlag(tokens, "--context") {
		tokens = append(tokens, "--context", contextName)
	}
	return tokens, nil
}

func isKubectlToken(tok string) bool {
	base := strings.ToLower(filepath.Base(tok))
	return base == DefaultKubectlBinary || base == DefaultKubectlBinary+".exe"
}

func hasFlag(tokens []string, flag string) bool {
	for _, t := range tokens {
		if t == flag || strings.HasPrefix(t, flag+"=") {
			return true
		}
	}
	return false
}
