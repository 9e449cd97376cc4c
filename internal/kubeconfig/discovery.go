package kubeconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/renato0307/kdesk/internal/logging"
)

// configNamePrefix marks files such as "config-staging" as candidates
const configNamePrefix = "config"

// Discoverer enumerates kubeconfig files. It is best effort: files that
// cannot be read or do not look like kubeconfigs are skipped silently.
type Discoverer struct {
	env environment
	log *logging.Logger
}

// NewDiscoverer creates a discoverer reading the real environment unless
// options say otherwise.
func NewDiscoverer(opts ...Option) *Discoverer {
	return &Discoverer{
		env: newEnvironment(opts),
		log: logging.For("discovery"),
	}
}

// Discover returns, in order: the default kubeconfig if readable, matching
// files from the default kubeconfig's directory in listing order, then
// readable KUBECONFIG entries not already listed.
func (d *Discoverer) Discover() []File {
	var files []File
	seen := make(map[string]bool)

	add := func(f File) {
		seen[filepath.Clean(f.Path)] = true
		files = append(files, f)
	}

	defaultPath := d.env.defaultPath()
	if defaultPath != "" {
		if readable(defaultPath) {
			add(File{
				Path:        defaultPath,
				DisplayName: filepath.Base(defaultPath) + " (default)",
				IsDefault:   true,
			})
		}
		for _, path := range d.scanDir(filepath.Dir(defaultPath)) {
			if !seen[filepath.Clean(path)] {
				add(File{Path: path, DisplayName: filepath.Base(path)})
			}
		}
	}

	for _, path := range d.env.envPaths() {
		if seen[filepath.Clean(path)] || !readable(path) {
			continue
		}
		add(File{Path: path, DisplayName: filepath.Base(path)})
	}

	d.log.Debug("discovered kubeconfigs", "count", len(files))
	return files
}

// scanDir returns candidate kubeconfig files in dir, in os.ReadDir order
func (d *Discoverer) scanDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Debug("skipping kubeconfig directory", "dir", dir, "error", err)
		return nil
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !candidateName(name) {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		doc, err := parseDocument(data)
		if err != nil || !doc.looksLikeKubeconfig() {
			d.log.Debug("not a kubeconfig", "path", path)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// candidateName applies the file name heuristics: a "config" prefix, a YAML
// extension, or no extension at all.
func candidateName(name string) bool {
	if strings.HasPrefix(name, configNamePrefix) {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", "":
		return true
	}
	return false
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}
