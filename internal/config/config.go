// Package config loads kdesk's optional settings file.
//
// The file lives at $XDG_CONFIG_HOME/kdesk/config.yaml, or
// ~/.config/kdesk/config.yaml when XDG_CONFIG_HOME is unset. A missing file
// means defaults; a malformed one is an error. Command-line flags are applied
// on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/yaml"

	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/terminal"
)

const (
	appDir         = "kdesk"
	configFileName = "config.yaml"
	logFileName    = "kdesk.log"
)

// For mocking in tests
var (
	getenv  = os.Getenv
	homeDir = homedir.HomeDir
)

// Config is the settings file layout
type Config struct {
	Kubectl  KubectlConfig  `json:"kubectl"`
	Terminal TerminalConfig `json:"terminal"`
	Log      LogConfig      `json:"log"`
	Theme    string         `json:"theme,omitempty"`
}

// KubectlConfig controls one-shot kubectl commands
type KubectlConfig struct {
	Binary  string          `json:"binary,omitempty"`
	Timeout metav1.Duration `json:"timeout,omitempty"`
}

// TerminalConfig controls interactive shell sessions
type TerminalConfig struct {
	// Shell is used unless KDESK_SHELL is set
	Shell string `json:"shell,omitempty"`
	Cols  uint16 `json:"cols,omitempty"`
	Rows  uint16 `json:"rows,omitempty"`
}

// LogConfig controls the log file. An empty File disables logging.
type LogConfig struct {
	File       string `json:"file,omitempty"`
	Level      string `json:"level,omitempty"`
	Format     string `json:"format,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMB,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Kubectl: KubectlConfig{
			Binary:  commands.DefaultKubectlBinary,
			Timeout: metav1.Duration{Duration: commands.DefaultKubectlTimeout},
		},
		Terminal: TerminalConfig{
			Cols: terminal.DefaultCols,
			Rows: terminal.DefaultRows,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Theme: "charm",
	}
}

// Dir returns kdesk's configuration directory
func Dir() (string, error) {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home := homeDir()
	if home == "" {
		return "", errors.New("cannot determine the home directory")
	}
	return filepath.Join(home, ".config", appDir), nil
}

// DefaultPath returns the settings file location
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultLogPath returns where the log file goes when logging is enabled
// without an explicit file
func DefaultLogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// Load reads the settings file at path, or at DefaultPath when path is
// empty, and fills unset fields with defaults
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	var overlay Config
	if err := yaml.UnmarshalStrict(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("error parsing config from %s: %w", path, err)
	}

	cfg := merge(Default(), overlay)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

// merge applies the fields set in overlay on top of base
func merge(base, overlay Config) Config {
	merged := base

	if overlay.Kubectl.Binary != "" {
		merged.Kubectl.Binary = overlay.Kubectl.Binary
	}
	if overlay.Kubectl.Timeout.Duration != 0 {
		merged.Kubectl.Timeout = overlay.Kubectl.Timeout
	}

	if overlay.Terminal.Shell != "" {
		merged.Terminal.Shell = overlay.Terminal.Shell
	}
	if overlay.Terminal.Cols != 0 {
		merged.Terminal.Cols = overlay.Terminal.Cols
	}
	if overlay.Terminal.Rows != 0 {
		merged.Terminal.Rows = overlay.Terminal.Rows
	}

	if overlay.Log.File != "" {
		merged.Log.File = overlay.Log.File
	}
	if overlay.Log.Level != "" {
		merged.Log.Level = overlay.Log.Level
	}
	if overlay.Log.Format != "" {
		merged.Log.Format = overlay.Log.Format
	}
	if overlay.Log.MaxSizeMB != 0 {
		merged.Log.MaxSizeMB = overlay.Log.MaxSizeMB
	}
	if overlay.Log.MaxBackups != 0 {
		merged.Log.MaxBackups = overlay.Log.MaxBackups
	}

	if overlay.Theme != "" {
		merged.Theme = overlay.Theme
	}
	return merged
}

// Validate rejects values the rest of kdesk cannot use
func (c Config) Validate() error {
	var errs []error

	if c.Kubectl.Timeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("kubectl.timeout must not be negative, got %s", c.Kubectl.Timeout.Duration))
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		errs = append(errs, errors.New("log rotation limits must not be negative"))
	}

	return errors.Join(errs...)
}

// KubectlTimeout returns the configured timeout as a time.Duration
func (c Config) KubectlTimeout() time.Duration {
	return c.Kubectl.Timeout.Duration
}
