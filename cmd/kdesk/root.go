package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/renato0307/kdesk/internal/app"
	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/config"
	"github.com/renato0307/kdesk/internal/kubeconfig"
	"github.com/renato0307/kdesk/internal/logging"
	"github.com/renato0307/kdesk/internal/switcher"
	"github.com/renato0307/kdesk/internal/terminal"
	"github.com/renato0307/kdesk/internal/ui"
)

// deps replaces real collaborators in tests
type deps struct {
	runner         commands.Runner
	kubeconfigOpts []kubeconfig.Option
	terminalOpts   []terminal.ManagerOption
}

// cli holds the flags and the service shared by all subcommands
type cli struct {
	deps deps

	configPath string
	kubeconfig string
	logFile    string
	logLevel   string
	logFormat  string
	themeName  string

	cfg   config.Config
	svc   *app.Service
	theme *ui.Theme
}

func newRootCmd(d deps) *cobra.Command {
	c := &cli{deps: d}

	root := &cobra.Command{
		Use:   "kdesk",
		Short: "Switch kubeconfigs and contexts, run kubectl and cluster shells",
		Long: `kdesk finds the kubeconfig files on this machine, switches between them
and their contexts, runs one-shot kubectl commands against the selection and
opens interactive shells bound to the active kubeconfig.`,
		// SilenceUsage is set to true to prevent printing usage message on errors
		// handled by us (e.g. failed kubectl calls)
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.teardown() },
	}
	root.SetVersionTemplate(`{{printf "kdesk version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "settings file (default $XDG_CONFIG_HOME/kdesk/config.yaml)")
	flags.StringVar(&c.kubeconfig, "kubeconfig", "", "kubeconfig to use instead of KUBECONFIG or ~/.kube/config")
	flags.StringVar(&c.logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.logFormat, "log-format", "", "log format (text, json)")
	flags.StringVar(&c.themeName, "theme", "", "color theme ("+strings.Join(ui.AvailableThemes(), ", ")+")")

	root.AddCommand(
		newConfigsCmd(c),
		newContextsCmd(c),
		newUseContextCmd(c),
		newNamespacesCmd(c),
		newRunCmd(c),
		newShellCmd(c),
		newPickCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads settings, applies flag overrides and builds the service
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.Log.File = c.logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	if flags.Changed("theme") {
		cfg.Theme = c.themeName
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	if err := logging.Init(logging.Config{
		FilePath:   cfg.Log.File,
		Level:      logging.ParseLevel(cfg.Log.Level),
		Format:     logging.ParseFormat(cfg.Log.Format),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		return err
	}
	logging.Debug("kdesk starting", "command", cmd.Name(), "version", cmd.Root().Version)

	c.theme = ui.GetTheme(cfg.Theme)
	c.svc = app.New(app.Options{
		Config:         cfg,
		KubeconfigOpts: c.deps.kubeconfigOpts,
		Runner:         c.deps.runner,
		TerminalOpts:   c.deps.terminalOpts,
	})
	return nil
}

func (c *cli) teardown() {
	if c.svc != nil {
		c.svc.Close()
	}
	_ = logging.Shutdown()
}

// load selects the kubeconfig named by --kubeconfig, or the resolved one
func (c *cli) load(ctx context.Context) (switcher.Selection, error) {
	if c.kubeconfig != "" {
		return c.svc.SwitchConfig(ctx, c.kubeconfig)
	}
	if _, err := c.svc.LoadActiveSummary(ctx); err != nil {
		return switcher.Selection{}, err
	}
	return c.svc.Selection(), nil
}
