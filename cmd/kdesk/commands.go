package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/renato0307/kdesk/internal/commands"
	"github.com/renato0307/kdesk/internal/modals"
	"github.com/renato0307/kdesk/internal/ui"
)

func newConfigsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List the kubeconfig files kdesk can switch to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			active := c.kubeconfig
			if active == "" {
				active = c.svc.ActiveKubeconfigPath()
			}
			files := c.svc.ListAvailableConfigs()
			if len(files) == 0 {
				c.message(cmd, "no kubeconfig files found", ui.MessageTypeWarning)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.ConfigsTable(files, active, c.theme))
			return nil
		},
	}
}

func newContextsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "contexts",
		Short: "List the contexts of the active kubeconfig",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.ContextsTable(sel.Contexts, sel.Context, c.theme))

			if hint := sel.Summary.CurrentContextName; hint != "" && !sel.HasContext(hint) {
				c.message(cmd, fmt.Sprintf("current-context %q is not defined in %s", hint, sel.KubeconfigPath), ui.MessageTypeWarning)
			}
			return nil
		},
	}
}

func newUseContextCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch the active kubeconfig to a context; partial names are matched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.load(cmd.Context()); err != nil {
				return err
			}
			name, err := c.svc.ResolveContextName(args[0])
			if err != nil {
				return err
			}
			sel, err := c.svc.SwitchContext(cmd.Context(), name)
			if err != nil {
				return err
			}
			c.message(cmd, fmt.Sprintf("switched to context %s in %s", sel.Context, sel.KubeconfigPath), ui.MessageTypeSuccess)
			return nil
		},
	}
}

func newNamespacesCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "namespaces [CONTEXT]",
		Short: "List the namespaces of a context (default: the selected one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "name", "wide", "yaml":
			default:
				return fmt.Errorf("unknown output format %q", output)
			}

			sel, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			contextName := sel.Context
			if len(args) == 1 {
				if contextName, err = c.svc.ResolveContextName(args[0]); err != nil {
					return err
				}
			}
			list, err := c.svc.NamespaceList(cmd.Context(), contextName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch output {
			case "yaml":
				return ui.PrintYAML(out, list)
			case "wide":
				selected := ""
				if contextName == sel.Context {
					selected = sel.Namespace
				}
				fmt.Fprintln(out, ui.NamespacesTable(list, selected, time.Now(), c.theme))
			default:
				for _, ns := range commands.NamespaceNames(list) {
					fmt.Fprintln(out, ns)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "name", "Output format: name, wide or yaml")
	return cmd
}

func newRunCmd(c *cli) *cobra.Command {
	var (
		contextName string
		copyOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "run [--context NAME] [--copy] -- KUBECTL ARGS...",
		Short: "Run a one-shot kubectl command against the active kubeconfig",
		Long: `Run a one-shot kubectl command against the active kubeconfig.

A leading "kubectl" is optional. A single argument is split like a shell
would, so a whole command line can be passed in quotes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextName != "" {
				if _, err := c.load(cmd.Context()); err != nil {
					return err
				}
				resolved, err := c.svc.ResolveContextName(contextName)
				if err != nil {
					return err
				}
				contextName = resolved
			} else if c.kubeconfig != "" {
				if _, err := c.load(cmd.Context()); err != nil {
					return err
				}
			}

			result, err := c.svc.RunOneShotCommand(cmd.Context(), contextName, commandLine(args))
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)

			if copyOutput && result.Stdout != "" {
				if msg, err := commands.CopyToClipboard(result.Stdout); err != nil {
					c.message(cmd, err.Error(), ui.MessageTypeWarning)
				} else {
					c.message(cmd, msg, ui.MessageTypeInfo)
				}
			}

			switch {
			case result.Success():
				return nil
			case result.ExitCode != nil:
				return &exitCodeError{code: *result.ExitCode}
			default:
				return fmt.Errorf("kubectl terminated by signal %s", result.Signal)
			}
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "", "context to run against; partial names are matched")
	cmd.Flags().BoolVar(&copyOutput, "copy", false, "copy stdout to the clipboard")
	return cmd
}

func newShellCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell bound to the active kubeconfig",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.load(cmd.Context()); err != nil {
				return err
			}
			return runShell(cmd.Context(), c.svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newPickCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Pick a context interactively and switch to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			if len(sel.Contexts) == 0 {
				c.message(cmd, "no contexts in "+sel.KubeconfigPath, ui.MessageTypeWarning)
				return nil
			}

			picker := modals.NewContextPicker(sel.Contexts, sel.Context, c.theme)
			program := tea.NewProgram(picker,
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := program.Run(); err != nil {
				return err
			}

			name, ok := picker.Chosen()
			if !ok {
				return nil
			}
			if _, err := c.svc.SwitchContext(cmd.Context(), name); err != nil {
				return err
			}
			c.message(cmd, "switched to context "+name, ui.MessageTypeSuccess)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kdesk",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kdesk version %s\n", cmd.Root().Version)
		},
	}
}

func (c *cli) message(cmd *cobra.Command, text string, msgType ui.MessageType) {
	fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderMessage(text, msgType, c.theme, 0))
}

// commandLine turns arguments back into one command line. A single argument
// is taken as written; otherwise arguments holding spaces or quotes are
// quoted so they survive tokenizing.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = quoteArg(arg)
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\") {
		return arg
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(arg)
	return `"` + escaped + `"`
}
