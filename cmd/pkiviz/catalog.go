package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/pkiviz/internal/cli"
	"github.com/aretw0/pkiviz/internal/presentation/tui"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/highlight"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal reports whether cmd writes to a terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printMarkdown renders md with glamour on terminals and prints it raw otherwise.
func printMarkdown(cmd *cobra.Command, env *cli.Env, md string) error {
	render := tui.PlainRenderer()
	if isTerminal(cmd) {
		r, err := tui.NewRenderer(env.Config.Dark, 0)
		if err != nil {
			return err
		}
		render = r
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func newTableCmd(use, short string, table func(*catalog.Catalog) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, nil)
			if err != nil {
				return err
			}
			md, err := table(env.Catalog)
			if err != nil {
				return err
			}
			return printMarkdown(cmd, env, md)
		},
	}
}

func newNodesCmd() *cobra.Command {
	return newTableCmd("nodes", "List the PKI entities of the catalog", tui.NodesTable)
}

func newFlowsCmd() *cobra.Command {
	return newTableCmd("flows", "List the guided beginner flows", tui.FlowsTable)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <node-id>",
		Short: "Show the description and commands of one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, nil)
			if err != nil {
				return err
			}
			return cli.PrintPanel(env, cmd.OutOrStdout(), args[0], !isTerminal(cmd))
		},
	}
}

func newHighlightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlight <command...>",
		Short: "Print a command line with syntax colouring",
		Example: `  pkiviz highlight openssl x509 -in cert.pem -text -noout
  echo 'openssl req -new -key k.pem' | pkiviz highlight -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, nil)
			if err != nil {
				return err
			}
			line := strings.Join(args, " ")
			if line == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				line = strings.TrimSpace(string(data))
			}

			profile := termenv.Ascii
			if f, ok := cmd.OutOrStdout().(*os.File); ok && isTerminal(cmd) {
				profile = termenv.NewOutput(f).Profile
			}
			tokens := highlight.Highlight(line)
			fmt.Fprintln(cmd.OutOrStdout(), highlight.ANSI(tokens, profile, highlight.PaletteFor(env.Config.Dark)))
			return nil
		},
	}
	// Everything after the first word belongs to the highlighted command, flags included.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
