package main

import (
	"github.com/aretw0/pkiviz/internal/cli"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkiviz",
		Short: "pkiviz is an interactive map of Public Key Infrastructure",
		Long: `pkiviz shows how PKI entities relate (CAs, certificates, keys, CSRs,
revocation, trust stores, chains) and the OpenSSL commands that produce or
inspect each of them. Beginner mode walks through guided flows step by step.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./pkiviz.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("dark", false, "Start in dark mode")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog YAML file (default: built-in catalog)")

	exploreCmd := newExploreCmd()
	rootCmd.AddCommand(
		exploreCmd,
		newServeCmd(),
		newMCPCmd(),
		newNodesCmd(),
		newShowCmd(),
		newFlowsCmd(),
		newGraphCmd(),
		newHighlightCmd(),
		newVersionCmd(),
	)

	// Running the bare binary opens the explorer.
	rootCmd.Flags().AddFlagSet(exploreCmd.Flags())
	rootCmd.RunE = exploreCmd.RunE

	return rootCmd
}

// loadEnv builds the command environment from the config file and the
// persistent flags the user actually set.
func loadEnv(cmd *cobra.Command, overrides map[string]any) (*cli.Env, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	debug, _ := flags.GetBool("debug")

	if overrides == nil {
		overrides = map[string]any{}
	}
	if flags.Changed("dark") {
		dark, _ := flags.GetBool("dark")
		overrides["dark"] = dark
	}
	if flags.Changed("catalog") {
		path, _ := flags.GetString("catalog")
		overrides["catalog"] = path
	}

	return cli.NewEnv(configPath, overrides, debug)
}
