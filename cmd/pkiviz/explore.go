package main

import (
	"github.com/aretw0/pkiviz/internal/cli"
	"github.com/spf13/cobra"
)

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the PKI graph interactively",
		Long: `Opens an interactive session on the PKI graph. Select nodes to read their
description and commands, copy commands to the clipboard, switch to beginner
mode and auto-play a guided flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, nil)
			if err != nil {
				return err
			}
			beginner, _ := cmd.Flags().GetBool("beginner")
			flow, _ := cmd.Flags().GetString("flow")
			plain, _ := cmd.Flags().GetBool("plain")

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			err = cli.RunExplore(ctx, env, cli.ExploreOptions{
				In:       cmd.InOrStdin(),
				Out:      cmd.OutOrStdout(),
				Plain:    plain,
				Beginner: beginner || flow != "",
				Flow:     flow,
			})
			if sig := ctx.Signal(); sig != nil {
				env.Logger.Debug("Explorer interrupted", "signal", sig.String())
			}
			return err
		},
	}
	cmd.Flags().BoolP("beginner", "b", false, "Start in beginner mode")
	cmd.Flags().StringP("flow", "f", "", "Beginner flow to start on (implies --beginner)")
	cmd.Flags().Bool("plain", false, "Print plain Markdown without styling")
	return cmd
}
