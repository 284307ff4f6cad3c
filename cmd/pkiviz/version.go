package main

import (
	"fmt"

	"github.com/aretw0/pkiviz"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pkiviz",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pkiviz version %s\n", pkiviz.Version)
		},
	}
}
