package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slashdevops/sysuuid/internal/version"
)

func newVersionCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skip config loading so version works with a broken config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			if long {
				fmt.Fprint(cmd.OutOrStdout(), version.Long(applicationName))
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", applicationName, version.Short())
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Show detailed version information")

	return cmd
}
