package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turbolytics/curator/internal"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the curator version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), internal.Version)
		},
	}
}
