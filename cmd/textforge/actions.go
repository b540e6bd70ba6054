package main

import (
	"github.com/bethropolis/textforge/internal/commands"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the available transformations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.WriteActions(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
