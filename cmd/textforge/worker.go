package main

import (
	"os"

	"github.com/bethropolis/textforge/internal/config"
	"github.com/bethropolis/textforge/internal/transform"
	"github.com/bethropolis/textforge/internal/worker"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Serve transform requests as line-delimited JSON on standard input/output",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		locale, err := transform.ParseLocale(config.Get().Engine.Locale)
		if err != nil {
			return err
		}
		engine := transform.NewEngine(transform.WithLocale(locale))
		return worker.Serve(cmd.Context(), os.Stdin, os.Stdout, engine.Transform)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
