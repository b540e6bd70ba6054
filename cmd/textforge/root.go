package main

import (
	"fmt"
	"os"

	"github.com/bethropolis/textforge/internal/config"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flags    config.Flags
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "textforge applies line and text transformations with undo history",
	Long: `textforge transforms text: case changes, symbol wrapping, cleaning,
find & replace, locale-aware sorting and de-duplication. Use 'apply' for one-off
transforms in pipelines or 'shell' for an interactive session with undo/redo
and autosave.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = closeLog()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags.DefineFlags(rootCmd.PersistentFlags())
}

// setup loads the configuration and initializes logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(flags.ConfigFilePath, &flags)
	if err != nil {
		return err
	}

	output, closeFn, err := logger.OpenOutput(cfg.Logger.LogFilePath)
	if err != nil {
		return err
	}
	closeLog = closeFn
	logger.Init(cfg.Logger, output)
	config.ReportWarnings()

	logger.DebugTagf("config", "Running '%s' (store %s, worker %s, history %d)",
		cmd.Name(), cfg.Store.Backend, cfg.Engine.Worker, cfg.History.Capacity)
	return nil
}
