package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bethropolis/textforge/internal/commands"
	"github.com/bethropolis/textforge/internal/config"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/metrics"
	"github.com/bethropolis/textforge/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit a persisted document interactively",
	Long: `Starts a line-oriented session on the document saved in the configured
store. Changes are autosaved; type 'help' for commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().Bool("offload", false, "Run transforms on the worker (overrides [engine] offload)")
}

func runShell(cmd *cobra.Command, args []string) (err error) {
	cfg := config.Get()
	offload := cfg.Engine.Offload
	if cmd.Flags().Changed("offload") {
		offload, _ = cmd.Flags().GetBool("offload")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Errorf("Metrics: %v", err)
			}
		}()
	}

	s, err := session.New(cfg, session.WithObserver(m))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// The scanner cannot be interrupted, so a signal saves and exits directly.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			logger.Infof("Shell: interrupted, saving document")
			if err := s.Close(); err != nil {
				logger.Errorf("Shell: %v", err)
			}
			os.Exit(130)
		case <-finished:
		}
	}()

	if err := s.Open(ctx); err != nil {
		// Start empty if the saved document cannot be read.
		logger.Errorf("Shell: %v", err)
	}

	sh := commands.NewShell(s, cmd.OutOrStdout(), commands.WithOffload(offload))
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return sh.Run(ctx, cmd.InOrStdin(), interactive)
}
