package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/bethropolis/textforge/internal/config"
	"github.com/bethropolis/textforge/internal/coordinator"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/session"
	"github.com/bethropolis/textforge/internal/transform"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply ACTION [FILE]",
	Short: "Transform FILE (or standard input) and write the result to standard output",
	Example: `  textforge apply sort_asc names.txt
  cat list.txt | textforge apply unique
  textforge apply find_replace --find foo --replace bar notes.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("find", "", "Text to find (find_replace; empty leaves the text unchanged)")
	applyCmd.Flags().String("replace", "", "Replacement text (find_replace)")
	applyCmd.Flags().Bool("offload", false, "Run the transform on the worker instead of inline")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	action, err := transform.ParseAction(args[0])
	if err != nil {
		return err
	}
	find, _ := cmd.Flags().GetString("find")
	replace, _ := cmd.Flags().GetString("replace")
	offload, _ := cmd.Flags().GetBool("offload")

	text, err := readInput(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}

	locale, err := transform.ParseLocale(cfg.Engine.Locale)
	if err != nil {
		return err
	}
	coord := coordinator.New(coordinator.WithEngine(transform.NewEngine(transform.WithLocale(locale))))
	defer coord.Close()

	req := coordinator.Request{Action: action, Text: text, Params: transform.Params{Find: find, Replace: replace}}
	var res coordinator.Result
	if offload {
		res, err = submitAndWait(cmd.Context(), coord, req)
	} else {
		res, err = coord.Run(req)
	}
	if err != nil {
		return err
	}

	logger.Infof("apply: %v finished in %v (changed: %v)", action, res.Elapsed, res.Changed)
	_, err = io.WriteString(cmd.OutOrStdout(), res.Text)
	return err
}

func readInput(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) > 0 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", session.ErrInvalidUTF8
	}
	return string(data), nil
}

func submitAndWait(ctx context.Context, coord *coordinator.Coordinator, req coordinator.Request) (coordinator.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	type outcome struct {
		res coordinator.Result
		err error
	}
	ch := make(chan outcome, 1)
	err := coord.Submit(ctx, req, func(res coordinator.Result, err error) {
		ch <- outcome{res, err}
	})
	if err != nil {
		return coordinator.Result{}, err
	}
	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return coordinator.Result{}, ctx.Err()
	}
}
