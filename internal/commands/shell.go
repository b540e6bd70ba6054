package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bethropolis/textforge/internal/coordinator"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/session"
	"github.com/bethropolis/textforge/internal/transform"
)

const prompt = "textforge> "

// Shell runs commands against a session and prints results to out.
type Shell struct {
	session  *session.Session
	registry *Registry
	out      io.Writer
	offload  bool
	ctx      context.Context
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithOffload runs apply and replace on the session's worker.
func WithOffload(on bool) ShellOption {
	return func(sh *Shell) {
		sh.offload = on
	}
}

// NewShell creates a shell with the built-in commands registered.
func NewShell(s *session.Session, out io.Writer, opts ...ShellOption) *Shell {
	sh := &Shell{
		session:  s,
		registry: NewRegistry(),
		out:      out,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(sh)
	}
	sh.registerBuiltins()
	return sh
}

// Registry exposes the shell's command registry for extra commands.
func (sh *Shell) Registry() *Registry {
	return sh.registry
}

// Execute runs one command line.
func (sh *Shell) Execute(ctx context.Context, line string) error {
	sh.ctx = ctx
	return sh.registry.Execute(line)
}

// Run reads commands from in until EOF, quit or ctx ends. Command errors
// are printed and do not stop the loop. The prompt is printed only when
// interactive is true.
func (sh *Shell) Run(ctx context.Context, in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for {
		if interactive {
			fmt.Fprint(sh.out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := sh.Execute(ctx, scanner.Text())
		switch {
		case err == nil:
		case errors.Is(err, ErrQuit):
			return nil
		default:
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
	if interactive {
		fmt.Fprintln(sh.out)
	}
	return scanner.Err()
}

func (sh *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(sh.out, format+"\n", args...)
}

func (sh *Shell) registerBuiltins() {
	builtins := []Command{
		{Name: "show", Usage: "show", Help: "Print the document", Run: sh.show},
		{Name: "set", Usage: "set TEXT", Help: `Replace the document (\n for newlines)`, Raw: true, Run: sh.set},
		{Name: "append", Usage: "append TEXT", Help: "Append a line to the document", Raw: true, Run: sh.appendLine},
		{Name: "apply", Usage: "apply ACTION", Help: "Run a transformation (see 'help actions')", Run: sh.apply},
		{Name: "replace", Usage: "replace FIND [REPLACE]", Help: "Replace all occurrences; quote arguments with spaces", Run: sh.replace},
		{Name: "undo", Usage: "undo", Help: "Undo the last change", Run: sh.undo},
		{Name: "redo", Usage: "redo", Help: "Redo the last undone change", Run: sh.redo},
		{Name: "clear", Usage: "clear", Help: "Empty the document", Run: sh.clear},
		{Name: "import", Usage: "import FILE", Help: "Load a text file, starting a fresh history", Run: sh.importFile},
		{Name: "export", Usage: "export [DIR]", Help: "Write the document to " + session.ExportFileName, Run: sh.export},
		{Name: "copy", Usage: "copy", Help: "Copy the document to the clipboard", Run: sh.copy},
		{Name: "stats", Usage: "stats", Help: "Show line, character and word counts", Run: sh.stats},
		{Name: "help", Usage: "help [actions]", Help: "List commands or actions", Run: sh.help},
		{Name: "quit", Usage: "quit", Help: "Leave the shell", Run: func([]string) error { return ErrQuit }},
	}
	for _, cmd := range builtins {
		if err := sh.registry.Register(cmd); err != nil {
			logger.Warnf("Shell: %v", err)
		}
	}
}

func (sh *Shell) show([]string) error {
	text := sh.session.Text()
	if text == "" {
		sh.printf("(empty)")
		return nil
	}
	sh.printf("%s", text)
	return nil
}

func (sh *Shell) set(args []string) error {
	text := ""
	if len(args) > 0 {
		text = args[0]
	}
	if !sh.session.Edit(text) {
		sh.printf("unchanged")
	}
	return nil
}

func (sh *Shell) appendLine(args []string) error {
	line := ""
	if len(args) > 0 {
		line = args[0]
	}
	text := sh.session.Text()
	if text != "" {
		text += "\n"
	}
	sh.session.Edit(text + line)
	return nil
}

func (sh *Shell) apply(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: apply ACTION")
	}
	action, err := transform.ParseAction(args[0])
	if err != nil {
		return err
	}
	if action == transform.ActionFindReplace {
		return fmt.Errorf("use 'replace FIND [REPLACE]' for %s", action)
	}
	return sh.run(action, transform.Params{})
}

func (sh *Shell) replace(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: replace FIND [REPLACE]")
	}
	params := transform.Params{Find: args[0]}
	if len(args) == 2 {
		params.Replace = args[1]
	}
	return sh.run(transform.ActionFindReplace, params)
}

// run executes action inline or on the worker and reports the outcome.
func (sh *Shell) run(action transform.Action, params transform.Params) error {
	var (
		res coordinator.Result
		err error
	)
	if sh.offload {
		res, err = sh.runOffloaded(action, params)
	} else {
		res, err = sh.session.Apply(action, params)
	}
	if err != nil {
		return err
	}

	if res.Changed {
		sh.printf("%s: done in %s", action.Label(), formatElapsed(res.Elapsed))
	} else {
		sh.printf("%s: no change", action.Label())
	}
	return nil
}

func (sh *Shell) runOffloaded(action transform.Action, params transform.Params) (coordinator.Result, error) {
	type outcome struct {
		res coordinator.Result
		err error
	}
	ch := make(chan outcome, 1)
	err := sh.session.ApplyAsync(sh.ctx, action, params, func(res coordinator.Result, err error) {
		ch <- outcome{res, err}
	})
	if err != nil {
		return coordinator.Result{}, err
	}
	select {
	case o := <-ch:
		return o.res, o.err
	case <-sh.ctx.Done():
		return coordinator.Result{}, sh.ctx.Err()
	}
}

func (sh *Shell) undo([]string) error {
	if !sh.session.Undo() {
		sh.printf("nothing to undo")
	}
	return nil
}

func (sh *Shell) redo([]string) error {
	if !sh.session.Redo() {
		sh.printf("nothing to redo")
	}
	return nil
}

func (sh *Shell) clear([]string) error {
	sh.session.Clear()
	return nil
}

func (sh *Shell) importFile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: import FILE")
	}
	if err := sh.session.ImportFile(sh.ctx, args[0]); err != nil {
		return err
	}
	st := sh.session.Stats()
	sh.printf("imported %d lines", st.Lines)
	return nil
}

func (sh *Shell) export(args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	path, err := sh.session.ExportFile(dir)
	if err != nil {
		return err
	}
	sh.printf("exported to %s", path)
	return nil
}

func (sh *Shell) copy([]string) error {
	if err := sh.session.Copy(); err != nil {
		return err
	}
	sh.printf("copied to clipboard")
	return nil
}

func (sh *Shell) stats([]string) error {
	st := sh.session.Stats()
	sh.printf("Lines: %d (empty: %d), Chars: %d, Words: %d", st.Lines, st.EmptyLines, st.Chars, st.Words)
	if d := sh.session.LastElapsed(); d > 0 {
		sh.printf("Last transform: %s", formatElapsed(d))
	}
	return nil
}

func (sh *Shell) help(args []string) error {
	if len(args) > 0 && args[0] == "actions" {
		return WriteActions(sh.out)
	}
	for _, cmd := range sh.registry.Commands() {
		sh.printf("  %-24s %s", cmd.Usage, cmd.Help)
	}
	return nil
}

// WriteActions lists the actions grouped by category.
func WriteActions(w io.Writer) error {
	var b strings.Builder
	group := transform.Group(-1)
	for _, a := range transform.All() {
		if a.Group() != group {
			group = a.Group()
			fmt.Fprintf(&b, "%s:\n", group)
		}
		fmt.Fprintf(&b, "  %-20s %s\n", a, a.Label())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
