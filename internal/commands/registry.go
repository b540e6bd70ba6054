// Package commands implements the line-oriented shell: a registry of named
// commands and the built-in commands operating on a session.
package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bethropolis/textforge/internal/logger"
)

var (
	// ErrUnknownCommand is returned for a command name that is not registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQuit is returned by the quit command to end the shell loop.
	ErrQuit = errors.New("quit")
)

// Func runs a command with its parsed arguments.
type Func func(args []string) error

// Command is a registered shell command.
type Command struct {
	Name  string
	Usage string
	Help  string
	// Raw commands receive the rest of the line as a single argument,
	// whitespace preserved, instead of split arguments.
	Raw bool
	Run Func
}

// Registry maps command names to commands.
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd. Names must be unique.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("command '%s' has no function", cmd.Name)
	}
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command '%s' already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	logger.DebugTagf("commands", "Registry: registered command '%s'", cmd.Name)
	return nil
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		cmds = append(cmds, c)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Execute parses line and runs the named command. Blank lines do nothing.
// The name ends at the first blank; a raw command gets everything after it.
func (r *Registry) Execute(line string) error {
	line = strings.TrimLeft(strings.TrimRight(line, "\r\n"), " \t")
	if line == "" {
		return nil
	}
	name, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, rest = line[:i], line[i+1:]
	}

	cmd, exists := r.commands[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	var args []string
	if cmd.Raw {
		if rest != "" {
			args = []string{unescape(rest)}
		}
	} else {
		var err error
		if args, err = splitArgs(rest); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	logger.DebugTagf("commands", "Registry: executing '%s' with %d arg(s)", name, len(args))
	return cmd.Run(args)
}

// splitArgs splits on whitespace; double-quoted arguments may contain
// spaces and Go escape sequences.
func splitArgs(s string) ([]string, error) {
	var args []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return args, nil
		}
		if s[0] == '"' {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("unterminated quoted argument")
			}
			arg, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("invalid quoted argument %s", quoted)
			}
			args = append(args, arg)
			s = s[len(quoted):]
			continue
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		args = append(args, s[:end])
		s = s[end:]
	}
}

// unescape turns the two-character sequences \n and \t into newline and
// tab, so a single shell line can carry multi-line text.
func unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`).Replace(s)
}
