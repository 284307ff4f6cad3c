package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownCommand is returned for input the shell does not understand.
var ErrUnknownCommand = errors.New("unknown command")

// errQuit is returned by the exit commands.
var errQuit = errors.New("quit")

// CommandFunc runs one shell command with its arguments.
type CommandFunc func(ctx context.Context, args []string) error

type command struct {
	usage string
	help  string
	run   CommandFunc
}

// Registry manages the shell commands.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	cmds    map[string]command
	aliases map[string]string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds:    make(map[string]command),
		aliases: make(map[string]string),
	}
}

// Register adds a command. usage is the synopsis shown in help, starting with
// the name. If a command with the same name exists, it is overwritten.
func (r *Registry) Register(name, usage, help string, fn CommandFunc, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cmds[name]; !ok {
		r.order = append(r.order, name)
	}
	r.cmds[name] = command{usage: usage, help: help, run: fn}
	for _, a := range aliases {
		r.aliases[a] = name
	}
}

// Execute looks up a command by name or alias, case-insensitively, and runs it.
func (r *Registry) Execute(ctx context.Context, name string, args []string) error {
	name = strings.ToLower(name)
	r.mu.RLock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.cmds[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q (try 'help')", ErrUnknownCommand, name)
	}
	return cmd.run(ctx, args)
}

// Help lists every command in registration order.
func (r *Registry) Help() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, name := range r.order {
		c := r.cmds[name]
		fmt.Fprintf(&sb, "\n  %-21s %s", c.usage, c.help)
	}
	return sb.String()
}
