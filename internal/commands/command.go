// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskcli/internal/app"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command opens a protected screen.
	// The dispatcher routes such commands through the guard first.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	// It is called before every parse, so it must reset flag state.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// a is always provided (config, session, service).
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int
}
