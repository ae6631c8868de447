package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcli/internal/app"
	"taskcli/internal/commands"
	"taskcli/internal/config"
	"taskcli/internal/exitcode"
	"taskcli/internal/output"
	"taskcli/internal/route"
)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  app.BackendFactory
	in       io.Reader
	focus    FocusSource
}

// NewDispatcher creates a new dispatcher with the given registry and backend factory.
func NewDispatcher(registry *commands.Registry, factory app.BackendFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		focus:    signalFocus,
	}
}

// SetInput sets the reader used for passwords and the interactive shell.
func (d *Dispatcher) SetInput(in io.Reader) {
	d.in = in
}

// SetFocusSource replaces the source of foreground events used by the shell.
func (d *Dispatcher) SetFocusSource(src FocusSource) {
	d.focus = src
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
	output    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
	fs.StringVar(&c.output, "output", output.Text, "")
	fs.StringVar(&c.output, "o", output.Text, "")
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> the dashboard, the screen a signed-in user lands on
	if len(args) == 0 {
		return d.dispatch(ctx, "dashboard", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	if cmdName == shellName {
		return d.runShell(ctx, args[1:], out, errOut)
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		d.unknownCommand(cmdName, errOut)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) unknownCommand(name string, errOut io.Writer) {
	if hints := d.registry.Suggest(name); len(hints) > 0 {
		fmt.Fprintf(errOut, "error: unknown command: %s (did you mean: %s?)\n", name, strings.Join(hints, ", "))
		return
	}
	fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	var common commonFlags
	fs := newFlagSet(cmd.Name())
	common.register(fs)
	cmd.RegisterFlags(fs)

	positional, code, ok := parseFlags(fs, args, errOut)
	if !ok {
		return code
	}

	a, code := d.newApp(common, out, errOut)
	if a == nil {
		return code
	}
	return runGuarded(ctx, a, cmd, positional, out, errOut)
}

// newApp loads config for one invocation. A nil App comes with the exit code.
func (d *Dispatcher) newApp(common commonFlags, out, errOut io.Writer) (*app.App, int) {
	if !output.ValidFormat(common.output) {
		fmt.Fprintf(errOut, "error: invalid output format: %s\n", common.output)
		return nil, exitcode.UserError
	}

	cfg, err := config.New(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug
	cfg.Output = common.output

	a, err := app.New(cfg, d.factory, d.in, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, exitcode.BackendError
	}
	return a, exitcode.Success
}

// runGuarded runs cmd after sending protected commands through the route
// guard.
func runGuarded(ctx context.Context, a *app.App, cmd commands.Command, args []string, out, errOut io.Writer) int {
	if cmd.NeedsAuth() {
		target := route.Guard(a.Session.IsAuthenticated(), route.Dashboard)
		a.Router.Navigate(target)
		if target != route.Dashboard {
			fmt.Fprintln(errOut, "error: not logged in (run: taskcli login)")
			return exitcode.AuthError
		}
	}
	return cmd.Run(ctx, a, args, out, errOut)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	return fs
}

// parseFlags parses args into fs and reports flag errors the way every
// command does. ok is false when the command must not run.
func parseFlags(fs *flag.FlagSet, args []string, errOut io.Writer) (positional []string, code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		switch {
		case strings.Contains(errStr, "flag needs an argument"):
			flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		case strings.HasPrefix(errStr, "flag provided but not defined:"):
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		default:
			fmt.Fprintf(errOut, "error: %s\n", errStr)
		}
		return nil, exitcode.UserError, false
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positional = fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return nil, exitcode.UserError, false
	}
	return positional, exitcode.Success, true
}
