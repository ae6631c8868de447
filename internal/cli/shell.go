package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
)

const shellName = "shell"

// FocusSource starts delivering an event each time the client regains the
// foreground. The returned stop function releases it.
type FocusSource func() (events <-chan struct{}, stop func())

// runShell reads commands line by line against one App, so session state
// carries over between lines. Focus events re-validate an authenticated
// session.
func (d *Dispatcher) runShell(ctx context.Context, args []string, out, errOut io.Writer) int {
	var common commonFlags
	fs := newFlagSet(shellName)
	common.register(fs)
	positional, code, ok := parseFlags(fs, args, errOut)
	if !ok {
		return code
	}
	if len(positional) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", positional[0])
		return exitcode.UserError
	}
	if d.in == nil {
		fmt.Fprintln(errOut, "error: shell needs an input")
		return exitcode.UserError
	}

	a, code := d.newApp(common, out, errOut)
	if a == nil {
		return code
	}

	var focus <-chan struct{}
	if d.focus != nil {
		events, stop := d.focus()
		defer stop()
		focus = events
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(d.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	a.In = &lineReader{ctx: ctx, lines: lines}

	last := exitcode.Success
	for {
		prompt(a, out)
		select {
		case <-ctx.Done():
			return d.closeShell(a, last)
		case <-focus:
			if err := a.Session.OnFocus(ctx); err != nil {
				a.Log.Debug("focus validation failed", "error", err)
			}
		case line, more := <-lines:
			if !more {
				return d.closeShell(a, last)
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "exit", "quit":
				return d.closeShell(a, last)
			case shellName:
				fmt.Fprintln(errOut, "error: already in a shell")
				last = exitcode.UserError
				continue
			}
			last = d.shellCommand(ctx, a, fields, out, errOut)
		}
	}
}

func (d *Dispatcher) closeShell(a *app.App, last int) int {
	a.Log.Debug("shell closed", "screens", a.Router.History(), "exit", last)
	return last
}

// lineReader hands shell input to a running command, so a command that
// prompts reads the next line instead of the shell treating it as a command.
type lineReader struct {
	ctx   context.Context
	lines <-chan string
	buf   []byte
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		select {
		case <-r.ctx.Done():
			return 0, io.EOF
		case line, more := <-r.lines:
			if !more {
				return 0, io.EOF
			}
			r.buf = append([]byte(line), '\n')
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func prompt(a *app.App, out io.Writer) {
	if !a.Config.Quiet {
		fmt.Fprintf(out, "taskcli:%s> ", a.Router.Current())
	}
}

// shellCommand runs one shell line. Only command flags apply; the common
// flags were fixed when the shell started.
func (d *Dispatcher) shellCommand(ctx context.Context, a *app.App, fields []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(fields[0])
	if !ok {
		d.unknownCommand(fields[0], errOut)
		return exitcode.UserError
	}

	fs := newFlagSet(cmd.Name())
	cmd.RegisterFlags(fs)
	positional, code, ok := parseFlags(fs, fields[1:], errOut)
	if !ok {
		return code
	}
	return runGuarded(ctx, a, cmd, positional, out, errOut)
}
