package commands

import (
	"context"
	"flag"
	"io"

	"taskcli/internal/app"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
	Register(&RmCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskcli done <task-id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	return toggle(ctx, a, args, true, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct{}

func (c *UndoneCmd) Name() string      { return "undone" }
func (c *UndoneCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string  { return "Mark a task open again" }
func (c *UndoneCmd) Usage() string     { return "taskcli undone <task-id>" }
func (c *UndoneCmd) NeedsAuth() bool   { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoneCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	return toggle(ctx, a, args, false, out, errOut)
}

func toggle(ctx context.Context, a *app.App, args []string, completed bool, out, errOut io.Writer) int {
	id, err := ParseID(args, "task")
	if err != nil {
		return usage(errOut, "%v", err)
	}
	if _, err := a.Service.ToggleTask(ctx, id, completed); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskcli rm <task-id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "task")
	if err != nil {
		return usage(errOut, "%v", err)
	}
	if err := a.Service.DeleteTask(ctx, id); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}
