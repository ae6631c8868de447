package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/output"
	"taskcli/internal/service"
)

func init() {
	Register(&TasksCmd{})
	Register(&ShowCmd{})
}

// TasksCmd implements the tasks command.
type TasksCmd struct {
	done     bool
	open     bool
	category int64
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"list", "ls"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks" }
func (c *TasksCmd) Usage() string     { return "taskcli tasks [--done|--open] [--category <id>]" }
func (c *TasksCmd) NeedsAuth() bool   { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.open, "open", false, "")
	fs.Int64Var(&c.category, "category", 0, "")
	fs.Int64Var(&c.category, "c", 0, "")
}

func (c *TasksCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	if c.done && c.open {
		return usage(errOut, "cannot use both --done and --open")
	}
	if len(args) > 0 {
		return usage(errOut, "unexpected argument: %s", args[0])
	}

	tasks, err := a.Service.ListTasks(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	tasks = c.filter(tasks)

	if structured(a) {
		return render(a, out, errOut, tasks)
	}
	if len(tasks) == 0 {
		if !a.Config.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for _, t := range tasks {
		output.FormatTask(out, t)
	}
	return exitcode.Success
}

func (c *TasksCmd) filter(tasks []service.Task) []service.Task {
	kept := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.done && !t.Completed || c.open && t.Completed {
			continue
		}
		if c.category != 0 && (t.Category == nil || t.Category.ID != c.category) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"get"} }
func (c *ShowCmd) Synopsis() string  { return "Show one task" }
func (c *ShowCmd) Usage() string     { return "taskcli show <task-id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "task")
	if err != nil {
		return usage(errOut, "%v", err)
	}
	task, err := a.Service.GetTask(ctx, id)
	if err != nil {
		return fail(errOut, err)
	}
	if structured(a) {
		return render(a, out, errOut, task)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
