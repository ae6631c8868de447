package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskcli/internal/app"
	"taskcli/internal/service"
	"taskcli/internal/validate"
)

func init() {
	Register(&AddCmd{})
	Register(&EditCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	category    int64
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskcli add --category <id> [--description <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Int64Var(&c.category, "category", 0, "")
	fs.Int64Var(&c.category, "c", 0, "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	in := service.TaskInput{
		Title:       strings.TrimSpace(strings.Join(args, " ")),
		Description: c.description,
		CategoryID:  c.category,
	}
	if err := validate.Task(in); err != nil {
		return fail(errOut, err)
	}
	if _, err := a.Service.CreateTask(ctx, in); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}

// EditCmd implements the edit command. Fields not given on the command
// line keep their current values.
type EditCmd struct {
	title       optString
	description optString
	category    optString
	completed   optBool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "taskcli edit <task-id> [--title <t>] [--description <d>] [--category <id>] [--completed=<bool>]"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.category, c.completed = optString{}, optString{}, optString{}, optBool{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.category, "category", "")
	fs.Var(&c.completed, "completed", "")
}

func (c *EditCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "task")
	if err != nil {
		return usage(errOut, "%v", err)
	}
	if !c.title.set && !c.description.set && !c.category.set && !c.completed.set {
		return usage(errOut, "nothing to change")
	}

	var categoryID int64
	if c.category.set {
		if categoryID, err = ParseID([]string{c.category.val}, "category"); err != nil {
			return usage(errOut, "%v", err)
		}
	}

	current, err := a.Service.GetTask(ctx, id)
	if err != nil {
		return fail(errOut, err)
	}

	in := service.TaskInput{
		Title:       current.Title,
		Description: current.Description,
		Completed:   current.Completed,
	}
	if current.Category != nil {
		in.CategoryID = current.Category.ID
	}
	if c.title.set {
		in.Title = strings.TrimSpace(c.title.val)
	}
	if c.description.set {
		in.Description = c.description.val
	}
	if c.category.set {
		in.CategoryID = categoryID
	}
	if c.completed.set {
		in.Completed = c.completed.val
	}

	if err := validate.Task(in); err != nil {
		return fail(errOut, err)
	}
	if _, err := a.Service.UpdateTask(ctx, id, in); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}
