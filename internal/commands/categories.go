package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/output"
	"taskcli/internal/service"
	"taskcli/internal/validate"
)

func init() {
	Register(&CategoriesCmd{})
	Register(&AddCatCmd{})
	Register(&EditCatCmd{})
	Register(&RmCatCmd{})
}

// CategoriesCmd implements the categories command.
type CategoriesCmd struct{}

func (c *CategoriesCmd) Name() string      { return "categories" }
func (c *CategoriesCmd) Aliases() []string { return []string{"cats"} }
func (c *CategoriesCmd) Synopsis() string  { return "List categories" }
func (c *CategoriesCmd) Usage() string     { return "taskcli categories" }
func (c *CategoriesCmd) NeedsAuth() bool   { return true }

func (c *CategoriesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoriesCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	cats, err := a.Service.ListCategories(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if structured(a) {
		return render(a, out, errOut, cats)
	}
	if len(cats) == 0 {
		if !a.Config.Quiet {
			fmt.Fprintln(out, "no categories found")
		}
		return exitcode.Success
	}
	for _, cat := range cats {
		output.FormatCategory(out, cat)
	}
	return exitcode.Success
}

// AddCatCmd implements the addcat command.
type AddCatCmd struct{}

func (c *AddCatCmd) Name() string      { return "addcat" }
func (c *AddCatCmd) Aliases() []string { return []string{"createcat"} }
func (c *AddCatCmd) Synopsis() string  { return "Create a category" }
func (c *AddCatCmd) Usage() string     { return "taskcli addcat <name...>" }
func (c *AddCatCmd) NeedsAuth() bool   { return true }

func (c *AddCatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCatCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	in := service.CategoryInput{Name: strings.TrimSpace(strings.Join(args, " "))}
	if err := validate.Category(in); err != nil {
		return fail(errOut, err)
	}
	if _, err := a.Service.CreateCategory(ctx, in); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}

// EditCatCmd implements the editcat command.
type EditCatCmd struct{}

func (c *EditCatCmd) Name() string      { return "editcat" }
func (c *EditCatCmd) Aliases() []string { return []string{"renamecat"} }
func (c *EditCatCmd) Synopsis() string  { return "Rename a category" }
func (c *EditCatCmd) Usage() string     { return "taskcli editcat <category-id> <name...>" }
func (c *EditCatCmd) NeedsAuth() bool   { return true }

func (c *EditCatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCatCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "category")
	if err != nil {
		return usage(errOut, "%v", err)
	}
	in := service.CategoryInput{Name: strings.TrimSpace(strings.Join(args[1:], " "))}
	if err := validate.Category(in); err != nil {
		return fail(errOut, err)
	}
	if _, err := a.Service.UpdateCategory(ctx, id, in); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}

// RmCatCmd implements the rmcat command.
type RmCatCmd struct{}

func (c *RmCatCmd) Name() string      { return "rmcat" }
func (c *RmCatCmd) Aliases() []string { return []string{"deletecat"} }
func (c *RmCatCmd) Synopsis() string  { return "Delete a category" }
func (c *RmCatCmd) Usage() string     { return "taskcli rmcat <category-id>" }
func (c *RmCatCmd) NeedsAuth() bool   { return true }

func (c *RmCatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCatCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "category")
	if err != nil {
		return usage(errOut, "%v", err)
	}
	if err := a.Service.DeleteCategory(ctx, id); err != nil {
		return fail(errOut, err)
	}
	return ok(a, out)
}
