package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/output"
	"taskcli/internal/service"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd implements the dashboard command, the default when taskcli
// is run without arguments.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return nil }
func (c *DashboardCmd) Synopsis() string  { return "Show the user, open tasks and categories" }
func (c *DashboardCmd) Usage() string     { return "taskcli dashboard" }
func (c *DashboardCmd) NeedsAuth() bool   { return true }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {}

// Dashboard is everything the dashboard shows.
type Dashboard struct {
	User       service.User       `json:"user" yaml:"user"`
	Tasks      []service.Task     `json:"tasks" yaml:"tasks"`
	Categories []service.Category `json:"categories" yaml:"categories"`
}

// LoadDashboard issues the three dashboard fetches concurrently and waits
// for all of them to finish. The first error is returned.
func LoadDashboard(ctx context.Context, svc service.Service) (Dashboard, error) {
	var d Dashboard
	var g errgroup.Group
	g.Go(func() error {
		u, err := svc.Me(ctx)
		d.User = u
		return err
	})
	g.Go(func() error {
		tasks, err := svc.ListTasks(ctx)
		d.Tasks = tasks
		return err
	})
	g.Go(func() error {
		cats, err := svc.ListCategories(ctx)
		d.Categories = cats
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (c *DashboardCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	d, err := LoadDashboard(ctx, a.Service)
	if err != nil {
		return fail(errOut, err)
	}
	if structured(a) {
		return render(a, out, errOut, d)
	}

	fmt.Fprintf(out, "Signed in as %s\n", d.User.Username)

	output.FormatSectionHeader(out, "Tasks")
	if len(d.Tasks) == 0 {
		fmt.Fprintln(out, "no tasks found")
	}
	for _, t := range d.Tasks {
		output.FormatTask(out, t)
	}

	output.FormatSectionHeader(out, "Categories")
	if len(d.Categories) == 0 {
		fmt.Fprintln(out, "no categories found")
	}
	for _, cat := range d.Categories {
		output.FormatCategory(out, cat)
	}
	return exitcode.Success
}
