package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return []string{"me"} }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskcli whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	u, err := a.Service.Me(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if structured(a) {
		return render(a, out, errOut, u)
	}
	output.FormatUser(out, u)
	return exitcode.Success
}

// structured reports whether listings should be rendered as json or yaml.
func structured(a *app.App) bool {
	return a.Config.Output != "" && a.Config.Output != output.Text
}

func render(a *app.App, out, errOut io.Writer, v any) int {
	if err := output.Structured(out, a.Config.Output, v); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
