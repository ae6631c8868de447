package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/route"
	"taskcli/internal/service"
	"taskcli/internal/validate"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskcli register --password <password> --confirm <password> <username>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	if route.Guard(a.Session.IsAuthenticated(), route.Register) != route.Register {
		if !a.Config.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if len(args) == 0 {
		return usage(errOut, "username required")
	}

	creds := service.Credentials{Username: strings.TrimSpace(args[0]), Password: c.password}
	if err := validate.Registration(creds, c.confirm); err != nil {
		return fail(errOut, err)
	}

	if _, err := a.Session.Register(ctx, creds); err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) && svcErr.Status == http.StatusConflict {
			return usage(errOut, "username: this username is already taken")
		}
		return fail(errOut, err)
	}
	return exitcode.Success
}
