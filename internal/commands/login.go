package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/route"
	"taskcli/internal/service"
	"taskcli/internal/validate"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the session token" }
func (c *LoginCmd) Usage() string     { return "taskcli login [--password <password>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	// The login screen is not reachable with a live session.
	if route.Guard(a.Session.IsAuthenticated(), route.Login) != route.Login {
		if !a.Config.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if len(args) == 0 {
		return usage(errOut, "username required")
	}

	password := c.password
	if password == "" {
		var err error
		if password, err = readSecret(a.In, errOut, "Password: "); err != nil {
			return usage(errOut, "password required")
		}
	}

	creds := service.Credentials{Username: strings.TrimSpace(args[0]), Password: password}
	if err := validate.Login(creds); err != nil {
		return fail(errOut, err)
	}

	if err := a.Session.Login(ctx, creds); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}

// readSecret reads one line from in. The prompt goes to errOut so that it
// never mixes with command output.
func readSecret(in io.Reader, errOut io.Writer, prompt string) (string, error) {
	if in == nil {
		return "", io.EOF
	}
	fmt.Fprint(errOut, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err == nil {
			err = io.EOF
		}
		return "", err
	}
	return line, nil
}
