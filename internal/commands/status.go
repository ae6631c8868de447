package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
)

func init() {
	Register(&StatusCmd{})
	Register(&ValidateCmd{})
}

// StatusCmd implements the status command. It reports local state only
// and never calls the backend.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show the session state" }
func (c *StatusCmd) Usage() string     { return "taskcli status" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

type statusReport struct {
	State     string     `json:"state" yaml:"state"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

func (c *StatusCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	report := statusReport{State: a.Session.State().String()}
	if info, err := a.Session.Inspect(); err == nil {
		report.Subject = info.Subject
		if !info.IssuedAt.IsZero() {
			report.IssuedAt = &info.IssuedAt
		}
		if !info.ExpiresAt.IsZero() {
			report.ExpiresAt = &info.ExpiresAt
		}
	} else {
		a.Log.Debug("token claims unavailable", "error", err)
	}

	if structured(a) {
		return render(a, out, errOut, report)
	}

	fmt.Fprintf(out, "state:   %s\n", report.State)
	if report.Subject != "" {
		fmt.Fprintf(out, "user:    %s\n", report.Subject)
	}
	if report.ExpiresAt != nil {
		fmt.Fprintf(out, "expires: %s\n", report.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return exitcode.Success
}

// ValidateCmd implements the validate command: the focus check on demand.
type ValidateCmd struct{}

func (c *ValidateCmd) Name() string      { return "validate" }
func (c *ValidateCmd) Aliases() []string { return nil }
func (c *ValidateCmd) Synopsis() string  { return "Check the stored token with the backend" }
func (c *ValidateCmd) Usage() string     { return "taskcli validate" }
func (c *ValidateCmd) NeedsAuth() bool   { return true }

func (c *ValidateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ValidateCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	if err := a.Session.Validate(ctx); err != nil {
		code := fail(errOut, err)
		if code == exitcode.UserError {
			// The session is gone whatever the backend said.
			code = exitcode.AuthError
		}
		return code
	}
	if !a.Config.Quiet {
		fmt.Fprintln(out, "session valid")
	}
	return exitcode.Success
}
