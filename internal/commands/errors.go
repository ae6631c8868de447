package commands

import (
	"errors"
	"fmt"
	"io"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
	"taskcli/internal/service"
	"taskcli/internal/session"
	"taskcli/internal/validate"
)

// fail maps err to an exit code. Backend errors were already reported by
// the HTTP layer's notification, so only local errors are printed here.
func fail(errOut io.Writer, err error) int {
	var fields validate.Errors
	if errors.As(err, &fields) {
		for _, fe := range fields {
			fmt.Fprintf(errOut, "error: %s\n", fe)
		}
		return exitcode.UserError
	}
	if errors.Is(err, session.ErrNotLoggedIn) {
		fmt.Fprintln(errOut, "error: not logged in (run: taskcli login)")
		return exitcode.AuthError
	}

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	switch svcErr.Kind {
	case service.KindValidation, service.KindForbidden, service.KindNotFound, service.KindRequest:
		return exitcode.UserError
	case service.KindUnauthorized:
		return exitcode.AuthError
	default:
		return exitcode.BackendError
	}
}

// usage prints msg and returns the user error code.
func usage(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// ok acknowledges a mutation unless quiet.
func ok(a *app.App, out io.Writer) int {
	if !a.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
