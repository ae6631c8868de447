// Package exitcode defines exit codes for the CLI.
package exitcode

// Process exit codes. Backend failures map onto them by error kind.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad input or a rejected request
	// (bad args, validation, not found, forbidden, conflict).
	UserError = 1

	// AuthError indicates a missing or rejected session (not logged in, 401).
	AuthError = 2

	// BackendError indicates the backend could not answer
	// (server error, timeout, network failure).
	BackendError = 3
)
