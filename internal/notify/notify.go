// Package notify delivers transient user-facing notifications.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(level Level, msg string)
}

// Console writes info and success messages to Out and warnings and errors
// to Err. Quiet suppresses info and success.
type Console struct {
	mu    sync.Mutex
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

// NewConsole returns a Console notifier.
func NewConsole(out, errOut io.Writer, quiet bool) *Console {
	return &Console{Out: out, Err: errOut, Quiet: quiet}
}

// Notify implements Notifier.
func (c *Console) Notify(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch level {
	case Warning, Error:
		fmt.Fprintf(c.Err, "%s: %s\n", level, msg)
	default:
		if !c.Quiet {
			fmt.Fprintln(c.Out, msg)
		}
	}
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}
