//go:build unix

package cli

import (
	"os"
	"os/signal"
	"syscall"
)

// signalFocus reports SIGCONT, which a job-control shell sends when the
// process is brought back to the foreground.
func signalFocus() (<-chan struct{}, func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGCONT)

	events := make(chan struct{})
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sig:
				select {
				case events <- struct{}{}:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	return events, func() {
		signal.Stop(sig)
		close(done)
	}
}
