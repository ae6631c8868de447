//go:build !unix

package cli

// signalFocus never fires on platforms without job control signals.
func signalFocus() (<-chan struct{}, func()) {
	return nil, func() {}
}
