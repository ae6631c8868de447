// Package main is the entry point for the taskcli CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/oauth2"

	"taskcli/internal/backend/rest"
	"taskcli/internal/cli"
	"taskcli/internal/commands"
	"taskcli/internal/config"
	"taskcli/internal/notify"
	"taskcli/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// One REST client per process, reading the token through the session store
	factory := func(cfg *config.Config, tokens oauth2.TokenSource, n notify.Notifier, log *slog.Logger) (service.Backend, error) {
		return rest.New(rest.Options{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			Tokens:    tokens,
			UserAgent: "taskcli/" + commands.Version,
			Notifier:  n,
			Logger:    log,
		}), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	dispatcher.SetInput(os.Stdin)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
