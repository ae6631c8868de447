// Package app wires one client process together: config, token store,
// notifier, router, backend and session.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/oauth2"

	"taskcli/internal/config"
	"taskcli/internal/notify"
	"taskcli/internal/route"
	"taskcli/internal/service"
	"taskcli/internal/session"
)

// BackendFactory creates the backend for an App. tokens is the session's
// token accessor; the backend must read the bearer token through it.
type BackendFactory func(cfg *config.Config, tokens oauth2.TokenSource, n notify.Notifier, log *slog.Logger) (service.Backend, error)

// unauthorizedSource is implemented by backends that report 401s.
type unauthorizedSource interface {
	OnUnauthorized(fn func())
}

// App is the context handed to every command.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Notifier notify.Notifier
	Router   *route.Router
	Store    *session.Store
	Session  *session.Session
	Service  service.Service

	// In supplies interactive input such as passwords.
	In io.Reader
}

// New builds an App. The session is restored from the token file, and
// subscribed to the backend's 401 events when the backend reports them.
func New(cfg *config.Config, factory BackendFactory, in io.Reader, out, errOut io.Writer) (*App, error) {
	log := NewLogger(errOut, cfg.Debug)
	n := notify.NewConsole(out, errOut, cfg.Quiet)

	store, err := session.OpenStore(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	backend, err := factory(cfg, store, n, log)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	router := route.NewRouter(route.Home, log)
	sess := session.New(store, backend, session.Options{
		Notifier:  n,
		Navigator: router,
		Logger:    log,
	})
	sess.OnChange(func(st session.State) {
		log.Debug("session changed", "state", st.String(), "screen", router.Current())
	})
	if src, ok := backend.(unauthorizedSource); ok {
		src.OnUnauthorized(sess.Invalidate)
	}

	log.Debug("session restored", "state", sess.State().String(), "config_dir", cfg.Dir)

	return &App{
		Config:   cfg,
		Log:      log,
		Notifier: n,
		Router:   router,
		Store:    store,
		Session:  sess,
		Service:  backend,
		In:       in,
	}, nil
}

// NewLogger returns a text logger on w when debug is set, otherwise a
// logger that drops everything.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
