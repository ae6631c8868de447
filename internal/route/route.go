// Package route names the client's screens, gates protected ones, and
// records navigation.
package route

import (
	"log/slog"
	"sync"
)

// Screen is a destination the user can be sent to.
type Screen string

const (
	Home      Screen = "home"
	Login     Screen = "login"
	Register  Screen = "register"
	Dashboard Screen = "dashboard"
)

// Protected reports whether s requires an authenticated session.
func Protected(s Screen) bool {
	return s == Dashboard
}

// Guard decides which screen to show when requested is asked for.
// Anonymous users asking for a protected screen are sent Home; signed-in
// users asking for Login or Register go to the Dashboard instead.
func Guard(authenticated bool, requested Screen) Screen {
	switch {
	case !authenticated && Protected(requested):
		return Home
	case authenticated && (requested == Login || requested == Register):
		return Dashboard
	default:
		return requested
	}
}

// Navigator moves the user to a screen.
type Navigator interface {
	Navigate(to Screen)
}

// Router is a Navigator that remembers where the user is.
type Router struct {
	mu      sync.Mutex
	current Screen
	history []Screen
	log     *slog.Logger
}

// NewRouter returns a Router positioned at start.
func NewRouter(start Screen, log *slog.Logger) *Router {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Router{current: start, log: log}
}

// Navigate implements Navigator.
func (r *Router) Navigate(to Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Debug("navigate", "from", string(r.current), "to", string(to))
	r.current = to
	r.history = append(r.history, to)
}

// Current returns the screen last navigated to.
func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every navigation since the router was created.
func (r *Router) History() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Screen, len(r.history))
	copy(out, r.history)
	return out
}
