package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskcli/internal/notify"
	"taskcli/internal/route"
	"taskcli/internal/service"
)

// State is the signed-in state of the client.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// ErrNotLoggedIn is returned by operations that need a token when none is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Notification texts.
const (
	msgLoginOK      = "login successful"
	msgLoginFailed  = "login failed, check your credentials"
	msgLoggedOut    = "you have been logged out"
	msgExpired      = "your session has expired, please log in again"
	msgRegisteredOK = "registration successful, please log in"
)

// Options configures a Session. Nil fields get no-op defaults.
type Options struct {
	Notifier  notify.Notifier
	Navigator route.Navigator
	Logger    *slog.Logger
}

// Session is the client's authentication context: two states, transitions
// driven by login, logout, 401 responses and failed validation.
// It is safe for concurrent use.
type Session struct {
	store  *Store
	auth   service.Auth
	notify notify.Notifier
	nav    route.Navigator
	log    *slog.Logger

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

// New restores the session from store. A stored token means Authenticated;
// it is not checked against the backend until the next validation.
func New(store *Store, auth service.Auth, opts Options) *Session {
	s := &Session{
		store:  store,
		auth:   auth,
		notify: opts.Notifier,
		nav:    opts.Navigator,
		log:    opts.Logger,
	}
	if s.notify == nil {
		s.notify = notify.Discard
	}
	if s.nav == nil {
		s.nav = route.NewRouter(route.Home, nil)
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if _, ok := store.Get(); ok {
		s.state = Authenticated
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Token returns the current token.
func (s *Session) Token() (string, bool) {
	return s.store.Get()
}

// OnChange registers fn to be called after every state transition.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// transition moves to next with the store already updated. Listeners run
// only when the state actually changed.
func (s *Session) transition(next State) {
	s.mu.Lock()
	changed := s.state != next
	s.state = next
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	if !changed {
		return
	}
	s.log.Debug("session state changed", "state", next.String())
	for _, fn := range listeners {
		fn(next)
	}
}

// Login exchanges creds for a token, persists it and opens the dashboard.
// On failure the session stays as it was and the error is returned.
func (s *Session) Login(ctx context.Context, creds service.Credentials) error {
	res, err := s.auth.Login(ctx, creds)
	if err == nil && res.Token == "" {
		err = &service.Error{Kind: service.KindRequest, Message: "login response carried no token"}
	}
	if err == nil {
		err = s.store.Set(res.Token)
	}
	if err != nil {
		s.log.Debug("login failed", "username", creds.Username, "error", err)
		s.notify.Notify(notify.Error, msgLoginFailed)
		return fmt.Errorf("login: %w", err)
	}

	s.transition(Authenticated)
	s.notify.Notify(notify.Success, msgLoginOK)
	s.nav.Navigate(route.Dashboard)
	return nil
}

// Register creates an account and sends the user to the login screen.
func (s *Session) Register(ctx context.Context, creds service.Credentials) (service.User, error) {
	u, err := s.auth.Register(ctx, creds)
	if err != nil {
		return service.User{}, fmt.Errorf("register: %w", err)
	}
	s.notify.Notify(notify.Success, msgRegisteredOK)
	s.nav.Navigate(route.Login)
	return u, nil
}

// Logout forgets the token and returns home. It is idempotent.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.transition(Anonymous)
	s.notify.Notify(notify.Info, msgLoggedOut)
	s.nav.Navigate(route.Home)
	return err
}

// Invalidate reacts to a 401 from any call: the token is dropped and the
// user is sent to the login screen. Repeated calls transition only once.
func (s *Session) Invalidate() {
	if err := s.store.Clear(); err != nil {
		s.log.Warn("failed to clear token", "error", err)
	}
	s.transition(Anonymous)
	s.nav.Navigate(route.Login)
}

// OnFocus re-validates the session when the client regains the foreground.
// Anonymous sessions make no call.
func (s *Session) OnFocus(ctx context.Context) error {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.Validate(ctx)
}

// Validate asks the backend whether the token is still accepted. Any
// failure ends the session exactly as Logout does.
func (s *Session) Validate(ctx context.Context) error {
	if !s.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	if err := s.auth.ValidateToken(ctx); err != nil {
		s.log.Debug("session validation failed", "error", err)
		s.notify.Notify(notify.Error, msgExpired)
		if lerr := s.Logout(); lerr != nil {
			s.log.Warn("logout after failed validation", "error", lerr)
		}
		return fmt.Errorf("validate session: %w", err)
	}
	return nil
}

// TokenInfo is what can be read from a JWT session token without
// verifying it.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes the stored token's claims for display. The signature is
// not checked, so the result must never drive an authorization decision.
func (s *Session) Inspect() (TokenInfo, error) {
	raw, ok := s.store.Get()
	if !ok {
		return TokenInfo{}, ErrNotLoggedIn
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("token is not a JWT: %w", err)
	}

	var info TokenInfo
	info.Subject, _ = claims.GetSubject()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
