package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskcli/internal/route"
	"taskcli/internal/service"
	"taskcli/internal/session"
	"taskcli/internal/testutil"
)

type fixture struct {
	store  *session.Store
	svc    *testutil.FakeService
	router *route.Router
	notes  *testutil.Recorder
	sess   *session.Session
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()

	store, err := session.OpenStore(filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if token != "" {
		if err := store.Set(token); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}
	}

	f := &fixture{
		store:  store,
		svc:    testutil.NewFakeService(),
		router: route.NewRouter(route.Home, nil),
		notes:  &testutil.Recorder{},
	}
	f.sess = session.New(store, f.svc, session.Options{Notifier: f.notes, Navigator: f.router})
	f.svc.OnUnauthorized(f.sess.Invalidate)
	return f
}

func TestNew_RestoresStoredToken(t *testing.T) {
	f := newFixture(t, "T")

	if f.sess.State() != session.Authenticated {
		t.Errorf("expected authenticated, got %s", f.sess.State())
	}
	if len(f.svc.Calls()) != 0 {
		t.Errorf("restoring a session must not call the backend, got %v", f.svc.Calls())
	}
}

func TestNew_NoTokenIsAnonymous(t *testing.T) {
	f := newFixture(t, "")
	if f.sess.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", f.sess.State())
	}
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t, "")
	f.svc.AddUser("alice", "secret1")

	if err := f.sess.Login(context.Background(), service.Credentials{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tok, ok := f.store.Get()
	if !ok || tok != "token-alice" {
		t.Errorf("expected stored token %q, got %q", "token-alice", tok)
	}
	if f.sess.State() != session.Authenticated {
		t.Errorf("expected authenticated, got %s", f.sess.State())
	}
	if f.router.Current() != route.Dashboard {
		t.Errorf("expected navigation to dashboard, got %s", f.router.Current())
	}
	msgs := f.notes.Messages()
	if len(msgs) != 1 || msgs[0] != "success: login successful" {
		t.Errorf("unexpected notifications %v", msgs)
	}
}

func TestLogin_FailureStaysAnonymous(t *testing.T) {
	f := newFixture(t, "")
	f.svc.AddUser("alice", "secret1")

	err := f.sess.Login(context.Background(), service.Credentials{Username: "alice", Password: "wrong"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !service.IsKind(err, service.KindUnauthorized) {
		t.Errorf("expected the backend error to be re-signaled, got %v", err)
	}
	if _, ok := f.store.Get(); ok {
		t.Error("no token should be stored after a failed login")
	}
	if f.sess.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", f.sess.State())
	}
	if f.router.Current() == route.Dashboard {
		t.Error("failed login must not open the dashboard")
	}
}

func TestLogin_EmptyTokenIsFailure(t *testing.T) {
	f := newFixture(t, "")
	sess := session.New(f.store, tokenlessAuth{}, session.Options{})

	if err := sess.Login(context.Background(), service.Credentials{Username: "a", Password: "b"}); err == nil {
		t.Fatal("expected error for a response without a token")
	}
	if sess.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", sess.State())
	}
}

type tokenlessAuth struct{}

func (tokenlessAuth) Login(context.Context, service.Credentials) (service.LoginResult, error) {
	return service.LoginResult{Message: "ok"}, nil
}
func (tokenlessAuth) Register(context.Context, service.Credentials) (service.User, error) {
	return service.User{}, nil
}
func (tokenlessAuth) ValidateToken(context.Context) error { return nil }

func TestLogin_ReplacesPreviousToken(t *testing.T) {
	f := newFixture(t, "old")
	f.svc.AddUser("bob", "pw1234")

	if err := f.sess.Login(context.Background(), service.Credentials{Username: "bob", Password: "pw1234"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok, _ := f.store.Get(); tok != "token-bob" {
		t.Errorf("expected the later login to win, got %q", tok)
	}
}

func TestLogout_FromAnyState(t *testing.T) {
	for _, start := range []string{"", "T"} {
		f := newFixture(t, start)

		if err := f.sess.Logout(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := f.sess.Logout(); err != nil {
			t.Fatalf("second logout failed: %v", err)
		}

		if _, ok := f.store.Get(); ok {
			t.Error("expected no token after logout")
		}
		if f.sess.State() != session.Anonymous {
			t.Errorf("expected anonymous, got %s", f.sess.State())
		}
		if f.router.Current() != route.Home {
			t.Errorf("expected navigation home, got %s", f.router.Current())
		}
	}
}

func TestInvalidate_TransitionsOnce(t *testing.T) {
	f := newFixture(t, "T")

	var mu sync.Mutex
	var transitions []session.State
	f.sess.OnChange(func(s session.State) {
		mu.Lock()
		transitions = append(transitions, s)
		mu.Unlock()
	})

	f.svc.ListTasksErr = &service.Error{Kind: service.KindUnauthorized, Status: 401}
	for i := 0; i < 3; i++ {
		if _, err := f.svc.ListTasks(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}

	if _, ok := f.store.Get(); ok {
		t.Error("expected token cleared by 401")
	}
	if f.sess.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", f.sess.State())
	}
	if len(transitions) != 1 || transitions[0] != session.Anonymous {
		t.Errorf("expected exactly one transition to anonymous, got %v", transitions)
	}
	if f.router.Current() != route.Login {
		t.Errorf("expected navigation to login, got %s", f.router.Current())
	}
}

func TestOnFocus_AnonymousMakesNoCall(t *testing.T) {
	f := newFixture(t, "")

	if err := f.sess.OnFocus(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.svc.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", f.svc.Calls())
	}
}

func TestOnFocus_ValidTokenKeepsSession(t *testing.T) {
	f := newFixture(t, "T")

	if err := f.sess.OnFocus(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.sess.State() != session.Authenticated {
		t.Errorf("expected authenticated, got %s", f.sess.State())
	}
	calls := f.svc.Calls()
	if len(calls) != 1 || calls[0] != "ValidateToken" {
		t.Errorf("expected one validation call, got %v", calls)
	}
}

func TestOnFocus_FailureEqualsLogout(t *testing.T) {
	focused := newFixture(t, "T")
	focused.svc.ValidateErr = &service.Error{Kind: service.KindUnauthorized, Status: 401}

	if err := focused.sess.OnFocus(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}

	explicit := newFixture(t, "T")
	if err := explicit.sess.Logout(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, focusedHas := focused.store.Get()
	_, explicitHas := explicit.store.Get()
	if focusedHas != explicitHas {
		t.Errorf("token presence differs: focus=%v logout=%v", focusedHas, explicitHas)
	}
	if focused.sess.State() != explicit.sess.State() {
		t.Errorf("state differs: focus=%s logout=%s", focused.sess.State(), explicit.sess.State())
	}
	if focused.router.Current() != explicit.router.Current() {
		t.Errorf("screen differs: focus=%s logout=%s", focused.router.Current(), explicit.router.Current())
	}

	msgs := focused.notes.Messages()
	found := false
	for _, m := range msgs {
		if m == "error: your session has expired, please log in again" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a session-expired notification, got %v", msgs)
	}
}

func TestOnFocus_NetworkFailureAlsoLogsOut(t *testing.T) {
	f := newFixture(t, "T")
	f.svc.ValidateErr = &service.Error{Kind: service.KindNetwork, Err: errors.New("connection refused")}

	if err := f.sess.OnFocus(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if f.sess.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", f.sess.State())
	}
}

func TestOnFocus_OverlappingValidations(t *testing.T) {
	f := newFixture(t, "T")
	f.svc.ValidateErr = &service.Error{Kind: service.KindUnauthorized, Status: 401}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.sess.OnFocus(context.Background())
		}()
	}
	wg.Wait()

	if _, ok := f.store.Get(); ok {
		t.Error("expected no token")
	}
	if f.sess.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", f.sess.State())
	}
}

func TestValidate_NotLoggedIn(t *testing.T) {
	f := newFixture(t, "")
	if err := f.sess.Validate(context.Background()); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestRegister_NavigatesToLogin(t *testing.T) {
	f := newFixture(t, "")

	u, err := f.sess.Register(context.Background(), service.Credentials{Username: "carol", Password: "Secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "carol" {
		t.Errorf("unexpected user %+v", u)
	}
	if f.router.Current() != route.Login {
		t.Errorf("expected navigation to login, got %s", f.router.Current())
	}
	if f.sess.State() != session.Anonymous {
		t.Error("registration must not sign in")
	}
}

func TestInspect_DecodesJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	f := newFixture(t, raw)
	info, err := f.sess.Inspect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Subject != "alice" {
		t.Errorf("expected subject alice, got %q", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, info.ExpiresAt)
	}
}

func TestInspect_OpaqueToken(t *testing.T) {
	f := newFixture(t, "abc123")
	if _, err := f.sess.Inspect(); err == nil {
		t.Error("expected error for a non-JWT token")
	}
}
