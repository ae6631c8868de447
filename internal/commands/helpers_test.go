package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"taskcli/internal/app"
	"taskcli/internal/commands"
	"taskcli/internal/config"
	"taskcli/internal/notify"
	"taskcli/internal/service"
	"taskcli/internal/testutil"
)

// testEnv is one command invocation environment backed by a FakeService.
type testEnv struct {
	t      *testing.T
	svc    *testutil.FakeService
	cfg    *config.Config
	in     io.Reader
	stdout bytes.Buffer
	stderr bytes.Buffer
	app    *app.App
}

type envOption func(*testEnv)

// loggedIn seeds token.json before the app starts.
func loggedIn(token string) envOption {
	return func(e *testEnv) {
		data := `{"access_token":"` + token + `","token_type":"Bearer"}`
		if err := os.WriteFile(filepath.Join(e.cfg.Dir, "token.json"), []byte(data), 0600); err != nil {
			e.t.Fatalf("failed to write token.json: %v", err)
		}
	}
}

func quiet() envOption {
	return func(e *testEnv) { e.cfg.Quiet = true }
}

func withOutput(format string) envOption {
	return func(e *testEnv) { e.cfg.Output = format }
}

func withInput(s string) envOption {
	return func(e *testEnv) { e.in = strings.NewReader(s) }
}

func newEnv(t *testing.T, svc *testutil.FakeService, opts ...envOption) *testEnv {
	t.Helper()
	if svc == nil {
		svc = testutil.NewFakeService()
	}
	e := &testEnv{
		t:   t,
		svc: svc,
		cfg: &config.Config{Dir: t.TempDir(), Output: "text"},
	}
	for _, opt := range opts {
		opt(e)
	}

	factory := func(*config.Config, oauth2.TokenSource, notify.Notifier, *slog.Logger) (service.Backend, error) {
		return svc, nil
	}
	a, err := app.New(e.cfg, factory, e.in, &e.stdout, &e.stderr)
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	e.app = a
	return e
}

// run parses args with the command's flags, as the dispatcher does, and
// runs the command.
func (e *testEnv) run(cmd commands.Command, args ...string) int {
	e.t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		e.t.Fatalf("flag parse failed: %v", err)
	}
	return cmd.Run(context.Background(), e.app, fs.Args(), &e.stdout, &e.stderr)
}

func (e *testEnv) expectCode(want, got int) {
	e.t.Helper()
	if got != want {
		e.t.Errorf("expected exit code %d, got %d (stdout %q, stderr %q)", want, got, e.stdout.String(), e.stderr.String())
	}
}

func (e *testEnv) expectNoStderr() {
	e.t.Helper()
	if e.stderr.Len() != 0 {
		e.t.Errorf("expected no stderr, got %q", e.stderr.String())
	}
}

func (e *testEnv) tokenOnDisk() (string, bool) {
	e.t.Helper()
	return e.app.Store.Get()
}

// seeded returns a FakeService with one account, two categories and
// three tasks.
func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "Secret1")
	work := svc.AddCategory("Work")
	svc.AddCategory("Home")
	svc.AddTask("Write report", work.ID, false)
	svc.AddTask("Call bob", 0, true)
	svc.AddTask("Plan sprint", work.ID, false)
	return svc
}
