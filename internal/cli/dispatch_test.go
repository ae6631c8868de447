package cli_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"taskcli/internal/app"
	"taskcli/internal/cli"
	"taskcli/internal/commands"
	"taskcli/internal/config"
	"taskcli/internal/exitcode"
	"taskcli/internal/notify"
	"taskcli/internal/service"
	"taskcli/internal/testutil"
)

// testFactory creates a backend factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) app.BackendFactory {
	return func(*config.Config, oauth2.TokenSource, notify.Notifier, *slog.Logger) (service.Backend, error) {
		return svc, nil
	}
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "Secret1")
	work := svc.AddCategory("Work")
	svc.AddTask("Write report", work.ID, false)
	return svc
}

// configDir returns a fresh config dir, with a stored token when token is
// not empty.
func configDir(t *testing.T, token string) string {
	t.Helper()
	dir := t.TempDir()
	if token != "" {
		data := `{"access_token":"` + token + `","token_type":"Bearer"}`
		if err := os.WriteFile(filepath.Join(dir, "token.json"), []byte(data), 0600); err != nil {
			t.Fatalf("failed to write token.json: %v", err)
		}
	}
	return dir
}

func tokenExists(t *testing.T, dir string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, "token.json"))
	return err == nil
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_UnknownCommandSuggestion(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"cat"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: cat (did you mean: categories?)\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help", "--config", configDir(t, "")}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version", "--config", configDir(t, "")}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout.String() != "taskcli 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout.String())
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help", "--unknown"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"tasks", "--category"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -category\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_InvalidOutputFormat(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"tasks", "--config", configDir(t, "T"), "--output", "xml"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr.String() != "error: invalid output format: xml\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestDispatcher_GuardRejectsAnonymous(t *testing.T) {
	for _, name := range []string{"tasks", "dashboard", "whoami", "add", "rmcat"} {
		t.Run(name, func(t *testing.T) {
			svc := seeded()
			dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

			var stdout, stderr bytes.Buffer
			code := dispatcher.Run(context.Background(), []string{name, "--config", configDir(t, "")}, &stdout, &stderr)

			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
			if stderr.String() != "error: not logged in (run: taskcli login)\n" {
				t.Errorf("unexpected stderr %q", stderr.String())
			}
			if len(svc.Calls()) != 0 {
				t.Errorf("expected no backend calls, got %v", svc.Calls())
			}
		})
	}
}

func TestDispatcher_NoArgsShowsDashboard(t *testing.T) {
	svc := seeded()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	// No token in the default config dir: the guard sends us home.
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
}

func TestDispatcher_TasksWithToken(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"tasks", "--config", configDir(t, "T")}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if stdout.String() != "   2  [ ] Write report  (Work)\n" {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
}

func TestDispatcher_LoginPersistsAcrossRuns(t *testing.T) {
	svc := seeded()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	dir := configDir(t, "")

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"login", "--config", dir, "-p", "Secret1", "alice"}, &stdout, &stderr)
	if code != exitcode.Success {
		t.Fatalf("login failed with %d: %s", code, stderr.String())
	}
	if !tokenExists(t, dir) {
		t.Fatal("expected token.json after login")
	}

	stdout.Reset()
	code = dispatcher.Run(context.Background(), []string{"whoami", "--config", dir}, &stdout, &stderr)
	if code != exitcode.Success {
		t.Errorf("expected whoami to pass the guard, got %d", code)
	}

	code = dispatcher.Run(context.Background(), []string{"logout", "--config", dir, "--quiet"}, &stdout, &stderr)
	if code != exitcode.Success || tokenExists(t, dir) {
		t.Errorf("expected logout to remove the token (code %d)", code)
	}
}

func TestDispatcher_PasswordFromInput(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))
	dispatcher.SetInput(strings.NewReader("Secret1\n"))
	dir := configDir(t, "")

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"login", "--config", dir, "alice"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if !tokenExists(t, dir) {
		t.Error("expected token.json after login")
	}
}

func TestShell_SessionCarriesOverLines(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))
	dispatcher.SetInput(strings.NewReader("tasks\nlogin -p Secret1 alice\n\ntasks\nexit\ntasks\n"))
	dispatcher.SetFocusSource(nil)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"shell", "--quiet", "--config", configDir(t, "")}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "error: not logged in (run: taskcli login)\n" {
		t.Errorf("expected exactly one guard rejection, got %q", stderr.String())
	}
	if stdout.String() != "   2  [ ] Write report  (Work)\n" {
		t.Errorf("expected tasks once, after login and before exit, got %q", stdout.String())
	}
}

func TestShell_LoginPromptsForPassword(t *testing.T) {
	pr, pw := io.Pipe()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))
	dispatcher.SetInput(pr)
	dispatcher.SetFocusSource(nil)
	dir := configDir(t, "")

	var stdout, stderr bytes.Buffer
	done := make(chan int)
	go func() {
		done <- dispatcher.Run(context.Background(), []string{"shell", "--quiet", "--config", dir}, &stdout, &stderr)
	}()

	for _, line := range []string{"login alice", "Secret1", "whoami"} {
		if _, err := io.WriteString(pw, line+"\n"); err != nil {
			t.Fatalf("failed to write shell input: %v", err)
		}
	}
	pw.Close()
	code := <-done

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if stderr.String() != "Password: " {
		t.Errorf("expected only the password prompt on stderr, got %q", stderr.String())
	}
	if strings.Contains(stdout.String()+stderr.String(), "Secret1") {
		t.Error("password was echoed")
	}
	if !tokenExists(t, dir) {
		t.Error("expected token.json after login")
	}
	if !strings.Contains(stdout.String(), "alice") {
		t.Errorf("expected whoami after login, got %q", stdout.String())
	}
}

func TestShell_DebugLogsVisitedScreens(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))
	dispatcher.SetInput(strings.NewReader("login -p Secret1 alice\n"))
	dispatcher.SetFocusSource(nil)

	var stdout, stderr bytes.Buffer
	dispatcher.Run(context.Background(), []string{"shell", "--quiet", "--debug", "--config", configDir(t, "")}, &stdout, &stderr)

	var closed string
	for _, line := range strings.Split(stderr.String(), "\n") {
		if strings.Contains(line, `msg="shell closed"`) {
			closed = line
		}
	}
	if !strings.Contains(closed, "dashboard") {
		t.Errorf("expected the closing log to list the dashboard, got %q", stderr.String())
	}
}

func TestShell_Prompt(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))
	dispatcher.SetInput(strings.NewReader("version\n"))
	dispatcher.SetFocusSource(nil)

	var stdout, stderr bytes.Buffer
	dispatcher.Run(context.Background(), []string{"shell", "--config", configDir(t, "")}, &stdout, &stderr)

	expected := "taskcli:home> taskcli 0.1.0\ntaskcli:home> "
	if stdout.String() != expected {
		t.Errorf("expected %q, got %q", expected, stdout.String())
	}
}

func TestShell_NestedShellRejected(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(seeded()))
	dispatcher.SetInput(strings.NewReader("shell\n"))
	dispatcher.SetFocusSource(nil)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"shell", "--quiet", "--config", configDir(t, "")}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr.String() != "error: already in a shell\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

// runShellWithFocus starts a shell, delivers one focus event, then feeds
// line and ends the input. The focus event is handled before the line.
func runShellWithFocus(t *testing.T, svc *testutil.FakeService, dir, line string) (stdout, stderr string) {
	t.Helper()

	focus := make(chan struct{})
	pr, pw := io.Pipe()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	dispatcher.SetInput(pr)
	dispatcher.SetFocusSource(func() (<-chan struct{}, func()) {
		return focus, func() {}
	})

	var outBuf, errBuf bytes.Buffer
	done := make(chan int)
	go func() {
		done <- dispatcher.Run(context.Background(), []string{"shell", "--quiet", "--config", dir}, &outBuf, &errBuf)
	}()

	focus <- struct{}{}
	if _, err := io.WriteString(pw, line+"\n"); err != nil {
		t.Fatalf("failed to write shell input: %v", err)
	}
	pw.Close()
	<-done

	return outBuf.String(), errBuf.String()
}

func TestShell_FocusValidatesSession(t *testing.T) {
	svc := seeded()
	dir := configDir(t, "T")

	stdout, stderr := runShellWithFocus(t, svc, dir, "status")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "state:   authenticated\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if strings.Join(svc.Calls(), ",") != "ValidateToken" {
		t.Errorf("expected one validation, got %v", svc.Calls())
	}
}

func TestShell_FocusWithRejectedTokenLogsOut(t *testing.T) {
	svc := seeded()
	svc.ValidateErr = &service.Error{Kind: service.KindUnauthorized, Status: 401}
	dir := configDir(t, "T")

	stdout, stderr := runShellWithFocus(t, svc, dir, "status")

	if stderr != "error: your session has expired, please log in again\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if stdout != "state:   anonymous\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if tokenExists(t, dir) {
		t.Error("expected token.json to be removed")
	}
}

func TestShell_FocusWhileAnonymousMakesNoCall(t *testing.T) {
	svc := seeded()

	runShellWithFocus(t, svc, configDir(t, ""), "status")

	if len(svc.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", svc.Calls())
	}
}
