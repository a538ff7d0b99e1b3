package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Vaults(ctx context.Context) error { return f.record("vaults", nil) }
func (f *fakeExec) MakeVault(ctx context.Context, args []string) error {
	return f.record("mkvault", args)
}
func (f *fakeExec) Grant(ctx context.Context, args []string) error  { return f.record("grant", args) }
func (f *fakeExec) Revoke(ctx context.Context, args []string) error { return f.record("revoke", args) }
func (f *fakeExec) Users(ctx context.Context, args []string) error  { return f.record("users", args) }
func (f *fakeExec) Upload(ctx context.Context, args []string) error { return f.record("upload", args) }
func (f *fakeExec) Images(ctx context.Context, args []string) error { return f.record("images", args) }
func (f *fakeExec) Download(ctx context.Context, args []string) error {
	return f.record("download", args)
}
func (f *fakeExec) Gallery(ctx context.Context, args []string) error {
	return f.record("gallery", args)
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"vaults",
		"mkvault Summer 2024",
		"grant v1 0xabc 24h",
		"upload v1 /tmp/cat.png",
		"gallery v1",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	want := []string{"login", "vaults", "mkvault", "grant", "upload", "gallery", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls: got %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("commands order mismatch: got %v, want %v", exec.calls, want)
		}
	}

	if got := strings.Join(exec.args[2], " "); got != "Summer 2024" {
		t.Fatalf("mkvault args: %q", got)
	}
	if got := strings.Join(exec.args[3], " "); got != "v1 0xabc 24h" {
		t.Fatalf("grant args: %q", got)
	}
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	lines := silencePrintln(t)

	input := strings.NewReader("upload v1 x.png\nbogus\nquit\n")
	exec := &fakeExec{loggedIn: false}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}

	joined := strings.Join(*lines, "\n")
	if !strings.Contains(joined, "Please login first") {
		t.Fatalf("expected login hint, got %q", joined)
	}
	if !strings.Contains(joined, "Unknown command: bogus") {
		t.Fatalf("expected unknown command, got %q", joined)
	}
}

func TestRunREPL_EOFStops(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("\n\nimages v1")))

	if len(exec.calls) != 1 || exec.calls[0] != "images" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
