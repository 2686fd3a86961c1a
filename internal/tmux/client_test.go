package tmux

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner records invocations and serves canned responses keyed by the
// tmux subcommand (first argument).
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	out   map[string]string
	errs  map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		out:  make(map[string]string),
		errs: make(map[string]error),
	}
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, args)
	if err, ok := f.errs[args[0]]; ok {
		return "", err
	}
	return f.out[args[0]], nil
}

func (f *fakeRunner) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func newTestClient(f *fakeRunner) *Client {
	return NewClientWithRunner(f, time.Second)
}

func TestNewSession_ReturnsPaneID(t *testing.T) {
	f := newFakeRunner()
	f.out["new-session"] = "%0"

	paneID, err := newTestClient(f).NewSession("t1", "/work")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if paneID != "%0" {
		t.Errorf("paneID = %q, want %%0", paneID)
	}

	call := f.lastCall()
	for _, want := range []string{"-d", "-s", "t1", "-c", "/work", "#{pane_id}"} {
		if !contains(call, want) {
			t.Errorf("new-session args missing %q: %v", want, call)
		}
	}
}

func TestListPanes(t *testing.T) {
	f := newFakeRunner()
	f.out["list-panes"] = "%0\n%1\n%2"

	panes, err := newTestClient(f).ListPanes("t1")
	if err != nil {
		t.Fatalf("ListPanes: %v", err)
	}
	want := []string{"%0", "%1", "%2"}
	if len(panes) != len(want) {
		t.Fatalf("panes = %v, want %v", panes, want)
	}
	for i := range want {
		if panes[i] != want[i] {
			t.Errorf("panes[%d] = %q, want %q", i, panes[i], want[i])
		}
	}
}

func TestListPanes_Empty(t *testing.T) {
	f := newFakeRunner()
	f.out["list-panes"] = ""

	panes, err := newTestClient(f).ListPanes("t1")
	if err != nil {
		t.Fatalf("ListPanes: %v", err)
	}
	if len(panes) != 0 {
		t.Errorf("expected no panes, got %v", panes)
	}
}

func TestSplitPane_Direction(t *testing.T) {
	f := newFakeRunner()
	c := newTestClient(f)

	if err := c.SplitPane("%0", true, "/work"); err != nil {
		t.Fatal(err)
	}
	if !contains(f.lastCall(), "-h") {
		t.Errorf("horizontal split missing -h: %v", f.lastCall())
	}

	if err := c.SplitPane("%1", false, "/work"); err != nil {
		t.Fatal(err)
	}
	if !contains(f.lastCall(), "-v") {
		t.Errorf("vertical split missing -v: %v", f.lastCall())
	}
}

func TestSendLiteral_UsesLiteralFlag(t *testing.T) {
	f := newFakeRunner()
	c := newTestClient(f)

	if err := c.SendLiteral("%3", "echo Enter; C-c"); err != nil {
		t.Fatal(err)
	}
	call := f.lastCall()
	if !contains(call, "-l") {
		t.Errorf("send-keys missing -l flag: %v", call)
	}
	if !contains(call, "--") {
		t.Errorf("send-keys missing -- separator: %v", call)
	}
	if call[len(call)-1] != "echo Enter; C-c" {
		t.Errorf("text not passed verbatim: %v", call)
	}
}

func TestPaneDead(t *testing.T) {
	f := newFakeRunner()
	c := newTestClient(f)

	f.out["display-message"] = "0"
	dead, err := c.PaneDead("%2")
	if err != nil || dead {
		t.Errorf("dead = %v, err = %v, want alive", dead, err)
	}

	f.out["display-message"] = "1"
	dead, err = c.PaneDead("%2")
	if err != nil || !dead {
		t.Errorf("dead = %v, err = %v, want dead", dead, err)
	}

	f.errs["display-message"] = errors.New("can't find pane: %2")
	if _, err := c.PaneDead("%2"); err == nil {
		t.Error("expected error when pane cannot be queried")
	}
}

func TestHasSession(t *testing.T) {
	f := newFakeRunner()
	c := newTestClient(f)

	if !c.HasSession("t1") {
		t.Error("expected session to exist")
	}

	f.errs["has-session"] = errors.New("no such session")
	if c.HasSession("t1") {
		t.Error("expected session to be absent")
	}
}

func TestKillSession_WrapsError(t *testing.T) {
	f := newFakeRunner()
	f.errs["kill-session"] = errors.New("no server running")

	err := newTestClient(f).KillSession("t1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "t1") {
		t.Errorf("error should name the session: %v", err)
	}
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
