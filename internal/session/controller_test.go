package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mhelleborg/taskforce/internal/errs"
)

// fakeTmux simulates a tmux server with a single session whose panes get
// sequential %N IDs.
type fakeTmux struct {
	panes      []string
	nextPane   int
	sessions   map[string]bool
	splitCalls []string // "target/h" or "target/v"
	layouts    []string
	sent       []string
	splitErr   error
	listErr    error
	// extraPaneOnSplit makes every split produce two panes, simulating
	// interference from outside the orchestrator.
	extraPaneOnSplit bool
}

func newFakeTmux() *fakeTmux {
	return &fakeTmux{sessions: make(map[string]bool)}
}

func (f *fakeTmux) newPaneID() string {
	id := fmt.Sprintf("%%%d", f.nextPane)
	f.nextPane++
	return id
}

func (f *fakeTmux) HasSession(name string) bool { return f.sessions[name] }

func (f *fakeTmux) NewSession(name, dir string) (string, error) {
	f.sessions[name] = true
	id := f.newPaneID()
	f.panes = append(f.panes, id)
	return id, nil
}

func (f *fakeTmux) KillSession(name string) error {
	if !f.sessions[name] {
		return errors.New("no such session")
	}
	delete(f.sessions, name)
	f.panes = nil
	return nil
}

func (f *fakeTmux) ListPanes(session string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.panes...), nil
}

func (f *fakeTmux) SplitPane(target string, horizontal bool, dir string) error {
	if f.splitErr != nil {
		return f.splitErr
	}
	dirFlag := "v"
	if horizontal {
		dirFlag = "h"
	}
	f.splitCalls = append(f.splitCalls, target+"/"+dirFlag)
	f.panes = append(f.panes, f.newPaneID())
	if f.extraPaneOnSplit {
		f.panes = append(f.panes, f.newPaneID())
	}
	return nil
}

func (f *fakeTmux) SelectLayout(session, layout string) error {
	f.layouts = append(f.layouts, layout)
	return nil
}

func (f *fakeTmux) SendLiteral(paneID, text string) error {
	f.sent = append(f.sent, paneID+":"+text)
	return nil
}

func (f *fakeTmux) SendEnter(paneID string) error {
	f.sent = append(f.sent, paneID+":<enter>")
	return nil
}

func (f *fakeTmux) PaneDead(paneID string) (bool, error) { return false, nil }

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"my-team", "my-team", false},
		{"My Team 1!", "MyTeam1", false},
		{"a.b/c", "abc", false},
		{"", "", true},
		{"!", "", true},
		{"a", "", true},
		{"--", "--", false},
		{strings.Repeat("x", 80), strings.Repeat("x", 50), false},
	}

	for _, tt := range tests {
		got, err := SanitizeName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SanitizeName(%q): expected error", tt.in)
				continue
			}
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("SanitizeName(%q): error is not a ValidationError: %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizeName(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeName_Idempotent(t *testing.T) {
	for _, in := range []string{"my-team", "My Team 1!", strings.Repeat("x", 80)} {
		once, err := SanitizeName(in)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := SanitizeName(once)
		if err != nil {
			t.Fatal(err)
		}
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCreateTeamSession_PaneCounts(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		f := newFakeTmux()
		sess, err := NewController(f).CreateTeamSession("team", n, "/work")
		if err != nil {
			t.Fatalf("workerCount=%d: %v", n, err)
		}
		if len(sess.WorkerPanes) != n {
			t.Errorf("workerCount=%d: got %d worker panes", n, len(sess.WorkerPanes))
		}

		// Leader plus workers must be mutually distinct.
		seen := map[string]bool{sess.LeaderPane: true}
		for _, p := range sess.WorkerPanes {
			if seen[p] {
				t.Errorf("workerCount=%d: duplicate pane ID %s", n, p)
			}
			seen[p] = true
		}
	}
}

func TestCreateTeamSession_SplitDirections(t *testing.T) {
	f := newFakeTmux()
	sess, err := NewController(f).CreateTeamSession("team", 3, "/work")
	if err != nil {
		t.Fatal(err)
	}

	// First split is horizontal off the leader, the rest vertical off the
	// previous worker pane.
	want := []string{
		sess.LeaderPane + "/h",
		sess.WorkerPanes[0] + "/v",
		sess.WorkerPanes[1] + "/v",
	}
	if len(f.splitCalls) != len(want) {
		t.Fatalf("splitCalls = %v, want %v", f.splitCalls, want)
	}
	for i := range want {
		if f.splitCalls[i] != want[i] {
			t.Errorf("splitCalls[%d] = %q, want %q", i, f.splitCalls[i], want[i])
		}
	}

	if len(f.layouts) != 1 || f.layouts[0] != "tiled" {
		t.Errorf("layouts = %v, want one tiled", f.layouts)
	}
}

func TestCreateTeamSession_SanitizesName(t *testing.T) {
	f := newFakeTmux()
	sess, err := NewController(f).CreateTeamSession("My Team!", 1, "/work")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Name != "MyTeam" {
		t.Errorf("session name = %q, want MyTeam", sess.Name)
	}

	if _, err := NewController(newFakeTmux()).CreateTeamSession("!", 1, "/work"); err == nil {
		t.Error("expected validation error for unsanitizable name")
	}
}

func TestCreateTeamSession_AmbiguousDiscovery(t *testing.T) {
	f := newFakeTmux()
	f.extraPaneOnSplit = true
	if _, err := NewController(f).CreateTeamSession("team", 1, "/work"); err == nil {
		t.Error("expected error when more than one new pane appears")
	}
}

func TestCreateTeamSession_SplitFailure(t *testing.T) {
	f := newFakeTmux()
	f.splitErr = errors.New("pane too small")
	if _, err := NewController(f).CreateTeamSession("team", 2, "/work"); err == nil {
		t.Error("expected split error to propagate")
	}
}

func TestAddWorkerPane(t *testing.T) {
	f := newFakeTmux()
	c := NewController(f)
	sess, err := c.CreateTeamSession("team", 2, "/work")
	if err != nil {
		t.Fatal(err)
	}

	before := len(sess.WorkerPanes)
	paneID, err := c.AddWorkerPane(sess, "/work")
	if err != nil {
		t.Fatalf("AddWorkerPane: %v", err)
	}
	if len(sess.WorkerPanes) != before+1 {
		t.Errorf("worker panes = %d, want %d", len(sess.WorkerPanes), before+1)
	}
	if sess.WorkerPanes[len(sess.WorkerPanes)-1] != paneID {
		t.Error("new pane not appended to session")
	}
	if paneID == sess.LeaderPane {
		t.Error("new pane must not alias the leader")
	}
}

func TestAddWorkerPane_EmptySession(t *testing.T) {
	f := newFakeTmux()
	c := NewController(f)
	sess, err := c.CreateTeamSession("team", 0, "/work")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.AddWorkerPane(sess, "/work"); err != nil {
		t.Fatalf("AddWorkerPane off leader: %v", err)
	}
	if got := f.splitCalls[len(f.splitCalls)-1]; got != sess.LeaderPane+"/h" {
		t.Errorf("split = %q, want horizontal off leader", got)
	}
}
