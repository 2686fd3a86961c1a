package launcher

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeTmux implements the subset of tmux.Ops the launcher touches.
type fakeTmux struct {
	mu       sync.Mutex
	literals []string
	enters   int

	sendErr  error
	paneDead bool
	deadErr  error
}

func (f *fakeTmux) HasSession(string) bool                 { return true }
func (f *fakeTmux) NewSession(string, string) (string, error) { return "%0", nil }
func (f *fakeTmux) KillSession(string) error               { return nil }
func (f *fakeTmux) ListPanes(string) ([]string, error)     { return nil, nil }
func (f *fakeTmux) SplitPane(string, bool, string) error   { return nil }
func (f *fakeTmux) SelectLayout(string, string) error      { return nil }

func (f *fakeTmux) SendLiteral(paneID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.literals = append(f.literals, text)
	return nil
}

func (f *fakeTmux) SendEnter(paneID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.enters++
	return nil
}

func (f *fakeTmux) PaneDead(paneID string) (bool, error) {
	return f.paneDead, f.deadErr
}

// fakeSentinel flips to ready after a set number of polls.
type fakeSentinel struct {
	mu         sync.Mutex
	polls      int
	readyAfter int
}

func (f *fakeSentinel) ReadyExists(worker string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.polls > f.readyAfter
}

func TestSpawnWorker_LiteralThenEnter(t *testing.T) {
	f := &fakeTmux{}
	l := New(f, time.Millisecond)

	spec := WorkerSpec{
		Worker:     "worker-1",
		LaunchLine: "claude --dangerously-skip-permissions",
		RCFile:     "~/.bashrc",
		Env: map[string]string{
			"TASKFORCE_TEAM":   "t1",
			"TASKFORCE_WORKER": "worker-1",
		},
	}
	if err := l.SpawnWorker("%1", spec); err != nil {
		t.Fatalf("SpawnWorker: %v", err)
	}

	if len(f.literals) != 1 {
		t.Fatalf("literals = %v", f.literals)
	}
	line := f.literals[0]

	for _, want := range []string{
		"env",
		"TASKFORCE_TEAM='t1'",
		"TASKFORCE_WORKER='worker-1'",
		"sh -c",
		"[ -f ~/.bashrc ] && . ~/.bashrc; ",
		"exec claude --dangerously-skip-permissions",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("launch line missing %q:\n%s", want, line)
		}
	}

	// Env vars sorted for a deterministic line.
	if strings.Index(line, "TASKFORCE_TEAM") > strings.Index(line, "TASKFORCE_WORKER") {
		t.Error("env vars not sorted")
	}

	if f.enters != 1 {
		t.Errorf("enters = %d, want 1", f.enters)
	}
}

func TestSpawnWorker_NoRCFile(t *testing.T) {
	f := &fakeTmux{}
	l := New(f, time.Millisecond)

	if err := l.SpawnWorker("%1", WorkerSpec{Worker: "worker-1", LaunchLine: "claude"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(f.literals[0], "[ -f") {
		t.Errorf("rc sourcing present without rc file:\n%s", f.literals[0])
	}
}

func TestSendToWorker_Truncates(t *testing.T) {
	f := &fakeTmux{}
	l := New(f, time.Millisecond)

	long := strings.Repeat("x", 300)
	if !l.SendToWorker("%1", long) {
		t.Fatal("expected send to succeed")
	}
	if len(f.literals[0]) != 200 {
		t.Errorf("sent %d chars, want 200", len(f.literals[0]))
	}
}

func TestSendToWorker_NeverErrors(t *testing.T) {
	f := &fakeTmux{sendErr: errors.New("pane gone")}
	l := New(f, time.Millisecond)

	if l.SendToWorker("%1", "new-task:1") {
		t.Error("expected false on send failure")
	}
}

func TestWaitForReady(t *testing.T) {
	l := New(&fakeTmux{}, time.Millisecond)

	if !l.WaitForReady(&fakeSentinel{readyAfter: 3}, "worker-1", time.Second) {
		t.Error("expected ready after a few polls")
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	l := New(&fakeTmux{}, 5*time.Millisecond)

	start := time.Now()
	ok := l.WaitForReady(&fakeSentinel{readyAfter: 1 << 30}, "worker-1", 30*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Error("expected timeout")
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("wait overshot deadline badly: %v", elapsed)
	}
}

func TestIsWorkerAlive(t *testing.T) {
	tests := []struct {
		name string
		dead bool
		err  error
		want bool
	}{
		{"alive", false, nil, true},
		{"dead", true, nil, false},
		{"query failure fails closed", false, errors.New("no such pane"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(&fakeTmux{paneDead: tt.dead, deadErr: tt.err}, time.Millisecond)
			if got := l.IsWorkerAlive("%1"); got != tt.want {
				t.Errorf("IsWorkerAlive = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	got := shellQuote("it's a test")
	want := `'it'\''s a test'`
	if got != want {
		t.Errorf("shellQuote = %s, want %s", got, want)
	}
}
