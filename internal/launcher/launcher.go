// Package launcher starts worker processes inside tmux panes and talks
// to them over the two channels they honor: literal keystrokes (a
// best-effort nudge) and marker files (the authoritative contract).
package launcher

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mhelleborg/taskforce/internal/tmux"
)

// maxTriggerLen caps trigger messages; anything longer is truncated with
// a warning. Triggers are nudges, not payloads.
const maxTriggerLen = 200

// WorkerSpec describes how to start one worker.
type WorkerSpec struct {
	Worker     string
	LaunchLine string            // command line exec'd in the pane
	RCFile     string            // sourced first if present, e.g. ~/.bashrc
	Env        map[string]string // per-worker environment
}

// ReadySentinel reports whether a worker has written its readiness
// marker.
type ReadySentinel interface {
	ReadyExists(worker string) bool
}

// Launcher spawns and signals workers through tmux panes.
type Launcher struct {
	tmux         tmux.Ops
	pollInterval time.Duration
}

// New creates a Launcher. pollInterval is the fixed interval for the
// ready-sentinel wait.
func New(t tmux.Ops, pollInterval time.Duration) *Launcher {
	return &Launcher{tmux: t, pollInterval: pollInterval}
}

// SpawnWorker injects the worker's launch command into its pane. The
// command is sent as literal keystrokes, then Enter separately, so tmux
// never reinterprets characters in the command as key names.
func (l *Launcher) SpawnWorker(paneID string, spec WorkerSpec) error {
	line := buildLaunchLine(spec)
	if err := l.tmux.SendLiteral(paneID, line); err != nil {
		return fmt.Errorf("inject launch command for %s: %w", spec.Worker, err)
	}
	if err := l.tmux.SendEnter(paneID); err != nil {
		return fmt.Errorf("submit launch command for %s: %w", spec.Worker, err)
	}
	slog.Info("worker launch injected", "worker", spec.Worker, "pane", paneID)
	return nil
}

// SendToWorker sends a short trigger message to a worker's pane. This
// channel is best-effort: the result is a boolean and failures are only
// logged, because the task board plus inbox file is the authoritative
// delivery mechanism.
func (l *Launcher) SendToWorker(paneID, message string) bool {
	if len(message) > maxTriggerLen {
		slog.Warn("trigger message truncated", "pane", paneID, "len", len(message), "max", maxTriggerLen)
		message = message[:maxTriggerLen]
	}

	if err := l.tmux.SendLiteral(paneID, message); err != nil {
		slog.Warn("trigger send failed", "pane", paneID, "error", err)
		return false
	}
	if err := l.tmux.SendEnter(paneID); err != nil {
		slog.Warn("trigger submit failed", "pane", paneID, "error", err)
		return false
	}
	return true
}

// WaitForReady polls for the worker's readiness sentinel until timeout.
// Returns false on timeout; never blocks past the deadline.
func (l *Launcher) WaitForReady(sentinel ReadySentinel, worker string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if sentinel.ReadyExists(worker) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(l.pollInterval)
	}
}

// IsWorkerAlive reports whether the worker's pane exists and its process
// has not exited. Any query failure counts as not alive: when tmux
// cannot answer, assuming death is the safe reading.
func (l *Launcher) IsWorkerAlive(paneID string) bool {
	dead, err := l.tmux.PaneDead(paneID)
	if err != nil {
		return false
	}
	return !dead
}

// buildLaunchLine constructs the shell line injected into a pane:
//
//	env K=V ... sh -c '[ -f rc ] && . rc; exec <launch>'
//
// exec replaces the shell so the pane's process is the worker itself and
// pane liveness tracks the worker, not an intermediate shell.
func buildLaunchLine(spec WorkerSpec) string {
	var sb strings.Builder
	sb.WriteString("env")

	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(shellQuote(spec.Env[k]))
	}

	var inner string
	if spec.RCFile != "" {
		inner = fmt.Sprintf("[ -f %s ] && . %s; ", spec.RCFile, spec.RCFile)
	}
	inner += "exec " + spec.LaunchLine

	sb.WriteString(" sh -c ")
	sb.WriteString(shellQuote(inner))
	return sb.String()
}

// shellQuote single-quotes a string for the shell, escaping embedded
// single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
