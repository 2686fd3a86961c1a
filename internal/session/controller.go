// Package session manages the tmux session that hosts a team: one
// leader pane plus one pane per worker.
package session

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mhelleborg/taskforce/internal/errs"
	"github.com/mhelleborg/taskforce/internal/tmux"
)

const maxNameLen = 50

// Session describes a created team session.
type Session struct {
	Name        string
	LeaderPane  string
	WorkerPanes []string
}

// Controller drives session and pane lifecycle through tmux.
type Controller struct {
	tmux tmux.Ops
}

// NewController creates a Controller on top of the given tmux ops.
func NewController(t tmux.Ops) *Controller {
	return &Controller{tmux: t}
}

// SanitizeName reduces a team name to [A-Za-z0-9-], truncated to 50
// characters. Names that reduce to fewer than 2 characters are rejected.
// Idempotent: sanitizing a sanitized name is a no-op.
func SanitizeName(name string) (string, error) {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) < 2 {
		return "", errs.NewValidation("team name", name, "fewer than 2 valid characters")
	}
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s, nil
}

// SessionName derives the tmux session name for a team.
func SessionName(teamName string) (string, error) {
	return SanitizeName(teamName)
}

// CreateTeamSession creates a session with a leader pane and workerCount
// worker panes, all rooted at cwd. The first worker split is horizontal
// off the leader; each subsequent split is vertical off the previous
// worker pane. After all splits a tiled layout is applied so panes stay
// readable at any count.
func (c *Controller) CreateTeamSession(teamName string, workerCount int, cwd string) (*Session, error) {
	name, err := SanitizeName(teamName)
	if err != nil {
		return nil, err
	}

	leader, err := c.tmux.NewSession(name, cwd)
	if err != nil {
		return nil, fmt.Errorf("create team session: %w", err)
	}

	known := map[string]bool{leader: true}
	sess := &Session{Name: name, LeaderPane: leader}

	for i := 0; i < workerCount; i++ {
		target := leader
		horizontal := true
		if i > 0 {
			target = sess.WorkerPanes[i-1]
			horizontal = false
		}

		if err := c.tmux.SplitPane(target, horizontal, cwd); err != nil {
			return nil, fmt.Errorf("split pane for worker %d: %w", i+1, err)
		}

		paneID, err := c.discoverNewPane(name, known)
		if err != nil {
			return nil, fmt.Errorf("resolve pane for worker %d: %w", i+1, err)
		}
		known[paneID] = true
		sess.WorkerPanes = append(sess.WorkerPanes, paneID)
	}

	// Layout is cosmetic; a failure here does not invalidate the session.
	if err := c.tmux.SelectLayout(name, "tiled"); err != nil {
		slog.Warn("apply tiled layout failed", "session", name, "error", err)
	}

	return sess, nil
}

// AddWorkerPane splits one new pane into an existing session, for
// respawning a worker whose pane died. The new pane splits off the last
// worker pane, or horizontally off the leader when no workers remain.
func (c *Controller) AddWorkerPane(sess *Session, cwd string) (string, error) {
	target := sess.LeaderPane
	horizontal := true
	if n := len(sess.WorkerPanes); n > 0 {
		target = sess.WorkerPanes[n-1]
		horizontal = false
	}

	known := make(map[string]bool, len(sess.WorkerPanes)+1)
	known[sess.LeaderPane] = true
	for _, p := range sess.WorkerPanes {
		known[p] = true
	}
	// Panes added outside our control (e.g. by hand) must not be
	// mistaken for the one we are about to create.
	live, err := c.tmux.ListPanes(sess.Name)
	if err != nil {
		return "", fmt.Errorf("list panes before respawn: %w", err)
	}
	for _, p := range live {
		known[p] = true
	}

	if err := c.tmux.SplitPane(target, horizontal, cwd); err != nil {
		return "", fmt.Errorf("split pane for respawn: %w", err)
	}

	paneID, err := c.discoverNewPane(sess.Name, known)
	if err != nil {
		return "", fmt.Errorf("resolve respawned pane: %w", err)
	}
	sess.WorkerPanes = append(sess.WorkerPanes, paneID)

	if err := c.tmux.SelectLayout(sess.Name, "tiled"); err != nil {
		slog.Warn("apply tiled layout failed", "session", sess.Name, "error", err)
	}
	return paneID, nil
}

// Has reports whether a session with the given name exists.
func (c *Controller) Has(sessionName string) bool {
	return c.tmux.HasSession(sessionName)
}

// ListPanes returns the session's pane IDs in creation order. The first
// pane is always the leader.
func (c *Controller) ListPanes(sessionName string) ([]string, error) {
	return c.tmux.ListPanes(sessionName)
}

// Destroy kills the session. Best-effort: a session that is already gone
// is not an error worth surfacing.
func (c *Controller) Destroy(sessionName string) {
	if err := c.tmux.KillSession(sessionName); err != nil {
		slog.Warn("kill session failed", "session", sessionName, "error", err)
	}
}

// discoverNewPane diffs the live pane list against known IDs and returns
// the single pane that appeared.
func (c *Controller) discoverNewPane(sessionName string, known map[string]bool) (string, error) {
	panes, err := c.tmux.ListPanes(sessionName)
	if err != nil {
		return "", err
	}

	var fresh []string
	for _, p := range panes {
		if !known[p] {
			fresh = append(fresh, p)
		}
	}
	switch len(fresh) {
	case 1:
		return fresh[0], nil
	case 0:
		return "", fmt.Errorf("no new pane appeared in session %s", sessionName)
	default:
		return "", fmt.Errorf("expected one new pane in session %s, found %d", sessionName, len(fresh))
	}
}
