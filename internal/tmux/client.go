package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mhelleborg/taskforce/internal/errs"
)

// Runner executes one tmux invocation and returns its trimmed output.
// Implementations must honor the context deadline.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type execRunner struct {
	bin string
}

func (r execRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("tmux %s: %w", args[0], ctx.Err())
		}
		return "", fmt.Errorf("tmux %s: %s (%w)", args[0], trimmed, err)
	}
	return trimmed, nil
}

// Client issues tmux commands against a binary resolved once at
// construction. Every call is bounded by the client's timeout, so a hung
// tmux server cannot block the orchestrator indefinitely.
type Client struct {
	runner  Runner
	timeout time.Duration
}

// NewClient resolves the tmux binary on PATH. A missing binary is a
// precondition failure, reported before any session state exists.
func NewClient(timeout time.Duration) (*Client, error) {
	bin, err := exec.LookPath("tmux")
	if err != nil {
		return nil, errs.NewPrecondition("tmux on PATH", err)
	}
	return &Client{runner: execRunner{bin: bin}, timeout: timeout}, nil
}

// NewClientWithRunner creates a Client with a custom runner (for testing).
func NewClientWithRunner(r Runner, timeout time.Duration) *Client {
	return &Client{runner: r, timeout: timeout}
}

func (c *Client) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.runner.Run(ctx, args...)
}

// HasSession reports whether a session with the given name exists.
func (c *Client) HasSession(name string) bool {
	_, err := c.run("has-session", "-t", "="+name)
	return err == nil
}

// NewSession creates a detached session and returns its first pane ID.
func (c *Client) NewSession(name, dir string) (string, error) {
	out, err := c.run("new-session", "-d", "-s", name, "-c", dir, "-P", "-F", "#{pane_id}")
	if err != nil {
		return "", fmt.Errorf("create session %s: %w", name, err)
	}
	return out, nil
}

// KillSession destroys a session and every pane in it.
func (c *Client) KillSession(name string) error {
	if _, err := c.run("kill-session", "-t", "="+name); err != nil {
		return fmt.Errorf("kill session %s: %w", name, err)
	}
	return nil
}

// ListPanes returns the pane IDs of every pane in the session, in tmux's
// creation order. Pane IDs (%N) are stable across layout changes and are
// never reused within a running server.
func (c *Client) ListPanes(session string) ([]string, error) {
	out, err := c.run("list-panes", "-s", "-t", "="+session, "-F", "#{pane_id}")
	if err != nil {
		return nil, fmt.Errorf("list panes for %s: %w", session, err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// SplitPane splits the target pane without focusing the new pane. The
// new pane's ID is not reported here; callers discover it by diffing
// ListPanes against the IDs they already know, which stays correct even
// when layout changes reorder visual positions.
func (c *Client) SplitPane(target string, horizontal bool, dir string) error {
	args := []string{"split-window", "-t", target, "-d", "-c", dir}
	if horizontal {
		args = append(args, "-h")
	} else {
		args = append(args, "-v")
	}
	if _, err := c.run(args...); err != nil {
		return fmt.Errorf("split pane %s: %w", target, err)
	}
	return nil
}

// SelectLayout applies a named layout to the session's active window.
func (c *Client) SelectLayout(session, layout string) error {
	if _, err := c.run("select-layout", "-t", "="+session, layout); err != nil {
		return fmt.Errorf("select layout %s: %w", layout, err)
	}
	return nil
}

// SendLiteral sends text to a pane as literal keystrokes. The -l flag
// stops tmux from reinterpreting characters in the text as key names.
func (c *Client) SendLiteral(paneID, text string) error {
	if _, err := c.run("send-keys", "-t", paneID, "-l", "--", text); err != nil {
		return fmt.Errorf("send literal to %s: %w", paneID, err)
	}
	return nil
}

// SendEnter sends the Enter key to a pane. Kept separate from SendLiteral
// so the command text itself can never contain an interpreted key name.
func (c *Client) SendEnter(paneID string) error {
	if _, err := c.run("send-keys", "-t", paneID, "Enter"); err != nil {
		return fmt.Errorf("send enter to %s: %w", paneID, err)
	}
	return nil
}

// PaneDead reports whether a pane's process has exited. An error means
// the pane could not be queried at all (usually: it no longer exists).
func (c *Client) PaneDead(paneID string) (bool, error) {
	out, err := c.run("display-message", "-t", paneID, "-p", "#{pane_dead}")
	if err != nil {
		return false, fmt.Errorf("query pane %s: %w", paneID, err)
	}
	return out == "1", nil
}
