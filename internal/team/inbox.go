package team

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// AppendInbox appends a block to a worker's inbox log. The inbox is
// append-only; workers read it, they never truncate it.
func (b *Board) AppendInbox(worker, block string) error {
	f, err := os.OpenFile(b.paths.InboxPath(worker), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open inbox for %s: %w", worker, err)
	}
	defer f.Close()

	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	if _, err := f.WriteString(block + "\n"); err != nil {
		return fmt.Errorf("append inbox for %s: %w", worker, err)
	}
	return nil
}

// AssignmentBlock formats a task assignment for a worker's inbox. The
// trigger message a worker receives is only a nudge; this block plus the
// task file is the authoritative delivery.
func AssignmentBlock(rec TaskRecord, taskPath string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("## New task assignment\n\n")
	fmt.Fprintf(&sb, "- Task ID: %s\n", rec.ID)
	fmt.Fprintf(&sb, "- Subject: %s\n", rec.Subject)
	fmt.Fprintf(&sb, "- Task file: %s\n", taskPath)
	fmt.Fprintf(&sb, "- Assigned: %s\n", now.Format(time.RFC3339))
	if rec.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(rec.Description)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WelcomeBlock formats the seed message written into a fresh inbox,
// pointing the worker at its context overlay and the task board.
func WelcomeBlock(worker, overlayPath, tasksDir string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Welcome, %s\n\n", worker)
	fmt.Fprintf(&sb, "Your role and working context: %s\n", overlayPath)
	fmt.Fprintf(&sb, "Task board: %s\n", tasksDir)
	sb.WriteString("\nUpdate your assigned task's file as you make progress, ")
	sb.WriteString("and keep your heartbeat fresh (see contract.sh).\n")
	return sb.String()
}
