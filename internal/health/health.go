// Package health classifies worker liveness and derives the team phase.
// Everything here is a pure function of the latest snapshot inputs; no
// state is stored, so a fresh snapshot can legitimately move the phase
// backwards (e.g. fixing back to executing when a failed task is retried).
package health

import (
	"time"

	"github.com/mhelleborg/taskforce/internal/team"
)

// Phase is the team's derived execution phase.
type Phase string

const (
	PhasePlanning  Phase = "planning"
	PhaseExecuting Phase = "executing"
	PhaseFixing    Phase = "fixing"
	PhaseCompleted Phase = "completed"
)

// DerivePhase maps task counts to a phase:
//
//	pending only (nothing started, nothing finished) → planning
//	all done, none failed                            → completed
//	all done, some failed                            → fixing
//	anything else                                    → executing
func DerivePhase(c team.Counts) Phase {
	switch {
	case c.Pending > 0 && c.InProgress == 0 && c.Completed == 0:
		return PhasePlanning
	case c.Pending == 0 && c.InProgress == 0 && c.Failed > 0:
		return PhaseFixing
	case c.Pending == 0 && c.InProgress == 0 && c.Completed > 0:
		return PhaseCompleted
	default:
		return PhaseExecuting
	}
}

// WorkerStatus is one worker's entry in a team snapshot.
type WorkerStatus struct {
	Name          string
	PaneID        string
	AgentType     string
	Alive         bool
	Stalled       bool
	CurrentTaskID string
	LastHeartbeat *time.Time
}

// Heartbeat holds the classified view of a worker's heartbeat file.
type Heartbeat struct {
	Stalled       bool
	CurrentTaskID string
	LastHeartbeat *time.Time
	Malformed     bool
}

// ClassifyHeartbeat evaluates a heartbeat read against the stall
// threshold. A worker that never reported (missing file) is not stalled:
// only a worker that reported once and then went silent is. Malformed
// files are treated as absent but flagged so the caller can log them.
func ClassifyHeartbeat(read team.HeartbeatRead, now time.Time, threshold time.Duration) Heartbeat {
	switch read.State {
	case team.ReadMissing:
		return Heartbeat{}
	case team.ReadMalformed:
		return Heartbeat{Malformed: true}
	}

	last := read.Record.UpdatedAt
	return Heartbeat{
		Stalled:       now.Sub(last) > threshold,
		CurrentTaskID: read.Record.CurrentTaskID,
		LastHeartbeat: &last,
	}
}
