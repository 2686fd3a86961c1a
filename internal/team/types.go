// Package team owns the on-disk state shared between the orchestrator
// and its workers: team config, the task board, per-worker inboxes,
// heartbeats, and lifecycle marker files. The filesystem is the only
// channel the two sides share, so everything here is a contract.
package team

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a task. Transitions are monotonic:
// pending → in_progress → completed or failed.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// TaskDef is a task as requested at team start.
type TaskDef struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// TaskRecord is the on-disk form of a task. Owner is nil until the task
// is first assigned; once set it is only replaced by a new assignment,
// never cleared.
type TaskRecord struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Owner       *string    `json:"owner"`
	Result      string     `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
}

// Config is the on-disk structure of a team's config.json. Written once
// at team start and read back verbatim on resume.
type Config struct {
	TeamName   string    `json:"team_name"`
	WorkerCount int      `json:"worker_count"`
	AgentTypes []string  `json:"agent_types"`
	Tasks      []TaskDef `json:"tasks"`
	Cwd        string    `json:"cwd"`
	CreatedAt  time.Time `json:"created_at"`
}

// HeartbeatRecord is written periodically by a worker. Absence of the
// file means the worker never reported, which is distinct from a stale
// timestamp.
type HeartbeatRecord struct {
	UpdatedAt     time.Time `json:"updatedAt"`
	CurrentTaskID string    `json:"currentTaskId"`
}

// Counts aggregates task statuses across the board.
type Counts struct {
	Pending    int
	InProgress int
	Completed  int
	Failed     int
}

// Total returns the number of counted tasks.
func (c Counts) Total() int {
	return c.Pending + c.InProgress + c.Completed + c.Failed
}

// ReadState tags the outcome of reading a JSON state file, so callers
// decide policy per case instead of every reader silently defaulting.
type ReadState int

const (
	ReadOK ReadState = iota
	ReadMissing
	ReadMalformed
)

// TaskRead is the tagged result of reading a task record.
type TaskRead struct {
	State  ReadState
	Record TaskRecord
	Err    error
}

// HeartbeatRead is the tagged result of reading a heartbeat file.
type HeartbeatRead struct {
	State  ReadState
	Record HeartbeatRecord
	Err    error
}

// WorkerName returns the deterministic 1-based worker name for an index.
func WorkerName(i int) string {
	return fmt.Sprintf("worker-%d", i+1)
}
