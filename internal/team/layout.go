package team

import "path/filepath"

// stateDirName is the project-scoped state root created under the team's
// working directory.
const stateDirName = ".taskforce"

// Marker and state file names shared with worker processes.
const (
	configFileName   = "config.json"
	shutdownFileName = "shutdown.json"
	inboxFileName    = "inbox.md"
	heartbeatFileName = "heartbeat.json"
	readyFileName    = ".ready"
	ackFileName      = "shutdown-ack.json"
	overlayFileName  = "context.md"
	contractFileName = "contract.sh"
	lockFileName     = "board.lock"
)

// Paths resolves every file in a team's state directory. All paths are
// derived from (cwd, team) so orchestrator and workers agree by
// construction.
type Paths struct {
	root string
}

// NewPaths returns the path layout for a team rooted at cwd.
func NewPaths(cwd, teamName string) Paths {
	return Paths{root: filepath.Join(cwd, stateDirName, "teams", teamName)}
}

// Root is the team's state directory.
func (p Paths) Root() string { return p.root }

// ConfigPath is the persisted team config.
func (p Paths) ConfigPath() string { return filepath.Join(p.root, configFileName) }

// TasksDir holds one JSON file per task.
func (p Paths) TasksDir() string { return filepath.Join(p.root, "tasks") }

// TaskPath is the record for one task id.
func (p Paths) TaskPath(id string) string { return filepath.Join(p.TasksDir(), id+".json") }

// WorkersDir holds one subdirectory per worker.
func (p Paths) WorkersDir() string { return filepath.Join(p.root, "workers") }

// WorkerDir is a worker's private state directory.
func (p Paths) WorkerDir(worker string) string { return filepath.Join(p.WorkersDir(), worker) }

// InboxPath is the worker's append-only message log.
func (p Paths) InboxPath(worker string) string {
	return filepath.Join(p.WorkerDir(worker), inboxFileName)
}

// HeartbeatPath is the worker-written heartbeat file.
func (p Paths) HeartbeatPath(worker string) string {
	return filepath.Join(p.WorkerDir(worker), heartbeatFileName)
}

// ReadyPath is the worker-written readiness sentinel. Its existence, not
// its content, is the signal.
func (p Paths) ReadyPath(worker string) string {
	return filepath.Join(p.WorkerDir(worker), readyFileName)
}

// AckPath is the worker-written shutdown acknowledgement sentinel.
func (p Paths) AckPath(worker string) string {
	return filepath.Join(p.WorkerDir(worker), ackFileName)
}

// OverlayPath is the worker's rendered role/context document.
func (p Paths) OverlayPath(worker string) string {
	return filepath.Join(p.WorkerDir(worker), overlayFileName)
}

// ContractPath is the shell helper documenting the worker file contract.
func (p Paths) ContractPath(worker string) string {
	return filepath.Join(p.WorkerDir(worker), contractFileName)
}

// ShutdownPath is the orchestrator-written shutdown request marker.
func (p Paths) ShutdownPath() string { return filepath.Join(p.root, shutdownFileName) }

// LockPath is the board's cross-process lock file.
func (p Paths) LockPath() string { return filepath.Join(p.root, lockFileName) }
