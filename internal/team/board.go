package team

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Board is the task board plus the rest of a team's persisted state.
// Task files are the single source of truth for work state; counts are
// recomputed from them on every read so they cannot drift after a crash.
type Board struct {
	paths Paths
}

// NewBoard creates a Board over the given path layout.
func NewBoard(paths Paths) *Board {
	return &Board{paths: paths}
}

// Paths exposes the board's path layout.
func (b *Board) Paths() Paths { return b.paths }

// Init creates the team state tree and persists the config plus one
// pending task record per task definition. Task ids are 1-based ordinals
// in definition order.
func (b *Board) Init(cfg Config) error {
	for _, dir := range []string{b.paths.Root(), b.paths.TasksDir(), b.paths.WorkersDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	if err := writeJSONAtomic(b.paths.ConfigPath(), cfg); err != nil {
		return fmt.Errorf("persist team config: %w", err)
	}

	for i, def := range cfg.Tasks {
		rec := TaskRecord{
			ID:          strconv.Itoa(i + 1),
			Subject:     def.Subject,
			Description: def.Description,
			Status:      TaskPending,
			Owner:       nil,
			CreatedAt:   cfg.CreatedAt,
		}
		if err := writeJSONAtomic(b.paths.TaskPath(rec.ID), rec); err != nil {
			return fmt.Errorf("persist task %s: %w", rec.ID, err)
		}
	}
	return nil
}

// InitWorker creates a worker's private state directory.
func (b *Board) InitWorker(worker string) error {
	if err := os.MkdirAll(b.paths.WorkerDir(worker), 0o755); err != nil {
		return fmt.Errorf("create worker dir for %s: %w", worker, err)
	}
	return nil
}

// LoadConfig reads the persisted team config. Returns nil, nil if the
// team has no persisted state.
func (b *Board) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(b.paths.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read team config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse team config: %w", err)
	}
	return &cfg, nil
}

// ReadTask reads one task record as a tagged result.
func (b *Board) ReadTask(id string) TaskRead {
	data, err := os.ReadFile(b.paths.TaskPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return TaskRead{State: ReadMissing}
		}
		return TaskRead{State: ReadMalformed, Err: err}
	}

	var rec TaskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return TaskRead{State: ReadMalformed, Err: err}
	}
	return TaskRead{State: ReadOK, Record: rec}
}

// WriteTask persists a task record through a temp file and rename.
func (b *Board) WriteTask(rec TaskRecord) error {
	return writeJSONAtomic(b.paths.TaskPath(rec.ID), rec)
}

// Tasks returns every readable task record, sorted by numeric id.
// Malformed files are skipped with a warning; they still exist on disk
// but cannot be counted.
func (b *Board) Tasks() ([]TaskRecord, error) {
	entries, err := os.ReadDir(b.paths.TasksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tasks dir: %w", err)
	}

	var tasks []TaskRecord
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		read := b.ReadTask(id)
		switch read.State {
		case ReadOK:
			tasks = append(tasks, read.Record)
		case ReadMalformed:
			slog.Warn("skipping malformed task file", "task", id, "error", read.Err)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		a, _ := strconv.Atoi(tasks[i].ID)
		b, _ := strconv.Atoi(tasks[j].ID)
		return a < b
	})
	return tasks, nil
}

// CountTasks scans every task file and aggregates status counts.
func (b *Board) CountTasks() (Counts, error) {
	tasks, err := b.Tasks()
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	for _, t := range tasks {
		switch t.Status {
		case TaskPending:
			c.Pending++
		case TaskInProgress:
			c.InProgress++
		case TaskCompleted:
			c.Completed++
		case TaskFailed:
			c.Failed++
		default:
			slog.Warn("task has unknown status", "task", t.ID, "status", t.Status)
		}
	}
	return c, nil
}

// Assign marks a task in_progress and owned by the given worker. The
// read-modify-write runs under the board's file lock and lands via temp
// file + rename, so concurrent assigners serialize instead of losing
// updates.
func (b *Board) Assign(taskID, worker string, now time.Time) (TaskRecord, error) {
	lock := newFileLock(b.paths.LockPath())
	if err := lock.Lock(); err != nil {
		return TaskRecord{}, fmt.Errorf("lock board: %w", err)
	}
	defer lock.Unlock()

	read := b.ReadTask(taskID)
	switch read.State {
	case ReadMissing:
		return TaskRecord{}, fmt.Errorf("task %s not found", taskID)
	case ReadMalformed:
		return TaskRecord{}, fmt.Errorf("task %s is unreadable: %w", taskID, read.Err)
	}

	rec := read.Record
	rec.Owner = &worker
	rec.Status = TaskInProgress
	rec.AssignedAt = &now

	if err := b.WriteTask(rec); err != nil {
		return TaskRecord{}, fmt.Errorf("write task %s: %w", taskID, err)
	}
	return rec, nil
}

// Delete removes the team's entire state directory. Best-effort: the
// caller is shutting down and cannot act on a failure beyond logging.
func (b *Board) Delete() {
	if err := os.RemoveAll(b.paths.Root()); err != nil {
		slog.Warn("remove team state failed", "path", b.paths.Root(), "error", err)
	}
}

// writeJSONAtomic marshals v and writes it through a temp file and
// rename, so readers never observe a torn file.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
