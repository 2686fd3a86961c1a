// Package orchestrator composes session, launcher, board, and health
// into the team lifecycle: start, monitor, assign, shutdown, resume.
//
// The orchestrator and its workers share no memory. Everything flows
// through the team's state directory plus best-effort pane keystrokes,
// and every wait is a fixed-interval poll with an explicit deadline.
package orchestrator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mhelleborg/taskforce/internal/config"
	"github.com/mhelleborg/taskforce/internal/health"
	"github.com/mhelleborg/taskforce/internal/launcher"
	"github.com/mhelleborg/taskforce/internal/roles"
	"github.com/mhelleborg/taskforce/internal/session"
	"github.com/mhelleborg/taskforce/internal/team"
	"github.com/mhelleborg/taskforce/internal/tmux"
)

// WorkerHandle identifies one worker: a deterministic 1-based name, the
// pane hosting it, and its agent type. Pane IDs are opaque and stable;
// within one session a pane is never reused for a different worker.
type WorkerHandle struct {
	Name      string
	PaneID    string
	AgentType string
}

// Runtime is the live handle for a started or resumed team.
type Runtime struct {
	Team        string
	Cwd         string
	SessionName string
	LeaderPane  string
	Workers     []WorkerHandle

	// NotReady lists workers that missed the ready deadline at startup.
	// The runtime is still returned; these workers may be non-functional.
	NotReady []string
}

// Worker returns the handle for a worker name.
func (r *Runtime) Worker(name string) (*WorkerHandle, bool) {
	for i := range r.Workers {
		if r.Workers[i].Name == name {
			return &r.Workers[i], true
		}
	}
	return nil, false
}

// TeamSnapshot is the aggregated monitoring view. Phase is derived from
// task counts on every call, never stored.
type TeamSnapshot struct {
	Phase       health.Phase
	Workers     []health.WorkerStatus
	Counts      team.Counts
	DeadWorkers []string
}

// StartRequest describes a team to start.
type StartRequest struct {
	TeamName    string
	WorkerCount int
	AgentTypes  []string // per worker; short lists are padded with "default"
	Tasks       []team.TaskDef
	Cwd         string
}

// ShutdownReport summarizes a shutdown: which workers acknowledged in
// time and which were abandoned to the session kill.
type ShutdownReport struct {
	Acked     []string
	Abandoned []string
}

// Orchestrator drives team lifecycles.
type Orchestrator struct {
	cfg      config.Config
	sessions *session.Controller
	launcher *launcher.Launcher
	roles    *roles.Library
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLauncher overrides the worker launcher.
func WithLauncher(l *launcher.Launcher) Option {
	return func(o *Orchestrator) { o.launcher = l }
}

// New creates an Orchestrator on top of the given tmux ops and role
// library.
func New(cfg config.Config, t tmux.Ops, lib *roles.Library, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		sessions: session.NewController(t),
		launcher: launcher.New(t, cfg.PollInterval()),
		roles:    lib,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) board(teamName, cwd string) *team.Board {
	return team.NewBoard(team.NewPaths(cwd, teamName))
}

func (o *Orchestrator) agentType(types []string, i int) string {
	if i < len(types) && types[i] != "" {
		return types[i]
	}
	return "default"
}

// StartTeam brings up a team end to end: validate, persist state, create
// the session, launch workers, and wait for readiness. There is no
// rollback on partial failure past the validation steps; workers that
// never signal ready are reported in Runtime.NotReady, not aborted.
func (o *Orchestrator) StartTeam(req StartRequest) (*Runtime, error) {
	name, err := session.SanitizeName(req.TeamName)
	if err != nil {
		return nil, err
	}

	agentTypes := make([]string, req.WorkerCount)
	for i := range agentTypes {
		agentTypes[i] = o.agentType(req.AgentTypes, i)
	}

	// Launchability is checked before any state exists.
	if err := o.roles.ValidateLaunchable(agentTypes); err != nil {
		return nil, err
	}

	board := o.board(name, req.Cwd)
	cfg := team.Config{
		TeamName:    name,
		WorkerCount: req.WorkerCount,
		AgentTypes:  agentTypes,
		Tasks:       req.Tasks,
		Cwd:         req.Cwd,
		CreatedAt:   o.now(),
	}
	if err := board.Init(cfg); err != nil {
		return nil, fmt.Errorf("init team state: %w", err)
	}

	for i := 0; i < req.WorkerCount; i++ {
		if err := o.seedWorker(board, name, team.WorkerName(i), agentTypes[i], req.Cwd); err != nil {
			return nil, err
		}
	}

	sess, err := o.sessions.CreateTeamSession(name, req.WorkerCount, req.Cwd)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Team:        name,
		Cwd:         req.Cwd,
		SessionName: sess.Name,
		LeaderPane:  sess.LeaderPane,
	}
	for i, paneID := range sess.WorkerPanes {
		rt.Workers = append(rt.Workers, WorkerHandle{
			Name:      team.WorkerName(i),
			PaneID:    paneID,
			AgentType: agentTypes[i],
		})
	}

	for _, w := range rt.Workers {
		if err := o.launcher.SpawnWorker(w.PaneID, o.workerSpec(board, rt, w)); err != nil {
			return nil, err
		}
	}

	rt.NotReady = o.awaitReady(board, rt.Workers)
	slog.Info("team started", "team", name, "workers", len(rt.Workers), "notReady", len(rt.NotReady))
	return rt, nil
}

// seedWorker prepares one worker's state directory: overlay document,
// contract script, and the welcome inbox entry.
func (o *Orchestrator) seedWorker(board *team.Board, teamName, worker, agentType, cwd string) error {
	if err := board.InitWorker(worker); err != nil {
		return err
	}

	role := o.roles.Resolve(agentType)
	paths := board.Paths()
	overlay, err := roles.RenderOverlay(role, roles.OverlayData{
		Team:      teamName,
		Worker:    worker,
		AgentType: agentType,
		Cwd:       cwd,
		TasksDir:  paths.TasksDir(),
		Inbox:     paths.InboxPath(worker),
	})
	if err != nil {
		return err
	}
	if err := board.WriteOverlay(worker, overlay); err != nil {
		return err
	}
	if err := board.WriteContractScript(worker); err != nil {
		return err
	}
	welcome := team.WelcomeBlock(worker, paths.OverlayPath(worker), paths.TasksDir())
	if err := board.AppendInbox(worker, welcome); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) workerSpec(board *team.Board, rt *Runtime, w WorkerHandle) launcher.WorkerSpec {
	role := o.roles.Resolve(w.AgentType)
	paths := board.Paths()
	return launcher.WorkerSpec{
		Worker:     w.Name,
		LaunchLine: role.LaunchLine(),
		RCFile:     o.cfg.Workers.RCFile,
		Env: map[string]string{
			"TASKFORCE_TEAM":       rt.Team,
			"TASKFORCE_WORKER":     w.Name,
			"TASKFORCE_AGENT_TYPE": w.AgentType,
			"TASKFORCE_STATE_DIR":  paths.WorkerDir(w.Name),
			"TASKFORCE_TEAM_DIR":   paths.Root(),
		},
	}
}

// awaitReady waits for every worker's ready sentinel concurrently, so
// one slow worker does not delay polling the others. Timeouts are
// logged and reported, never fatal.
func (o *Orchestrator) awaitReady(board *team.Board, workers []WorkerHandle) []string {
	var (
		mu       sync.Mutex
		notReady []string
		wg       sync.WaitGroup
	)
	for _, w := range workers {
		wg.Add(1)
		go func(w WorkerHandle) {
			defer wg.Done()
			if o.launcher.WaitForReady(board, w.Name, o.cfg.ReadyTimeout()) {
				return
			}
			slog.Warn("worker not ready before deadline", "worker", w.Name, "timeout", o.cfg.ReadyTimeout())
			mu.Lock()
			notReady = append(notReady, w.Name)
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return notReady
}

// MonitorTeam assembles a fresh snapshot: task counts from a full board
// scan, pane liveness, and heartbeat classification per worker. The only
// side effect is a warning log line per stalled worker.
func (o *Orchestrator) MonitorTeam(rt *Runtime) (*TeamSnapshot, error) {
	board := o.board(rt.Team, rt.Cwd)

	counts, err := board.CountTasks()
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	snap := &TeamSnapshot{
		Counts: counts,
		Phase:  health.DerivePhase(counts),
	}

	now := o.now()
	for _, w := range rt.Workers {
		hb := health.ClassifyHeartbeat(board.ReadHeartbeat(w.Name), now, o.cfg.StallThreshold())
		if hb.Malformed {
			slog.Warn("worker heartbeat unreadable", "worker", w.Name)
		}
		if hb.Stalled {
			slog.Warn("worker stalled", "worker", w.Name, "lastHeartbeat", hb.LastHeartbeat, "task", hb.CurrentTaskID)
		}

		alive := o.launcher.IsWorkerAlive(w.PaneID)
		if !alive {
			snap.DeadWorkers = append(snap.DeadWorkers, w.Name)
		}

		snap.Workers = append(snap.Workers, health.WorkerStatus{
			Name:          w.Name,
			PaneID:        w.PaneID,
			AgentType:     w.AgentType,
			Alive:         alive,
			Stalled:       hb.Stalled,
			CurrentTaskID: hb.CurrentTaskID,
			LastHeartbeat: hb.LastHeartbeat,
		})
	}
	return snap, nil
}

// AssignTask hands a task to a worker: the task record becomes owned and
// in_progress, the worker's inbox gains an assignment block, and a short
// trigger is sent to the pane. The trigger is advisory; the board write
// is the delivery.
func (o *Orchestrator) AssignTask(rt *Runtime, taskID, workerName string) error {
	w, ok := rt.Worker(workerName)
	if !ok {
		return fmt.Errorf("worker %s not in team %s", workerName, rt.Team)
	}

	board := o.board(rt.Team, rt.Cwd)
	now := o.now()

	rec, err := board.Assign(taskID, workerName, now)
	if err != nil {
		return err
	}

	block := team.AssignmentBlock(rec, board.Paths().TaskPath(taskID), now)
	if err := board.AppendInbox(workerName, block); err != nil {
		return err
	}

	if !o.launcher.SendToWorker(w.PaneID, "new-task:"+taskID) {
		slog.Warn("task trigger not delivered", "worker", workerName, "task", taskID)
	}

	slog.Info("task assigned", "team", rt.Team, "task", taskID, "worker", workerName)
	return nil
}

// ShutdownTeam winds a team down within the configured deadline: write
// the shutdown request, poll for acks, then unconditionally destroy the
// session and delete the state directory. Workers that never ack are
// abandoned to the session kill. Never returns an error; it always
// completes within the deadline plus a small constant.
func (o *Orchestrator) ShutdownTeam(rt *Runtime) ShutdownReport {
	board := o.board(rt.Team, rt.Cwd)

	if err := board.WriteShutdownRequest(o.now()); err != nil {
		slog.Warn("write shutdown request failed", "team", rt.Team, "error", err)
	}

	pending := make(map[string]bool, len(rt.Workers))
	for _, w := range rt.Workers {
		pending[w.Name] = true
	}

	var report ShutdownReport
	deadline := time.Now().Add(o.cfg.ShutdownTimeout())
	for len(pending) > 0 && time.Now().Before(deadline) {
		for name := range pending {
			if board.AckExists(name) {
				delete(pending, name)
				report.Acked = append(report.Acked, name)
			}
		}
		if len(pending) == 0 {
			break
		}
		time.Sleep(o.cfg.PollInterval())
	}

	for name := range pending {
		report.Abandoned = append(report.Abandoned, name)
	}
	if len(report.Abandoned) > 0 {
		slog.Warn("workers did not ack shutdown", "team", rt.Team, "workers", report.Abandoned)
	}

	// The session kill takes any stragglers with it.
	o.sessions.Destroy(rt.SessionName)
	board.Delete()

	slog.Info("team shut down", "team", rt.Team, "acked", len(report.Acked), "abandoned", len(report.Abandoned))
	return report
}

// ResumeTeam reattaches to a running team from persisted config and live
// panes. Returns nil (not an error) when there is nothing to resume.
// Worker names are re-derived positionally from pane creation order; no
// per-pane identity mapping is persisted.
func (o *Orchestrator) ResumeTeam(teamName, cwd string) (*Runtime, error) {
	name, err := session.SanitizeName(teamName)
	if err != nil {
		return nil, err
	}

	board := o.board(name, cwd)
	cfg, err := board.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		slog.Info("no persisted team to resume", "team", name)
		return nil, nil
	}

	if !o.sessions.Has(name) {
		slog.Info("no live session for team", "team", name)
		return nil, nil
	}

	panes, err := o.sessions.ListPanes(name)
	if err != nil {
		return nil, fmt.Errorf("enumerate panes: %w", err)
	}
	if len(panes) == 0 {
		slog.Info("session has no panes", "team", name)
		return nil, nil
	}

	workerPanes := panes[1:]
	if len(workerPanes) != cfg.WorkerCount {
		slog.Warn("live pane count differs from persisted worker count",
			"team", name, "live", len(workerPanes), "persisted", cfg.WorkerCount)
	}

	rt := &Runtime{
		Team:        name,
		Cwd:         cwd,
		SessionName: name,
		LeaderPane:  panes[0],
	}
	for i, paneID := range workerPanes {
		rt.Workers = append(rt.Workers, WorkerHandle{
			Name:      team.WorkerName(i),
			PaneID:    paneID,
			AgentType: o.agentType(cfg.AgentTypes, i),
		})
	}

	slog.Info("team resumed", "team", name, "workers", len(rt.Workers))
	return rt, nil
}

// RespawnWorker splits a fresh pane and relaunches a worker whose pane
// died. Manual recovery only; the monitor never invokes this itself.
func (o *Orchestrator) RespawnWorker(rt *Runtime, workerName string) error {
	w, ok := rt.Worker(workerName)
	if !ok {
		return fmt.Errorf("worker %s not in team %s", workerName, rt.Team)
	}

	sess := &session.Session{
		Name:       rt.SessionName,
		LeaderPane: rt.LeaderPane,
	}
	for _, h := range rt.Workers {
		sess.WorkerPanes = append(sess.WorkerPanes, h.PaneID)
	}

	paneID, err := o.sessions.AddWorkerPane(sess, rt.Cwd)
	if err != nil {
		return err
	}

	board := o.board(rt.Team, rt.Cwd)
	w.PaneID = paneID
	if err := o.launcher.SpawnWorker(paneID, o.workerSpec(board, rt, *w)); err != nil {
		return err
	}

	slog.Info("worker respawned", "team", rt.Team, "worker", workerName, "pane", paneID)
	return nil
}
