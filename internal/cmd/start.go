package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhelleborg/taskforce/internal/orchestrator"
	"github.com/mhelleborg/taskforce/internal/team"
)

var (
	flagWorkers int
	flagTypes   []string
	flagTasks   []string
)

var startCmd = &cobra.Command{
	Use:   "start <team>",
	Short: "Start a team session with one pane per worker",
	Long: `Start creates the team's state directory, a detached tmux session with
a leader pane plus one pane per worker, launches the configured agent
in each worker pane, and waits for the workers' readiness markers.

Tasks are given as --task "subject" or --task "subject: description"
and start out pending and unowned.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 2, "number of worker panes")
	startCmd.Flags().StringArrayVarP(&flagTypes, "type", "t", nil, "agent type per worker, repeatable (default: default)")
	startCmd.Flags().StringArrayVar(&flagTasks, "task", nil, `task as "subject" or "subject: description", repeatable`)
	rootCmd.AddCommand(startCmd)
}

func parseTask(s string) team.TaskDef {
	subject, description, found := strings.Cut(s, ":")
	if !found {
		return team.TaskDef{Subject: strings.TrimSpace(s)}
	}
	return team.TaskDef{
		Subject:     strings.TrimSpace(subject),
		Description: strings.TrimSpace(description),
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	cwd, err := workDir()
	if err != nil {
		return err
	}
	_, orch, err := setup()
	if err != nil {
		return err
	}

	tasks := make([]team.TaskDef, 0, len(flagTasks))
	for _, t := range flagTasks {
		tasks = append(tasks, parseTask(t))
	}

	rt, err := orch.StartTeam(orchestrator.StartRequest{
		TeamName:    args[0],
		WorkerCount: flagWorkers,
		AgentTypes:  flagTypes,
		Tasks:       tasks,
		Cwd:         cwd,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Team %s started: session %s, %d workers, %d tasks\n",
		rt.Team, rt.SessionName, len(rt.Workers), len(tasks))
	for _, w := range rt.Workers {
		fmt.Printf("  %s (%s) in pane %s\n", w.Name, w.AgentType, w.PaneID)
	}
	if len(rt.NotReady) > 0 {
		fmt.Printf("Not ready before deadline: %s\n", strings.Join(rt.NotReady, ", "))
	}
	fmt.Printf("Attach with: tmux attach -t %s\n", rt.SessionName)
	return nil
}
