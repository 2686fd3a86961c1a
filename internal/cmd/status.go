package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <team>",
	Short: "Show a one-shot snapshot of a team",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := workDir()
	if err != nil {
		return err
	}
	_, orch, err := setup()
	if err != nil {
		return err
	}

	rt, err := orch.ResumeTeam(args[0], cwd)
	if err != nil {
		return err
	}
	if rt == nil {
		fmt.Printf("No running team %q in %s\n", args[0], cwd)
		return nil
	}

	snap, err := orch.MonitorTeam(rt)
	if err != nil {
		return err
	}

	fmt.Printf("Team: %s (session %s)\n", rt.Team, rt.SessionName)
	fmt.Printf("Phase: %s\n", snap.Phase)
	fmt.Printf("Tasks: %d pending, %d in progress, %d completed, %d failed\n\n",
		snap.Counts.Pending, snap.Counts.InProgress, snap.Counts.Completed, snap.Counts.Failed)

	for _, w := range snap.Workers {
		state := "alive"
		switch {
		case !w.Alive:
			state = "dead"
		case w.Stalled:
			state = "stalled"
		}

		hb := "never"
		if w.LastHeartbeat != nil {
			hb = time.Since(*w.LastHeartbeat).Round(time.Second).String() + " ago"
		}

		task := w.CurrentTaskID
		if task == "" {
			task = "-"
		}
		fmt.Printf("  %-12s %-10s %-8s task %-4s heartbeat %s\n", w.Name, w.AgentType, state, task, hb)
	}
	return nil
}
