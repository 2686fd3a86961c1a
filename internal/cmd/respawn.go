package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var respawnCmd = &cobra.Command{
	Use:   "respawn <team> <worker>",
	Short: "Relaunch a worker whose pane died",
	Long: `Respawn splits a fresh pane into the team's session and launches the
worker's agent in it. Use status to find dead workers first; respawn
is never triggered automatically.`,
	Args: cobra.ExactArgs(2),
	RunE: runRespawn,
}

func init() {
	rootCmd.AddCommand(respawnCmd)
}

func runRespawn(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no running team %q in %s", args[0], cwd)
	}

	if err := orch.RespawnWorker(rt, args[1]); err != nil {
		return err
	}

	w, _ := rt.Worker(args[1])
	fmt.Printf("Worker %s respawned in pane %s\n", w.Name, w.PaneID)
	return nil
}
