package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign <team> <task-id> <worker>",
	Short: "Assign a task to a worker",
	Long: `Assign marks the task in-progress and owned by the worker, appends an
assignment note to the worker's inbox, and nudges the worker's pane.
The inbox plus the task file is the authoritative delivery; the pane
nudge is best-effort.`,
	Args: cobra.ExactArgs(3),
	RunE: runAssign,
}

func init() {
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
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

	if err := orch.AssignTask(rt, args[1], args[2]); err != nil {
		return err
	}
	fmt.Printf("Task %s assigned to %s\n", args[1], args[2])
	return nil
}
