package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <team>",
	Short: "Reattach to a running team",
	Long: `Resume rebuilds the team's runtime from the persisted config and the
live tmux panes. Worker names are re-derived from pane creation order:
the first pane is the leader, the rest are worker-1, worker-2, and so
on.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Team %s resumed: session %s, %d workers\n", rt.Team, rt.SessionName, len(rt.Workers))
	for _, w := range rt.Workers {
		fmt.Printf("  %s (%s) in pane %s\n", w.Name, w.AgentType, w.PaneID)
	}
	return nil
}
