package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var shutdownCmd = &cobra.Command{
	Use:   "shutdown <team>",
	Short: "Shut a team down and remove its state",
	Long: `Shutdown asks the workers to wind down, waits a bounded time for their
acknowledgements, then kills the tmux session and deletes the team's
state directory. Workers that never acknowledge are taken down with
the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runShutdown,
}

func init() {
	rootCmd.AddCommand(shutdownCmd)
}

func runShutdown(cmd *cobra.Command, args []string) error {
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

	report := orch.ShutdownTeam(rt)
	fmt.Printf("Team %s shut down: %d acked", rt.Team, len(report.Acked))
	if len(report.Abandoned) > 0 {
		fmt.Printf(", abandoned: %s", strings.Join(report.Abandoned, ", "))
	}
	fmt.Println()
	return nil
}
