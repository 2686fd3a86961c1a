package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mhelleborg/taskforce/internal/orchestrator"
	"github.com/mhelleborg/taskforce/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <team>",
	Short: "Watch a team live in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	fetch := func() (*orchestrator.TeamSnapshot, error) {
		return orch.MonitorTeam(rt)
	}

	p := tea.NewProgram(ui.NewWatch(rt.Team, fetch), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
