package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhelleborg/taskforce/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Init writes a commented-out default config file so the available
settings are easy to discover. It does nothing if the file already
exists.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	fmt.Printf("Config at %s\n", path)
	return nil
}
