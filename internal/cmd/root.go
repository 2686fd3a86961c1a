// Package cmd wires the CLI commands to the orchestrator.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhelleborg/taskforce/internal/config"
	"github.com/mhelleborg/taskforce/internal/orchestrator"
	"github.com/mhelleborg/taskforce/internal/roles"
	"github.com/mhelleborg/taskforce/internal/tmux"
)

var (
	flagConfig  string
	flagDir     string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "taskforce",
	Short: "Run a team of coding agents in tmux panes",
	Long: `Taskforce starts a tmux session with one pane per agent, hands tasks
to agents through a shared on-disk task board, and watches their
heartbeats. The orchestrator and the agents communicate only through
files and best-effort keystrokes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", "", "working directory for the team (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		return config.LoadFile(flagConfig)
	}
	return config.Load()
}

func workDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return dir, nil
}

// setup builds the orchestrator from config and a live tmux client.
func setup() (config.Config, *orchestrator.Orchestrator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}

	client, err := tmux.NewClient(cfg.TmuxTimeout())
	if err != nil {
		return cfg, nil, err
	}
	if _, err := client.CheckVersion(); err != nil {
		slog.Warn("tmux version check", "error", err)
	}

	lib, err := roles.Load(cfg.RolesDir(), cfg.Workers.LaunchCommand)
	if err != nil {
		return cfg, nil, err
	}

	return cfg, orchestrator.New(cfg, client, lib), nil
}
