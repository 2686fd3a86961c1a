package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Timing holds poll intervals and deadlines, in milliseconds.
type Timing struct {
	PollIntervalMs    int `toml:"poll_interval_ms"`
	ReadyTimeoutMs    int `toml:"ready_timeout_ms"`
	ShutdownTimeoutMs int `toml:"shutdown_timeout_ms"`
	StallThresholdMs  int `toml:"stall_threshold_ms"`
	TmuxTimeoutMs     int `toml:"tmux_timeout_ms"`
}

// Workers holds settings for how worker processes are launched.
type Workers struct {
	LaunchCommand string `toml:"launch_command"`
	RCFile        string `toml:"rc_file"`
	RolesDir      string `toml:"roles_dir"`
}

// Config is the top-level configuration.
type Config struct {
	Timing  Timing  `toml:"timing"`
	Workers Workers `toml:"workers"`
}

// Default returns a Config populated with the hardcoded defaults.
func Default() Config {
	return Config{
		Timing: Timing{
			PollIntervalMs:    500,
			ReadyTimeoutMs:    30000,
			ShutdownTimeoutMs: 30000,
			StallThresholdMs:  60000,
			TmuxTimeoutMs:     5000,
		},
		Workers: Workers{
			LaunchCommand: "claude",
			RCFile:        "~/.bashrc",
		},
	}
}

// PollInterval returns the fixed interval used by all bounded polls.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Timing.PollIntervalMs) * time.Millisecond
}

// ReadyTimeout returns the per-worker ready-sentinel deadline.
func (c Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Timing.ReadyTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the shutdown-ack deadline.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Timing.ShutdownTimeoutMs) * time.Millisecond
}

// StallThreshold returns the heartbeat age beyond which a worker is stalled.
func (c Config) StallThreshold() time.Duration {
	return time.Duration(c.Timing.StallThresholdMs) * time.Millisecond
}

// TmuxTimeout returns the per-call deadline for tmux invocations.
func (c Config) TmuxTimeout() time.Duration {
	return time.Duration(c.Timing.TmuxTimeoutMs) * time.Millisecond
}

// RolesDir returns the configured roles directory, falling back to a
// "roles" directory beside the config file.
func (c Config) RolesDir() string {
	if c.Workers.RolesDir != "" {
		return c.Workers.RolesDir
	}
	return filepath.Join(filepath.Dir(Path()), "roles")
}

// Path returns the config file path, respecting XDG_CONFIG_HOME.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "taskforce", "taskforce.toml")
}

// Load reads the config file and returns a Config. Omitted fields keep
// their default values. If the file does not exist, defaults are returned
// with no error.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a specific config file path.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

const defaultFileContent = `# Taskforce configuration
# Uncomment and modify values to customize. All values are optional.

[timing]
# poll_interval_ms    = 500    # fixed interval for all bounded polls
# ready_timeout_ms    = 30000  # per-worker ready-sentinel deadline
# shutdown_timeout_ms = 30000  # shutdown-ack deadline
# stall_threshold_ms  = 60000  # heartbeat age before a worker counts as stalled
# tmux_timeout_ms     = 5000   # per-call deadline for tmux invocations

[workers]
# launch_command = "claude"    # default command run in each worker pane
# rc_file        = "~/.bashrc" # sourced before exec'ing the launch command
# roles_dir      = ""          # directory of role YAML files (default: <config dir>/roles)
`

// WriteDefault writes the default config file with all values commented out.
// It no-ops if the file already exists. Parent directories are created as needed.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // file already exists
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(defaultFileContent), 0o644)
}
