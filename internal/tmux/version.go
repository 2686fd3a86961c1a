package tmux

import (
	"fmt"
	"strconv"
	"strings"
)

// CheckVersion returns the tmux version string and warns if < 3.0.
// Pane IDs in -F formats and the -l send-keys flag behave differently on
// older servers.
func (c *Client) CheckVersion() (string, error) {
	out, err := c.run("-V")
	if err != nil {
		return "", fmt.Errorf("get tmux version: %w", err)
	}

	version := out
	// tmux outputs something like "tmux 3.4"
	parts := strings.Fields(version)
	if len(parts) < 2 {
		return version, nil
	}

	numStr := parts[1]
	// Strip trailing non-numeric suffixes like "a" in "3.3a"
	numStr = strings.TrimRight(numStr, "abcdefghijklmnopqrstuvwxyz")
	major, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return version, nil
	}

	if major < 3.0 {
		return version, fmt.Errorf("tmux version %s is below 3.0; some features may not work correctly", version)
	}

	return version, nil
}
