package team

import (
	"fmt"
	"os"
)

// contractScript is a shell helper seeded into each worker's state
// directory. Workers source it and call the functions to honor the file
// contract: write .ready on startup, refresh heartbeat.json while
// working, and write shutdown-ack.json before exiting.
const contractScript = `#!/bin/sh
# Worker contract helpers. Source this file, then:
#   tf_ready              once your process is up
#   tf_heartbeat [taskId] periodically while working
#   tf_ack                after seeing ../../shutdown.json, before exiting
TF_DIR="$(cd "$(dirname "$0")" && pwd)"

tf_ready() {
  : > "$TF_DIR/.ready"
}

tf_heartbeat() {
  TS=$(date -u +%Y-%m-%dT%H:%M:%SZ)
  printf '{"updatedAt":"%s","currentTaskId":"%s"}\n' "$TS" "${1:-}" > "$TF_DIR/heartbeat.json.tmp"
  mv "$TF_DIR/heartbeat.json.tmp" "$TF_DIR/heartbeat.json"
}

tf_ack() {
  TS=$(date -u +%Y-%m-%dT%H:%M:%SZ)
  printf '{"ackedAt":"%s"}\n' "$TS" > "$TF_DIR/shutdown-ack.json"
}
`

// WriteContractScript writes the contract helper into a worker's state
// directory.
func (b *Board) WriteContractScript(worker string) error {
	if err := os.WriteFile(b.paths.ContractPath(worker), []byte(contractScript), 0o755); err != nil {
		return fmt.Errorf("write contract script for %s: %w", worker, err)
	}
	return nil
}
