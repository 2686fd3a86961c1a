package team

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ShutdownRequest is the marker the orchestrator writes when asking
// workers to wind down.
type ShutdownRequest struct {
	RequestedAt time.Time `json:"requestedAt"`
}

// WriteShutdownRequest writes the team-wide shutdown marker.
func (b *Board) WriteShutdownRequest(now time.Time) error {
	if err := writeJSONAtomic(b.paths.ShutdownPath(), ShutdownRequest{RequestedAt: now}); err != nil {
		return fmt.Errorf("write shutdown request: %w", err)
	}
	return nil
}

// ReadyExists reports whether a worker has written its readiness
// sentinel. Only existence matters; content is ignored.
func (b *Board) ReadyExists(worker string) bool {
	_, err := os.Stat(b.paths.ReadyPath(worker))
	return err == nil
}

// AckExists reports whether a worker has acknowledged shutdown.
func (b *Board) AckExists(worker string) bool {
	_, err := os.Stat(b.paths.AckPath(worker))
	return err == nil
}

// ReadHeartbeat reads a worker's heartbeat file as a tagged result.
// Missing means the worker never reported; the caller must not confuse
// that with a stale heartbeat.
func (b *Board) ReadHeartbeat(worker string) HeartbeatRead {
	data, err := os.ReadFile(b.paths.HeartbeatPath(worker))
	if err != nil {
		if os.IsNotExist(err) {
			return HeartbeatRead{State: ReadMissing}
		}
		return HeartbeatRead{State: ReadMalformed, Err: err}
	}

	var rec HeartbeatRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return HeartbeatRead{State: ReadMalformed, Err: err}
	}
	if rec.UpdatedAt.IsZero() {
		return HeartbeatRead{State: ReadMalformed, Err: fmt.Errorf("heartbeat missing updatedAt")}
	}
	return HeartbeatRead{State: ReadOK, Record: rec}
}

// WriteOverlay writes a worker's rendered role/context document.
func (b *Board) WriteOverlay(worker, content string) error {
	if err := os.WriteFile(b.paths.OverlayPath(worker), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write overlay for %s: %w", worker, err)
	}
	return nil
}
