package errs

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPreconditionError_Unwrap(t *testing.T) {
	base := errors.New("tmux not found on PATH")
	err := NewPrecondition("tmux", base)

	if !errors.Is(err, base) {
		t.Error("expected errors.Is to find the wrapped error")
	}

	var pe *PreconditionError
	if !errors.As(fmt.Errorf("start team: %w", err), &pe) {
		t.Fatal("expected errors.As to find PreconditionError through wrapping")
	}
	if pe.Requirement != "tmux" {
		t.Errorf("Requirement = %q, want %q", pe.Requirement, "tmux")
	}
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidation("team name", "!", "fewer than 2 valid characters")
	want := `invalid team name "!": fewer than 2 valid characters`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestTimeoutError_Message(t *testing.T) {
	err := NewTimeout("ready wait", 30*time.Second)
	want := "ready wait timed out after 30s"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var te *TimeoutError
	if !errors.As(fmt.Errorf("worker-1: %w", err), &te) {
		t.Fatal("expected errors.As to find TimeoutError")
	}
}
