package host

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestNewCommand(t *testing.T) {
	c := NewCommand("  shutdown   -P now ")
	if len(c.Args) != 3 || c.Args[0] != "shutdown" || c.Args[2] != "now" {
		t.Errorf("unexpected args: %q", c.Args)
	}
	if c.String() != DefaultPowerOffCommand {
		t.Errorf("String: got %q, want %q", c.String(), DefaultPowerOffCommand)
	}
}

func TestPowerOffEmpty(t *testing.T) {
	if err := NewCommand("").PowerOff(context.Background()); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestPowerOffRunsCommand(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	if err := NewCommand("true").PowerOff(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPowerOffReportsFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	err := NewCommand("false").PowerOff(context.Background())
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	if !strings.Contains(err.Error(), `"false"`) {
		t.Errorf("error should name the command: %v", err)
	}
}
