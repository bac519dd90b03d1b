// Package host asks the operating system to power the device off.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultPowerOffCommand halts and powers off a Linux host.
const DefaultPowerOffCommand = "shutdown -P now"

// Command powers the host off by running an external command.
type Command struct {
	Args []string
}

// NewCommand splits a command line on whitespace.
func NewCommand(line string) Command {
	return Command{Args: strings.Fields(line)}
}

// PowerOff runs the command and waits for it to exit.
func (c Command) PowerOff(ctx context.Context) error {
	if len(c.Args) == 0 {
		return errors.New("power off: no command configured")
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("power off %q: %w (output: %s)", strings.Join(c.Args, " "), err, strings.TrimSpace(out.String()))
	}
	return nil
}

// String returns the command line.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}
