package installer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandExecutor is an interface for running native commands, allowing for
// testing without touching the host system.
type CommandExecutor interface {
	// LookPath finds the path to an executable.
	LookPath(file string) (string, error)
	// Run executes a command and returns its combined output and exit code.
	// The error is non-nil only when the command could not be started or the
	// context was cancelled.
	Run(ctx context.Context, name string, args ...string) (string, int, error)
}

// RealExecutor is the default executor backed by os/exec.
type RealExecutor struct{}

// LookPath finds the path to an executable.
func (e *RealExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command, capturing stdout and stderr together. A non-zero
// exit is reported through the returned code, not the error.
func (e *RealExecutor) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), exitErr.ExitCode(), nil
		}
		return out.String(), -1, err
	}
	return out.String(), 0, nil
}
