// Package doctor checks that the native package tooling pvcli shells out to
// is available on this host.
package doctor

import (
	"context"
	"strings"

	"github.com/jaspreet-dot-casa/pvcli/pkg/installer"
)

// CheckStatus represents the status of a tooling check.
type CheckStatus int

const (
	// StatusOK indicates the tool is installed and answering.
	StatusOK CheckStatus = iota
	// StatusMissing indicates the tool is not installed.
	StatusMissing
	// StatusError indicates an error occurred during the check.
	StatusError
)

// String returns the string representation of the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Check represents a single tooling check result.
type Check struct {
	ID          string      // Unique identifier, e.g., "dism"
	Name        string      // Display name
	Description string      // What this tool is used for
	Status      CheckStatus // Current status
	Message     string      // Status message (version info, error, etc.)
}

// CheckID constants.
const (
	IDDism       = "dism"
	IDPowershell = "powershell"
)

// Checker runs tooling checks through an injected executor.
type Checker struct {
	exec installer.CommandExecutor
}

// NewChecker creates a checker with the real command executor.
func NewChecker() *Checker {
	return &Checker{exec: &installer.RealExecutor{}}
}

// NewCheckerWithExecutor creates a checker with a custom executor (for testing).
func NewCheckerWithExecutor(exec installer.CommandExecutor) *Checker {
	return &Checker{exec: exec}
}

// CheckAll runs every tooling check.
func (c *Checker) CheckAll(ctx context.Context) []Check {
	return []Check{
		c.checkDism(),
		c.checkPowershell(ctx),
	}
}

// HasIssues returns true if any check is not OK.
func (c *Checker) HasIssues(checks []Check) bool {
	for _, check := range checks {
		if check.Status != StatusOK {
			return true
		}
	}
	return false
}

func (c *Checker) checkDism() Check {
	check := Check{
		ID:          IDDism,
		Name:        "DISM",
		Description: "Installs offline package cabinets",
	}

	path, err := c.exec.LookPath("dism")
	if err != nil {
		check.Status = StatusMissing
		check.Message = "dism not found on PATH"
		return check
	}
	check.Status = StatusOK
	check.Message = path
	return check
}

func (c *Checker) checkPowershell(ctx context.Context) Check {
	check := Check{
		ID:          IDPowershell,
		Name:        "PowerShell",
		Description: "Queries install state and installs app packages",
	}

	if _, err := c.exec.LookPath("powershell"); err != nil {
		check.Status = StatusMissing
		check.Message = "powershell not found on PATH"
		return check
	}

	out, code, err := c.exec.Run(ctx, "powershell", "-NoProfile", "-NonInteractive",
		"-Command", "$PSVersionTable.PSVersion.ToString()")
	if err != nil || code != 0 {
		check.Status = StatusError
		check.Message = "powershell found but not answering"
		return check
	}
	check.Status = StatusOK
	check.Message = strings.TrimSpace(out)
	return check
}
