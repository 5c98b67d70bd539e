package installer

import (
	"context"
	"fmt"
	"strings"
)

// NotApplicableExitCode is CBS_E_NOT_APPLICABLE, returned by the package
// servicing tool when a package does not match the running OS image version.
// Common for language features targeting a different OS build.
const NotApplicableExitCode = 0x800f081e

// notApplicable matches the distinguished exit code. Exit codes are compared
// as uint32 so both the raw 32-bit form and a sign-extended value match.
func notApplicable(code int) bool {
	return uint32(code) == uint32(NotApplicableExitCode)
}

// DISM is the real System implementation, a thin adapter over the Windows
// package servicing tool and the PowerShell app deployment cmdlets.
type DISM struct {
	exec CommandExecutor
}

// NewDISM creates a DISM adapter using the real command executor.
func NewDISM() *DISM {
	return NewDISMWithExecutor(&RealExecutor{})
}

// NewDISMWithExecutor creates a DISM adapter with a custom executor (for testing).
func NewDISMWithExecutor(exec CommandExecutor) *DISM {
	return &DISM{exec: exec}
}

// PackageInstalled queries the offline package inventory for displayName
// with state Installed.
func (d *DISM) PackageInstalled(ctx context.Context, displayName string) (bool, error) {
	script := fmt.Sprintf(
		"(Get-WindowsPackage -Online | Where-Object { $_.PackageName -like '*%s*' -and $_.PackageState -eq 'Installed' }).Count",
		displayName)
	out, code, err := d.exec.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return false, fmt.Errorf("failed to query package state: %w", err)
	}
	if code != 0 {
		return false, fmt.Errorf("package state query exited with code %d: %s", code, strings.TrimSpace(out))
	}
	count := strings.TrimSpace(out)
	return count != "" && count != "0", nil
}

// AddPackage installs a package cabinet via dism /Online /Add-Package.
func (d *DISM) AddPackage(ctx context.Context, path, logPath string) (int, error) {
	args := []string{"/Online", "/Add-Package", "/PackagePath:" + path, "/NoRestart", "/Quiet"}
	if logPath != "" {
		args = append(args, "/LogPath:"+logPath)
	}
	_, code, err := d.exec.Run(ctx, "dism", args...)
	if err != nil {
		return -1, fmt.Errorf("failed to invoke dism: %w", err)
	}
	return code, nil
}

// AppInstalled queries the app inventory for displayName.
func (d *DISM) AppInstalled(ctx context.Context, displayName string) (bool, error) {
	script := fmt.Sprintf("(Get-AppxPackage -Name '*%s*').Count", displayName)
	out, code, err := d.exec.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return false, fmt.Errorf("failed to query app packages: %w", err)
	}
	if code != 0 {
		return false, fmt.Errorf("app package query exited with code %d: %s", code, strings.TrimSpace(out))
	}
	count := strings.TrimSpace(out)
	return count != "" && count != "0", nil
}

// AddAppPackage installs an app package via Add-AppxPackage.
func (d *DISM) AddAppPackage(ctx context.Context, path string) error {
	script := fmt.Sprintf("Add-AppxPackage -Path '%s' -ErrorAction Stop", path)
	out, code, err := d.exec.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return fmt.Errorf("failed to invoke Add-AppxPackage: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("Add-AppxPackage exited with code %d: %s", code, strings.TrimSpace(out))
	}
	return nil
}

// RunInstaller launches the installer directly with silent arguments.
func (d *DISM) RunInstaller(ctx context.Context, path string) (int, error) {
	_, code, err := d.exec.Run(ctx, path, "/quiet", "/norestart")
	if err != nil {
		return -1, fmt.Errorf("failed to launch installer: %w", err)
	}
	return code, nil
}
