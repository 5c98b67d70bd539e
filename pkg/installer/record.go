// Package installer installs fetched artifacts through the native package
// tooling and reports a structured outcome per attempt.
package installer

import (
	"fmt"
	"time"

	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// Status is the terminal outcome of one install attempt.
type Status int

const (
	// StatusAlreadyInstalled means the install-state query found the artifact
	// before any native install call was made.
	StatusAlreadyInstalled Status = iota
	// StatusInstalled means the native call succeeded and, where applicable,
	// verification confirmed it.
	StatusInstalled
	// StatusInstalledUnverified means the native installer reported success
	// but the system inventory does not show the package. Operators must be
	// able to tell this apart from a hard failure.
	StatusInstalledUnverified
	// StatusFailed means the native call failed.
	StatusFailed
	// StatusSkipped means the artifact file was missing so no native call
	// was attempted.
	StatusSkipped
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAlreadyInstalled:
		return "already-installed"
	case StatusInstalled:
		return "installed"
	case StatusInstalledUnverified:
		return "installed-unverified"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the status counts as a provisioning success.
func (s Status) Succeeded() bool {
	return s == StatusInstalled || s == StatusAlreadyInstalled
}

// MarshalYAML encodes the status as its string form.
func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes a status from its string form.
func (s *Status) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v string
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch v {
	case "already-installed":
		*s = StatusAlreadyInstalled
	case "installed":
		*s = StatusInstalled
	case "installed-unverified":
		*s = StatusInstalledUnverified
	case "failed":
		*s = StatusFailed
	case "skipped":
		*s = StatusSkipped
	default:
		return fmt.Errorf("unknown install status %q", v)
	}
	return nil
}

// Record is the outcome of one install attempt for one artifact.
type Record struct {
	Artifact  manifest.Descriptor
	Status    Status
	Detail    string
	Timestamp time.Time
}
