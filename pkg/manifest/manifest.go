// Package manifest defines the artifacts pvcli provisions and loads them
// from newline-delimited manifest files.
package manifest

import (
	"path/filepath"
	"strings"
)

// Kind identifies how an artifact is installed.
type Kind int

const (
	// KindCabPackage is an offline package cabinet installed via the native
	// package servicing tool.
	KindCabPackage Kind = iota
	// KindAppPackage is an app package installed via the app deployment stack.
	KindAppPackage
	// KindSilentInstaller is an executable run directly with silent arguments.
	KindSilentInstaller
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCabPackage:
		return "cab-package"
	case KindAppPackage:
		return "app-package"
	case KindSilentInstaller:
		return "silent-installer"
	default:
		return "unknown"
	}
}

// Descriptor identifies one provisionable artifact. It is a value type and
// immutable once parsed from a manifest.
type Descriptor struct {
	// Name is the artifact filename as listed in the manifest.
	Name string
	// Kind is assigned at parse time from the filename suffix.
	Kind Kind
}

// DisplayName returns the name without its extension. Install-state lookups
// match on this.
func (d Descriptor) DisplayName() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// Manifest is an ordered list of descriptors. Order is the caller-supplied
// install order; duplicates are preserved.
type Manifest []Descriptor

// DefaultSuffixes maps recognized filename suffixes (lowercase) to kinds.
var DefaultSuffixes = map[string]Kind{
	".cab":         KindCabPackage,
	".appx":        KindAppPackage,
	".appxbundle":  KindAppPackage,
	".msix":        KindAppPackage,
	".msixbundle":  KindAppPackage,
	".exe":         KindSilentInstaller,
}
