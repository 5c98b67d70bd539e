package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/jaspreet-dot-casa/pvcli/pkg/fetch"
	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// Dispatcher installs one local artifact per call, dispatching on its kind.
// Installs are idempotent: the install-state query runs before any native
// call, so re-running a completed batch makes no install attempts.
type Dispatcher struct {
	sys     System
	logPath string
}

// NewDispatcher creates a dispatcher over the given system capability.
func NewDispatcher(sys System) *Dispatcher {
	return &Dispatcher{sys: sys}
}

// SetLogPath sets the native installer log destination for cab packages.
func (d *Dispatcher) SetLogPath(path string) {
	d.logPath = path
}

// Install attempts to install one artifact and returns its record. Errors
// never escape: every failure mode is converted into a record so one bad
// artifact cannot abort a batch.
func (d *Dispatcher) Install(ctx context.Context, local fetch.LocalArtifact) Record {
	rec := Record{Artifact: local.Descriptor, Timestamp: time.Now()}

	if !local.Present {
		// Never hand a missing path to a native installer; it would fail
		// with a confusing low-level error instead of an actionable one.
		rec.Status = StatusSkipped
		rec.Detail = "artifact not present in local store"
		return rec
	}

	switch local.Descriptor.Kind {
	case manifest.KindCabPackage:
		d.installCab(ctx, local, &rec)
	case manifest.KindAppPackage:
		d.installApp(ctx, local, &rec)
	case manifest.KindSilentInstaller:
		d.runInstaller(ctx, local, &rec)
	default:
		rec.Status = StatusFailed
		rec.Detail = fmt.Sprintf("unknown artifact kind %v", local.Descriptor.Kind)
	}
	return rec
}

func (d *Dispatcher) installCab(ctx context.Context, local fetch.LocalArtifact, rec *Record) {
	name := local.Descriptor.DisplayName()

	// A failed state query is not fatal: installing an already-installed
	// package is harmless at the native level.
	if installed, err := d.sys.PackageInstalled(ctx, name); err == nil && installed {
		rec.Status = StatusAlreadyInstalled
		return
	}

	code, err := d.sys.AddPackage(ctx, local.Path, d.logPath)
	if err != nil {
		rec.Status = StatusFailed
		rec.Detail = err.Error()
		return
	}
	switch {
	case notApplicable(code):
		rec.Status = StatusFailed
		rec.Detail = fmt.Sprintf("package not applicable to this OS image version (0x%08x)", uint32(code))
	case code != 0:
		rec.Status = StatusFailed
		rec.Detail = fmt.Sprintf("installer exited with code %d", code)
	default:
		rec.Status, rec.Detail = d.verify(ctx, name)
	}
}

// verify re-queries the package inventory after a zero-exit install. Only
// cab packages get this pass; app package and installer calls are already
// authoritative or best-effort.
func (d *Dispatcher) verify(ctx context.Context, displayName string) (Status, string) {
	installed, err := d.sys.PackageInstalled(ctx, displayName)
	if err != nil {
		return StatusInstalledUnverified, fmt.Sprintf("verification query failed: %v", err)
	}
	if !installed {
		return StatusInstalledUnverified, "installer reported success but package is not in the inventory"
	}
	return StatusInstalled, ""
}

func (d *Dispatcher) installApp(ctx context.Context, local fetch.LocalArtifact, rec *Record) {
	name := local.Descriptor.DisplayName()

	if installed, err := d.sys.AppInstalled(ctx, name); err == nil && installed {
		rec.Status = StatusAlreadyInstalled
		return
	}

	if err := d.sys.AddAppPackage(ctx, local.Path); err != nil {
		rec.Status = StatusFailed
		rec.Detail = err.Error()
		return
	}
	rec.Status = StatusInstalled
}

func (d *Dispatcher) runInstaller(ctx context.Context, local fetch.LocalArtifact, rec *Record) {
	code, err := d.sys.RunInstaller(ctx, local.Path)
	if err != nil {
		rec.Status = StatusFailed
		rec.Detail = err.Error()
		return
	}
	if code != 0 {
		rec.Status = StatusFailed
		rec.Detail = fmt.Sprintf("installer exited with code %d", code)
		return
	}
	rec.Status = StatusInstalled
}
