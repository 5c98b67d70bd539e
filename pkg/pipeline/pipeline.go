// Package pipeline orchestrates manifest-driven artifact provisioning:
// load manifest, fetch missing artifacts, install each not-yet-installed
// artifact, verify, and aggregate a report.
//
// Per-artifact failures are isolated: one bad artifact in a manifest of
// twenty never blocks the other nineteen. The only fatal error is a
// manifest that cannot be loaded at all. Re-running against the same store
// converges: completed artifacts cost one existence or install-state check
// each and no real work.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jaspreet-dot-casa/pvcli/pkg/fetch"
	"github.com/jaspreet-dot-casa/pvcli/pkg/installer"
	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// Config is the explicit construction-time configuration for a pipeline.
// There are no process-wide defaults: base URL, store path, and log sink
// all arrive here.
type Config struct {
	// BaseURL is the remote host artifacts are fetched from.
	BaseURL string
	// ManifestSource is a URL or local path to the manifest.
	ManifestSource string
	// StoreDir is the local artifact store.
	StoreDir string
	// InstallLogPath is handed to the native package installer (optional).
	InstallLogPath string
	// FetchWorkers bounds concurrent downloads. Values below 2 fetch and
	// install one artifact at a time in manifest order. The install phase
	// is sequential regardless: native installers serialize against a
	// shared system install lock.
	FetchWorkers int
	// Logger receives the detailed step-by-step log. Nil discards.
	Logger *log.Logger
	// Progress receives one human-readable line per step. Nil discards.
	Progress io.Writer
}

// Pipeline runs the provisioning batch. It owns the manifest and report for
// the duration of a run; the fetcher and dispatcher hold no batch state.
type Pipeline struct {
	cfg        Config
	loader     *manifest.Loader
	fetcher    *fetch.Fetcher
	dispatcher *installer.Dispatcher
	logger     *log.Logger
	progress   io.Writer
}

// New creates a pipeline installing through the given system capability.
func New(cfg Config, sys installer.System) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}

	dispatcher := installer.NewDispatcher(sys)
	dispatcher.SetLogPath(cfg.InstallLogPath)

	return &Pipeline{
		cfg:        cfg,
		loader:     manifest.NewLoader(),
		fetcher:    fetch.NewFetcher(cfg.StoreDir),
		dispatcher: dispatcher,
		logger:     logger,
		progress:   progress,
	}
}

// Loader returns the manifest loader, so callers can adjust the recognized
// suffix set before Run.
func (p *Pipeline) Loader() *manifest.Loader {
	return p.loader
}

// Run executes the batch and returns the report. The returned error is
// non-nil only when the manifest could not be loaded; every per-artifact
// outcome, including failures, lives in the report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	m, err := p.loader.Load(ctx, p.cfg.ManifestSource)
	if err != nil {
		p.logger.Error("manifest load failed", "source", p.cfg.ManifestSource, "err", err)
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	p.logger.Info("manifest loaded", "source", p.cfg.ManifestSource, "artifacts", len(m))
	fmt.Fprintf(p.progress, "Manifest: %d artifact(s)\n", len(m))

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	locals, fetchErrs := p.fetchPhase(ctx, m)

	for i, desc := range m {
		rec := p.dispatcher.Install(ctx, locals[i])
		if rec.Status == installer.StatusSkipped && fetchErrs[i] != nil {
			rec.Detail = fetchErrs[i].Error()
		}

		p.logger.Info("install finished",
			"artifact", desc.Name,
			"kind", desc.Kind.String(),
			"status", rec.Status.String(),
			"detail", rec.Detail)
		fmt.Fprintf(p.progress, "  %-40s %s\n", desc.Name, rec.Status)

		report.add(rec)
	}

	report.FinishedAt = time.Now()
	p.logger.Info("run finished",
		"run_id", report.RunID,
		"attempted", report.Counts.Attempted,
		"succeeded", report.Counts.Succeeded,
		"unverified", report.Counts.Unverified,
		"failed", report.Counts.Failed,
		"skipped", report.Counts.Skipped)

	return report, nil
}

// fetchPhase retrieves all artifacts, in parallel when configured. Fetch
// failures are recorded per artifact and never abort the batch: the install
// phase independently checks file presence.
func (p *Pipeline) fetchPhase(ctx context.Context, m manifest.Manifest) ([]fetch.LocalArtifact, []error) {
	locals, errs := p.fetcher.FetchAll(ctx, p.cfg.BaseURL, m, p.cfg.FetchWorkers)

	for i, desc := range m {
		switch {
		case errs[i] != nil:
			p.logger.Warn("fetch failed", "artifact", desc.Name, "err", errs[i])
			fmt.Fprintf(p.progress, "  %-40s fetch failed\n", desc.Name)
		case locals[i].Present:
			p.logger.Info("artifact ready", "artifact", desc.Name, "path", locals[i].Path)
		}
	}
	return locals, errs
}
