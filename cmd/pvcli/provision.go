package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/history"
	"github.com/jaspreet-dot-casa/pvcli/pkg/installer"
	"github.com/jaspreet-dot-casa/pvcli/pkg/logging"
	"github.com/jaspreet-dot-casa/pvcli/pkg/pipeline"
	"github.com/jaspreet-dot-casa/pvcli/pkg/report"
)

// runProvision runs the full provisioning pipeline.
func runProvision(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := flags.resolve()
	if err != nil {
		return err
	}
	if err := requireBase(cfg); err != nil {
		return err
	}
	if err := requireManifest(cfg); err != nil {
		return err
	}

	sink, closeSink := logging.NewSink(cfg.LogPath)
	defer closeSink()

	p := pipeline.New(pipeline.Config{
		BaseURL:        cfg.BaseURL,
		ManifestSource: cfg.Manifest,
		StoreDir:       cfg.StoreDir,
		InstallLogPath: cfg.LogPath,
		FetchWorkers:   cfg.FetchWorkers,
		Logger:         sink,
		Progress:       cmd.OutOrStdout(),
	}, installer.NewDISM())

	rep, err := p.Run(cmd.Context())
	if err != nil {
		// The only fatal path: nothing to provision.
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	report.Render(cmd.OutOrStdout(), rep)

	// History is best-effort, like the log sink.
	store := history.NewStore(cfg.HistoryPath)
	if err := store.Append(history.FromReport(rep)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record run history: %v\n", err)
	}

	return nil
}
