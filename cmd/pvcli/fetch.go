package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/fetch"
	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// runFetch populates the local store without installing anything.
func runFetch(cmd *cobra.Command, flags *runFlags) error {
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

	loader := manifest.NewLoader()
	m, err := loader.Load(cmd.Context(), cfg.Manifest)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	fetcher := fetch.NewFetcher(cfg.StoreDir)
	locals, errs := fetcher.FetchAll(cmd.Context(), cfg.BaseURL, m, cfg.FetchWorkers)

	var failed int
	for i, local := range locals {
		switch {
		case errs[i] != nil:
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "  %-44s fetch failed: %v\n", m[i].Name, errs[i])
		case local.Present:
			fmt.Fprintf(cmd.OutOrStdout(), "  %-44s ready\n", m[i].Name)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d artifact(s), %d failed\n", len(m), failed)
	return nil
}
