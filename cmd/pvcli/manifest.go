package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// runManifest loads the manifest and prints the parsed descriptors.
func runManifest(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := flags.resolve()
	if err != nil {
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

	fmt.Fprintf(cmd.OutOrStdout(), "Manifest %s: %d artifact(s)\n\n", cfg.Manifest, len(m))
	for _, desc := range m {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-44s %-18s %s\n", desc.Name, desc.Kind, desc.DisplayName())
	}
	return nil
}
