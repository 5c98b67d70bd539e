// Package main provides the pvcli tool for provisioning language-pack
// artifacts: fetch a manifest-described set of packages, install each
// exactly once, verify, and report.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set via -ldflags during build
var version = "dev"

func main() {
	rootCmd := newRootCmd()

	// Cobra handles error printing
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for pvcli
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pvcli",
		Short: "Language-Pack Provisioning CLI",
		Long: `pvcli provisions language-pack artifacts from a remote file host:
it loads a manifest, fetches missing artifacts into a local store, installs
each one through the native package tooling, verifies the result, and
reports a per-artifact outcome.

Runs are idempotent and resumable: artifacts already downloaded or already
installed are skipped, so re-running after a partial failure only does the
remaining work.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newProvisionCmd(),
		newFetchCmd(),
		newManifestCmd(),
		newHistoryCmd(),
		newDoctorCmd(),
		newInitCmd(),
	)

	return rootCmd
}
