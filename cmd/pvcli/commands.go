package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/globalconfig"
)

// runFlags are the per-run overrides shared by provision and fetch.
type runFlags struct {
	base     string
	manifest string
	store    string
	logPath  string
	workers  int
}

// register adds the shared flags to a command.
func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.base, "base", "b", "", "Base URL of the artifact host (overrides config)")
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", "Manifest URL or path (overrides config)")
	cmd.Flags().StringVar(&f.store, "store", "", "Local artifact store directory (overrides config)")
	cmd.Flags().StringVar(&f.logPath, "log", "", "Provisioning log path (overrides config)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Concurrent fetch workers (installs stay sequential)")
}

// resolve loads the global config and applies flag overrides on top.
func (f *runFlags) resolve() (*globalconfig.Config, error) {
	cfg, err := globalconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if f.base != "" {
		cfg.BaseURL = f.base
	}
	if f.manifest != "" {
		cfg.Manifest = f.manifest
	}
	if f.store != "" {
		cfg.StoreDir = f.store
	}
	if f.logPath != "" {
		cfg.LogPath = f.logPath
	}
	if f.workers > 0 {
		cfg.FetchWorkers = f.workers
	}

	return cfg, nil
}

// requireBase validates that a base URL is configured.
func requireBase(cfg *globalconfig.Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("no base URL configured: pass --base or set base_url in the config")
	}
	return nil
}

// requireManifest validates that a manifest source is configured.
func requireManifest(cfg *globalconfig.Config) error {
	if cfg.Manifest == "" {
		return fmt.Errorf("no manifest configured: pass --manifest or set manifest in the config")
	}
	return nil
}

// newProvisionCmd creates the provision subcommand
func newProvisionCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Fetch, install, and verify all manifest artifacts",
		Long: `Run the full provisioning pipeline: load the manifest, fetch missing
artifacts into the local store, install each not-yet-installed artifact,
verify, and print a per-artifact report.

The exit status is non-zero only if the manifest itself cannot be loaded;
individual artifact failures are reported but do not change the exit status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// newFetchCmd creates the fetch subcommand
func newFetchCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch manifest artifacts into the local store without installing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// newManifestCmd creates the manifest subcommand
func newManifestCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Load and print the parsed manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runManifest(cmd, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// newHistoryCmd creates the history subcommand
func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recorded provisioning runs",
		RunE:  runHistory,
	}
}

// newDoctorCmd creates the doctor subcommand
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the native package tooling is available",
		RunE:  runDoctor,
	}
}

// newInitCmd creates the init subcommand
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long:  `Write a config file with defaults to ~/.config/pvcli/config.yaml if none exists.`,
		RunE:  runInit,
	}
}
