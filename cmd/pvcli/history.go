package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/pvcli/pkg/history"
)

// runHistory lists recorded provisioning runs.
func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := globalconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store := history.NewStore(cfg.HistoryPath)
	runs, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No provisioning runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d attempted, %d succeeded, %d failed, %d skipped\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.ID,
			run.Attempted, run.Succeeded, run.Failed, run.Skipped)
	}
	return nil
}
