package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/globalconfig"
)

// runInit writes a starter config file if none exists.
func runInit(cmd *cobra.Command, _ []string) error {
	path, err := globalconfig.GetConfigPath()
	if err != nil {
		return err
	}

	if _, err := globalconfig.LoadOrCreate(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config ready at %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Set base_url and manifest there, or pass --base/--manifest per run.")
	return nil
}
