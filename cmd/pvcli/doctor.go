package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/pvcli/pkg/doctor"
)

// runDoctor checks the native package tooling.
func runDoctor(cmd *cobra.Command, _ []string) error {
	checker := doctor.NewChecker()
	checks := checker.CheckAll(cmd.Context())

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-12s %s\n", check.Status, check.Name, check.Message)
	}

	if checker.HasIssues(checks) {
		return fmt.Errorf("native package tooling is missing; provisioning will fail on this host")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nAll tooling available.")
	return nil
}
