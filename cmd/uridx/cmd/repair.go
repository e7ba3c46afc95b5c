package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRepairCmd exposes the startup repair scan (internal/ingest.Repair)
// for manual invocation, in addition to it running automatically on
// every bootstrap (§7 Internal).
func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Scan for and fix missing or orphaned chunk embeddings (I2)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// bootstrap already runs Repair once; a second explicit pass
			// is a no-op unless something changed between calls, but it
			// gives operators a way to re-run the scan without touching
			// any other data.
			f, closer, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closer()

			if err := f.Pipeline.Repair(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "repair scan complete")
			return nil
		},
	}
}
