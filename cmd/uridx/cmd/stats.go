package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show item/chunk counts and the configured embedding model (§4.1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, closer, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closer()

			stats, err := f.Stats(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "items:  %d\n", stats.ItemCount)
			fmt.Fprintf(cmd.OutOrStdout(), "chunks: %d\n", stats.ChunkCount)
			fmt.Fprintf(cmd.OutOrStdout(), "model:  %s (dim %d)\n", stats.EmbedModel, stats.EmbedDimension)
			for t, n := range stats.BySourceType {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %d\n", t, n)
			}
			return nil
		},
	}
}
