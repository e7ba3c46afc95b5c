package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GonzoDMX/uridx/internal/facade"
)

func newSearchCmd() *cobra.Command {
	var (
		limit      int
		sourceType string
		tags       []string
		semantic   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid lexical+semantic search (§4.4)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, closer, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closer()

			rows, err := f.Search(ctx, facade.SearchParams{
				Query:      args[0],
				Limit:      limit,
				SourceType: sourceType,
				Tags:       tags,
				Semantic:   &semantic,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			for _, r := range rows {
				title := ""
				if r.Title != nil {
					title = *r.Title
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s  %s\n", r.Score, r.SourceURI, title)
				fmt.Fprintf(cmd.OutOrStdout(), "      %s\n", truncate(strings.ReplaceAll(r.Text, "\n", " "), 160))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results (1-1000)")
	cmd.Flags().StringVar(&sourceType, "type", "", "filter by source_type")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "filter by tag (repeatable)")
	cmd.Flags().BoolVar(&semantic, "semantic", true, "include the vector search channel; --semantic=false runs keyword-only search")

	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
