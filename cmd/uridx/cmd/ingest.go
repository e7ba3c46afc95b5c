package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GonzoDMX/uridx/internal/ingest"
)

func newIngestCmd() *cobra.Command {
	var (
		textURI string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest records (§4.3, §6.1)",
		Long:  "Reads newline-delimited ingestion records from stdin and upserts each (insert/merge/replace per §4.3). With --text, a single plain-text note is read from stdin instead and wrapped as one record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, closer, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closer()

			if textURI != "" {
				data, err := readAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				sourceType := "note"
				rec := ingest.Record{
					SourceURI:  textURI,
					SourceType: &sourceType,
					Chunks:     []ingest.ChunkInput{{Text: string(data)}},
					Replace:    replace,
				}
				_, err = f.Pipeline.Upsert(ctx, rec)
				return err
			}

			var failed int
			err = ingest.DecodeJSONL(os.Stdin,
				func(err error) {
					failed++
					fmt.Fprintln(cmd.ErrOrStderr(), "skip:", err)
				},
				func(rec ingest.Record) error {
					if replace {
						rec.Replace = true
					}
					if _, err := f.Pipeline.Upsert(ctx, rec); err != nil {
						return fmt.Errorf("ingest %s: %w", rec.SourceURI, err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "ok:", rec.SourceURI)
					return nil
				},
			)
			if err != nil {
				return err
			}
			if failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d record(s) skipped\n", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&textURI, "text", "", "ingest stdin as a single plain-text note at this source_uri, instead of reading JSONL")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace any existing item at the same source_uri rather than merging")

	return cmd
}
