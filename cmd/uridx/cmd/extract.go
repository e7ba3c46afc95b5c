package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GonzoDMX/uridx/internal/extract"
)

// newExtractCmd implements the standalone producer side of the
// "extract | ingest" pipe (§6.3): each subcommand reads one file and
// writes a single §6.1 record as a JSON line to stdout, with no
// dependency on internal/ingest or the store.
func newExtractCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "extract",
		Short: "Extract a document into a §6.1 ingestion record on stdout",
	}

	root.AddCommand(newExtractSubCmd("markdown", "Chunk a markdown file by heading", extract.Markdown))
	root.AddCommand(newExtractSubCmd("pdf", "Chunk a PDF file by page", extract.PDF))
	root.AddCommand(&cobra.Command{
		Use:   "auto <path>",
		Short: "Detect the file type and dispatch to the matching extractor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], extract.Extract)
		},
	})

	return root
}

func newExtractSubCmd(use, short string, fn func(string) (extract.Record, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], fn)
		},
	}
}

func runExtract(cmd *cobra.Command, path string, fn func(string) (extract.Record, error)) error {
	rec, err := fn(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	line, err := rec.JSONLine()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(line))
	return nil
}
