// Package cmd implements the uridx command-line surface (§6.3): search,
// ingest, stats, serve, extract, and repair, all built on a single
// façade bootstrapped once per process invocation.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GonzoDMX/uridx/internal/config"
	"github.com/GonzoDMX/uridx/internal/embed"
	"github.com/GonzoDMX/uridx/internal/facade"
	"github.com/GonzoDMX/uridx/internal/ingest"
	"github.com/GonzoDMX/uridx/internal/retriever"
	"github.com/GonzoDMX/uridx/internal/store"
)

var (
	dbPathFlag string
	jsonOutput bool
)

// NewRootCmd builds the uridx command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "uridx",
		Short:         "Hybrid local knowledge index",
		Long:          "uridx ingests text into a local SQLite store and serves hybrid (lexical + semantic) search over it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dbPathFlag, "db", "", "path to the uridx database (overrides "+config.EnvDBPath+")")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of table output")

	root.AddCommand(newSearchCmd())
	root.AddCommand(newIngestCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newRepairCmd())

	return root
}

// Execute runs the root command; main only needs to report the error.
func Execute() error {
	return NewRootCmd().Execute()
}

// bootstrap wires the embedding client, store engine, ingestion
// pipeline, retriever, and façade exactly once, the way every
// subcommand needs them (§4.5, §6.4). Callers must call the returned
// closer when done.
func bootstrap(ctx context.Context) (*facade.Facade, func() error, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load environment: %w", err)
	}
	if dbPathFlag != "" {
		env.DBPath = dbPathFlag
	}

	if err := config.EnsureDBDir(env.DBPath); err != nil {
		return nil, nil, fmt.Errorf("prepare db directory: %w", err)
	}

	client := embed.NewOllamaClient(env.OllamaURL, embed.DefaultTextTimeout)

	engine, err := store.Open(ctx, env.DBPath, env.EmbedModel, client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	pipeline := &ingest.Pipeline{Engine: engine, Embed: client, Model: env.EmbedModel}
	if err := pipeline.Repair(ctx); err != nil {
		engine.Close()
		client.Close()
		return nil, nil, fmt.Errorf("startup repair: %w", err)
	}

	f := &facade.Facade{
		Engine:   engine,
		Pipeline: pipeline,
		Retriever: &retriever.Retriever{
			Engine: engine,
			Embed:  client,
			Model:  env.EmbedModel,
		},
	}

	closer := func() error {
		client.Close()
		return engine.Close()
	}
	return f, closer, nil
}
