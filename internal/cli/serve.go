package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pepgraph/pepgraph/internal/config"
	"github.com/pepgraph/pepgraph/internal/server"
	"github.com/pepgraph/pepgraph/pkg/engine"
	"github.com/pepgraph/pepgraph/pkg/pep"
	"github.com/pepgraph/pepgraph/pkg/pipeline"
)

// newServeCmd creates the serve command.
// It performs an initial pipeline run over the document directory and then
// serves snapshots over the HTTP JSON API until interrupted. POST
// /api/refresh re-reads the directory and installs a new snapshot.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <docs-dir>",
		Short: "Serve the citation graph over an HTTP JSON API",
		Long: `Serve builds the citation graph from the given directory and exposes it
over HTTP. Read endpoints serve the latest snapshot; POST /api/refresh
re-reads the directory.

Examples:
  pepgraph serve ./peps                  # Listen on the configured address
  pepgraph serve ./peps --addr :9090     # Custom address`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configPath, args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, configPath, dir, addr string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	c, err := cfg.OpenCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(c, nil, logger)

	popts := cfg.PipelineOptions()
	popts.Logger = logger
	eng := engine.New(runner, popts)
	defer eng.Close()

	source := func(ctx context.Context) ([]pep.Document, error) {
		return pep.LoadDir(dir)
	}

	docs, err := source(ctx)
	if err != nil {
		return err
	}
	result, err := eng.Refresh(ctx, docs)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	printSuccess("Built citation graph")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit)
	printInfo("Listening on %s", addr)

	srv := server.New(eng, source, logger)
	return srv.ListenAndServe(ctx, addr)
}
