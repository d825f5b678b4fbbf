package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pepgraph/pepgraph/internal/config"
	"github.com/pepgraph/pepgraph/pkg/export"
	"github.com/pepgraph/pepgraph/pkg/pep"
	"github.com/pepgraph/pepgraph/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output      string // artifact output directory
	refresh     bool   // bypass the pipeline cache
	excludeSelf bool   // drop self-citations during extraction
	filterValid bool   // keep only citations to known documents
	seed        int64  // layout seed
	sourceURL   string // provenance source URL
}

// newBuildCmd creates the build command.
// It parses every document under the given directory, builds the citation
// graph, computes metrics and layout, and writes all artifacts to the output
// directory.
func newBuildCmd(configPath *string) *cobra.Command {
	opts := buildOpts{output: "out", excludeSelf: true, filterValid: true, seed: 42}

	cmd := &cobra.Command{
		Use:   "build <docs-dir>",
		Short: "Build the citation graph from a directory of PEP documents",
		Long: `Build parses every .rst and .txt document under the given directory,
extracts citations, and writes the graph, metrics, and layout artifacts.

Examples:
  pepgraph build ./peps                      # Artifacts to ./out
  pepgraph build ./peps -o ./artifacts       # Custom output directory
  pepgraph build ./peps --refresh            # Bypass the cache
  pepgraph build ./peps --seed 7             # Alternative layout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, *configPath, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory for artifacts")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.excludeSelf, "exclude-self", opts.excludeSelf, "drop citations of a document to itself")
	cmd.Flags().BoolVar(&opts.filterValid, "filter-valid", opts.filterValid, "drop citations to unknown documents")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "layout random seed")
	cmd.Flags().StringVar(&opts.sourceURL, "source-url", "", "provenance source URL recorded in the graph")

	return cmd
}

func runBuild(cmd *cobra.Command, configPath, dir string, opts buildOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	popts := cfg.PipelineOptions()
	popts.Refresh = opts.refresh
	popts.Logger = logger
	if cmd.Flags().Changed("exclude-self") {
		popts.ExcludeSelf = opts.excludeSelf
	}
	if cmd.Flags().Changed("filter-valid") {
		popts.FilterValid = opts.filterValid
	}
	if cmd.Flags().Changed("seed") {
		popts.Seed = opts.seed
	}
	if cmd.Flags().Changed("source-url") {
		popts.SourceURL = opts.sourceURL
	}

	docs, err := pep.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		printWarning("No documents found in %s", dir)
		return nil
	}

	c, err := cfg.OpenCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %d documents...", len(docs)))
	spinner.Start()

	result, err := runner.Execute(ctx, docs, popts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Build failed: %v", err))
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Analyzed %d documents", len(docs)))

	if err := export.WriteAll(opts.output, result); err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}

	printSuccess("Built citation graph")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit)
	if result.Stats.ParseFailed > 0 {
		printWarning("%d documents failed to parse (see log)", result.Stats.ParseFailed)
	}
	for _, name := range []string{export.FileRecords, export.FileCitations, export.FileMetrics, export.FilePositions, export.FileGraph} {
		printFile(filepath.Join(opts.output, name))
	}
	printNextStep("Serve the graph over HTTP", fmt.Sprintf("pepgraph serve %s", dir))

	return nil
}
