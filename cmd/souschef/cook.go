package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"souschef/internal/config"
	"souschef/internal/database"
	"souschef/internal/fetch"
	"souschef/internal/inference"
	"souschef/internal/log"
	"souschef/internal/model"
	"souschef/internal/pipeline"
	"souschef/internal/report"
	"souschef/internal/search"
	"souschef/internal/store"
)

// apiKeyEnv is the environment variable checked for the inference API key
// when neither the flag nor the config file provides one.
const apiKeyEnv = "SOUSCHEF_API_KEY"

// NewCookCmd creates the cook command.
func NewCookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cook [objective]...",
		Short: "Find, extract, and save a recipe for a cooking request",
		Long: `Cook runs the full recipe pipeline for one or more free-text objectives.

For each objective it searches the web for candidate recipe pages, tries
them in order until one yields a complete structured recipe, optionally
rescales the recipe to a target serving count, and renders the result as
a markdown file.

Examples:
  # Find a recipe and save it
  souschef cook "vegetarian pad thai"

  # Rescale to 6 servings
  souschef cook --servings 6 "lentil soup"

  # Infer the serving count from the request itself
  souschef cook --servings -1 "birthday cake for 12 people"

  # Apply dietary constraints to the search
  souschef cook --diet vegan --diet gluten-free "chocolate cake"

  # Run several objectives concurrently
  souschef cook --batch 2 "pad thai" "miso soup" "banana bread"

  # Output the run report as JSON
  souschef cook --json "pad thai"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCookCmd,
	}

	// Inference endpoint flags
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"Base URL of the OpenAI-compatible inference API")
	cmd.Flags().String("model", config.DefaultModel,
		"Model identifier for inference requests")
	cmd.Flags().String("api-key", "",
		"API key for the inference endpoint (or set "+apiKeyEnv+")")
	cmd.Flags().Duration("inference-timeout", config.DefaultInferenceTimeout,
		"Timeout for each inference call")

	// Pipeline behavior flags
	cmd.Flags().IntP("servings", "s", 0,
		"Target serving count (0 keeps the original, -1 infers it from the objective)")
	cmd.Flags().StringSliceP("diet", "d", nil,
		"Dietary constraint tag, repeatable (e.g. vegan, gluten-free)")
	cmd.Flags().String("style", config.DefaultStyle,
		"Rendering style: cookbook, simple, or detailed")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for search and page-fetch requests")
	cmd.Flags().IntP("max-candidates", "n", config.DefaultMaxCandidates,
		"Maximum search results to attempt per objective")
	cmd.Flags().IntP("batch", "b", 1,
		"Number of objectives processed concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .souschef in current or home directory)")

	// Output flags
	cmd.Flags().String("output-dir", "",
		"Directory for rendered recipe files (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the run report to the specified file instead of stdout")
	cmd.Flags().Bool("no-history", false,
		"Skip recording this run in the history database")

	return cmd
}

// runCookCmd executes the cook command.
func runCookCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCook(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Precedence, lowest to highest: built-in defaults,
// config file, environment, explicitly set flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise a missing file just means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if key := os.Getenv(apiKeyEnv); key != "" && cfg.APIKey == "" {
		cfg.APIKey = key
	}

	// Flags override the file, but only when actually set: otherwise a
	// default flag value would clobber a file setting.
	if err := applyStringFlag(cmd, "endpoint", &cfg.Endpoint); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "model", &cfg.Model); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "api-key", &cfg.APIKey); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "style", &cfg.Style); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "output-dir", &cfg.OutputDir); err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.InferenceTimeout, err = cmd.Flags().GetDuration("inference-timeout")
	if err != nil {
		return nil, err
	}
	cfg.MaxCandidates, err = cmd.Flags().GetInt("max-candidates")
	if err != nil {
		return nil, err
	}
	cfg.Servings, err = cmd.Flags().GetInt("servings")
	if err != nil {
		return nil, err
	}
	cfg.Concurrency, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	diet, err := cmd.Flags().GetStringSlice("diet")
	if err != nil {
		return nil, err
	}
	cfg.Constraints = config.DedupeConstraints(append(cfg.Constraints, diet...))

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Objectives = args

	return cfg, nil
}

// applyStringFlag copies a string flag into dst only when the user set it.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

// runCook executes the pipeline for the configured objectives.
func runCook(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting run",
		"objectives", len(cfg.Objectives),
		"endpoint", cfg.Endpoint,
		"model", cfg.Model,
		"concurrency", cfg.Concurrency,
	)

	var db *database.HistoryDB
	if cfg.SaveHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer func() { _ = db.Close() }()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	orchestratorFactory := newOrchestratorFactory(cfg, logger)

	requests := make([]pipeline.Request, len(cfg.Objectives))
	for i, objective := range cfg.Objectives {
		requests[i] = pipeline.Request{
			Objective:      objective,
			Constraints:    cfg.Constraints,
			TargetServings: cfg.Servings,
			Style:          cfg.Style,
		}
	}

	if len(requests) > 1 && cfg.Concurrency > 1 {
		return runBatchCook(ctx, cfg, requests, orchestratorFactory, db, logger)
	}

	return runSequentialCook(ctx, cfg, requests, orchestratorFactory, db, logger)
}

// newOrchestratorFactory wires the pipeline components from the config.
// Each orchestrator gets a fresh provider so search caches do not leak
// between concurrent runs.
func newOrchestratorFactory(cfg *config.Config, logger *slog.Logger) func() *pipeline.Orchestrator {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	client := inference.NewOpenAIClient(cfg.Endpoint, cfg.APIKey,
		inference.WithModel(cfg.Model),
		inference.WithTimeout(cfg.InferenceTimeout),
		inference.WithClientLogger(logger),
	)

	fetcher := fetch.NewHTTPFetcher(
		fetch.WithFetchClient(httpClient),
		fetch.WithFetchUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithFetchLogger(logger),
	)

	fileStore := store.NewFileStore(cfg.OutputDir)

	stages := pipeline.DefaultStages(fetcher, client, fileStore, logger)

	return func() *pipeline.Orchestrator {
		provider := search.NewDuckDuckGo(
			search.WithHTTPClient(httpClient),
			search.WithUserAgent(cfg.UserAgent),
			search.WithBlockedDomains(cfg.BlockedDomains),
			search.WithSearchLogger(logger),
		)

		return pipeline.NewOrchestrator(provider, stages,
			pipeline.WithMaxCandidates(cfg.MaxCandidates),
			pipeline.WithLogger(logger),
		)
	}
}

// runSequentialCook runs objectives one at a time.
func runSequentialCook(ctx context.Context, cfg *config.Config, requests []pipeline.Request, factory func() *pipeline.Orchestrator, db *database.HistoryDB, logger *slog.Logger) error {
	for _, req := range requests {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Cooking up %q...\n", req.Objective)
		startTime := time.Now()

		runReport, err := factory().Run(ctx, req)
		if err != nil {
			logger.Error("run failed", "objective", req.Objective, "error", err)
			fmt.Fprintf(os.Stderr, "Run error for %q: %v\n", req.Objective, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Run completed in %s\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, runReport); err != nil {
			logger.Error("report failed", "objective", req.Objective, "error", err)
		}

		if err := saveRunReport(ctx, db, runReport, logger); err != nil {
			logger.Error("failed to save run report", "objective", req.Objective, "error", err)
		}
	}

	return nil
}

// runBatchCook runs multiple objectives concurrently using BatchProcessor.
func runBatchCook(ctx context.Context, cfg *config.Config, requests []pipeline.Request, factory func() *pipeline.Orchestrator, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch run of %d objectives (concurrency: %d)...\n\n",
		len(requests), cfg.Concurrency)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, requests)

	for i, runReport := range reports {
		if runReport == nil {
			continue
		}

		fmt.Printf("[%d/%d] Run completed: %q\n", i+1, len(reports), runReport.Objective)

		if outErr := outputReport(cfg, runReport); outErr != nil {
			logger.Error("report failed", "objective", runReport.Objective, "error", outErr)
		}

		if saveErr := saveRunReport(ctx, db, runReport, logger); saveErr != nil {
			logger.Error("failed to save run report", "objective", runReport.Objective, "error", saveErr)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch run completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(runReport)
	return err
}

// saveRunReport saves the run report to the history database if enabled.
// If db is nil, this function is a no-op.
func saveRunReport(ctx context.Context, db *database.HistoryDB, runReport *model.RunReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.InsertRun(ctx, runReport)
	if err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	logger.Info("run report saved to history", "id", id, "objective", runReport.Objective)
	return nil
}
