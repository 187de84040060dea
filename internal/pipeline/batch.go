package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"souschef/internal/model"
)

// BatchProcessor runs the pipeline for several objectives concurrently.
//
// Design decision: batching lives outside the Orchestrator. The
// Orchestrator stays a single-run engine, and the batch layer can grow
// its own policies (rate limiting, retries) without touching it.
type BatchProcessor struct {
	// orchestratorFactory creates a fresh orchestrator for each run so
	// provider caches and state never leak between objectives.
	orchestratorFactory func() *Orchestrator

	// concurrency is the maximum number of concurrent runs. Local
	// inference endpoints usually serve one request at a time, so the
	// default is conservative.
	concurrency int

	logger *slog.Logger

	// results holds completed run reports in input order, guarded by mu.
	results []*model.RunReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Default is 2 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(orchestratorFactory func() *Orchestrator, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		orchestratorFactory: orchestratorFactory,
		concurrency:         2,
		results:             make([]*model.RunReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline for multiple requests concurrently,
// bounded by the configured concurrency via errgroup.SetLimit.
//
// It returns every report collected, including those for runs whose
// candidates were exhausted. The error return indicates cancellation,
// not run failure: domain failures live inside each report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, requests []Request) ([]*model.RunReport, error) {
	bp.logger.Info("starting batch",
		"requests", len(requests),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Index-addressed so report order matches request order.
	bp.results = make([]*model.RunReport, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, req := range requests {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("running objective",
				"objective", req.Objective,
				"index", i+1,
				"total", len(requests),
			)

			orch := bp.orchestratorFactory()
			report, err := orch.Run(ctx, req)

			// Store the report regardless of error; it carries the
			// attempt log even for failed runs.
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("run failed",
					"objective", req.Objective,
					"error", err,
				)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// A provider fault for one objective should not stop
				// the others.
				return nil
			}

			bp.logger.Info("run completed",
				"objective", req.Objective,
				"succeeded", report.Succeeded,
			)

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch complete",
		"requests", len(requests),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}
