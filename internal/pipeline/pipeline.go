package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"souschef/internal/model"
	"souschef/internal/search"
)

// ServingsFromObjective asks the Resize stage to derive the target yield
// from the objective text instead of an explicit number.
const ServingsFromObjective = -1

// Request describes one pipeline run. It is immutable once submitted.
type Request struct {
	// Objective is the free-text recipe request.
	Objective string

	// Constraints are dietary tags, deduplicated and order-preserving.
	Constraints []string

	// TargetServings selects resizing: 0 disables the Resize stage,
	// ServingsFromObjective derives the yield from Objective, and any
	// positive value is used directly.
	TargetServings int

	// Style is the rendering style for the final artifact.
	Style string
}

// ResizeRequested reports whether the run should include the Resize stage.
func (r Request) ResizeRequested() bool {
	return r.TargetServings != 0
}

// State is the per-attempt accumulator threaded through the stages.
// Each slot is owned by exactly one stage; stages read upstream slots but
// only write their own. A State never outlives its candidate attempt.
type State struct {
	// Candidate is the candidate this attempt is for.
	Candidate model.Candidate

	// Objective is the run's objective text, for stages that need to
	// consult the user's own words (e.g. deriving a serving count).
	Objective string

	// Content is the cleaned page text. Owned by Discover.
	Content string

	// Recipe is the extracted structured record. Owned by Normalize.
	Recipe *model.Recipe

	// Scaled and Scaling hold the rescaled record and its traceability
	// metadata. Owned by Resize.
	Scaled  *model.Recipe
	Scaling *model.ScalingInfo

	// Artifact is the rendered document; ArtifactPath is where it was
	// persisted (empty when persistence failed). Fallback is true when
	// the deterministic renderer produced the artifact. Owned by Render.
	Artifact     string
	ArtifactPath string
	Fallback     bool
}

// NewState creates an empty State for a candidate attempt.
func NewState(candidate model.Candidate) *State {
	return &State{Candidate: candidate}
}

// FinalRecipe returns the record Render should use: the rescaled recipe
// when Resize ran, otherwise the normalized one.
func (s *State) FinalRecipe() *model.Recipe {
	if s.Scaled != nil {
		return s.Scaled
	}
	return s.Recipe
}

// Stage is one unit of work in the pipeline. A Stage that fails must
// leave the parts of the state it does not own untouched; the
// orchestrator discards the whole State on failure, so partial writes to
// a stage's own slot are harmless.
type Stage interface {
	// Do executes the stage against the current state.
	Do(ctx context.Context, state *State) error

	// Name returns the stage's name for failure attribution and logging.
	Name() string
}

// StageFactory builds the stage sequence for a request. The orchestrator
// calls it once per run; the Resize stage should be included only when
// the request asks for it.
type StageFactory func(req Request) []Stage

// Orchestrator drives candidates through the stage sequence.
type Orchestrator struct {
	provider      search.Provider
	stages        StageFactory
	maxCandidates int
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxCandidates caps how many candidates a run may attempt.
// Default is 5.
func WithMaxCandidates(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxCandidates = n
		}
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator over the given provider and
// stage factory.
func NewOrchestrator(provider search.Provider, stages StageFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:      provider,
		stages:        stages,
		maxCandidates: 5,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run executes the pipeline for one request and always returns a report.
// The error is non-nil only for faults outside the pipeline's recovery
// model: a provider transport failure or context cancellation. Every
// stage failure is recovered locally by advancing to the next candidate
// and is visible only through the report's attempt log.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*model.RunReport, error) {
	report := model.NewRunReport(req.Objective, req.Constraints)
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	candidates, err := o.provider.Find(ctx, req.Objective, req.Constraints)
	if err != nil {
		return report, fmt.Errorf("candidate search failed: %w", err)
	}

	if len(candidates) == 0 {
		o.logger.Info("no candidates found", "objective", req.Objective)
		return report, nil
	}

	if len(candidates) > o.maxCandidates {
		candidates = candidates[:o.maxCandidates]
	}

	stages := o.stages(req)

	for _, candidate := range candidates {
		state, err := o.attempt(ctx, stages, candidate, req, report)
		if err != nil {
			// Only context cancellation escapes an attempt.
			return report, err
		}
		if state == nil {
			continue
		}

		report.Succeeded = true
		report.Winner = &state.Candidate
		report.Recipe = state.FinalRecipe()
		report.Scaling = state.Scaling
		report.ArtifactPath = state.ArtifactPath
		report.Fallback = state.Fallback
		for _, stage := range stages {
			report.StagesRun = append(report.StagesRun, stage.Name())
		}

		o.logger.Info("pipeline succeeded",
			"candidate", candidate.ID,
			"url", candidate.URL,
			"attempts_failed", len(report.Attempts),
		)
		return report, nil
	}

	o.logger.Info("all candidates exhausted",
		"objective", req.Objective,
		"attempts", len(report.Attempts),
	)
	return report, nil
}

// attempt runs the full stage sequence for one candidate. It returns the
// populated state on success, nil when a stage failed (after recording
// the failure in the report), or an error on context cancellation.
func (o *Orchestrator) attempt(ctx context.Context, stages []Stage, candidate model.Candidate, req Request, report *model.RunReport) (*State, error) {
	state := NewState(candidate)
	state.Objective = req.Objective

	for _, stage := range stages {
		// Cancellation is checked between stages only: each stage call
		// is an opaque unit of work with its own timeouts.
		select {
		case <-ctx.Done():
			o.logger.Warn("run cancelled",
				"candidate", candidate.ID,
				"stage", stage.Name(),
			)
			return nil, ctx.Err()
		default:
		}

		o.logger.Debug("executing stage",
			"stage", stage.Name(),
			"candidate", candidate.ID,
		)

		if err := stage.Do(ctx, state); err != nil {
			o.logger.Info("stage failed, trying next candidate",
				"stage", stage.Name(),
				"candidate", candidate.ID,
				"error", err,
			)
			report.Attempts = append(report.Attempts, model.Attempt{
				Candidate: candidate,
				Stage:     stage.Name(),
				Reason:    err.Error(),
			})
			return nil, nil
		}
	}

	return state, nil
}
