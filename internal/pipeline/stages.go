package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"souschef/internal/fetch"
	"souschef/internal/inference"
	"souschef/internal/model"
	"souschef/internal/store"
)

// DefaultOriginalServings is assumed when a recipe page does not state a
// yield and resizing was requested. Scaling against an assumed yield of 1
// makes the factor equal the target, which is the least surprising
// behavior for yield-less recipes.
const DefaultOriginalServings = 1

// Stage names used for failure attribution in run reports.
const (
	StageDiscover  = "discover"
	StageNormalize = "normalize"
	StageResize    = "resize"
	StageRender    = "render"
)

// recipeSignals are lowercase tokens at least one of which must appear in
// fetched page text for the page to be treated as a recipe.
var recipeSignals = []string{
	"ingredient",
	"instruction",
	"direction",
	"cup",
	"tablespoon",
	"teaspoon",
	"preheat",
	"minutes",
	"serving",
}

// DiscoverStage fetches a candidate page and verifies it carries recipe
// content. On success the cleaned page text is stored on the state.
type DiscoverStage struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

// NewDiscoverStage creates a DiscoverStage over the given fetcher.
func NewDiscoverStage(fetcher fetch.Fetcher, logger *slog.Logger) *DiscoverStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoverStage{fetcher: fetcher, logger: logger}
}

// Name returns the stage name.
func (s *DiscoverStage) Name() string { return StageDiscover }

// Do fetches the candidate URL and gates on recipe relevance. A page
// with none of the recipe signal tokens fails the attempt so the
// pipeline never spends an inference call on an article or a storefront.
func (s *DiscoverStage) Do(ctx context.Context, state *State) error {
	content, err := s.fetcher.Fetch(ctx, state.Candidate.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", state.Candidate.URL, err)
	}

	lower := strings.ToLower(content)
	relevant := false
	for _, signal := range recipeSignals {
		if strings.Contains(lower, signal) {
			relevant = true
			break
		}
	}
	if !relevant {
		return fmt.Errorf("%w: %s", ErrContentIrrelevant, state.Candidate.URL)
	}

	state.Content = content
	return nil
}

// normalizeResult is the envelope the extraction prompt asks the model
// to reply with.
type normalizeResult struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Recipe  *model.Recipe `json:"recipe,omitempty"`
}

// NormalizeStage extracts a structured recipe record from page text via
// the inference client.
type NormalizeStage struct {
	client inference.Client
	logger *slog.Logger
}

// NewNormalizeStage creates a NormalizeStage over the given client.
func NewNormalizeStage(client inference.Client, logger *slog.Logger) *NormalizeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &NormalizeStage{client: client, logger: logger}
}

// Name returns the stage name.
func (s *NormalizeStage) Name() string { return StageNormalize }

// Do asks the model to extract the recipe and validates the result.
// An extraction that reports failure, or that comes back without at
// least one ingredient and one step, fails the attempt.
func (s *NormalizeStage) Do(ctx context.Context, state *State) error {
	response, err := s.client.Complete(ctx, normalizeSystemPrompt, NormalizePrompt(state.Candidate, state.Content))
	if err != nil {
		return fmt.Errorf("extraction inference: %w", err)
	}

	var result normalizeResult
	if err := inference.DecodeJSON(response, &result); err != nil {
		return fmt.Errorf("extraction response: %w", err)
	}

	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = "model reported extraction failure"
		}
		return fmt.Errorf("extraction rejected: %s", reason)
	}

	if !result.Recipe.IsComplete() {
		return ErrEmptyRecipe
	}

	recipe := result.Recipe
	recipe.URL = state.Candidate.URL
	recipe.Source = state.Candidate.Source
	if recipe.Title == "" {
		recipe.Title = state.Candidate.Title
	}
	for i := range recipe.Steps {
		if recipe.Steps[i].Number == 0 {
			recipe.Steps[i].Number = i + 1
		}
	}

	state.Recipe = recipe
	return nil
}

// ResizeStage rescales the normalized recipe to a target serving count.
type ResizeStage struct {
	client inference.Client
	target int
	logger *slog.Logger
}

// NewResizeStage creates a ResizeStage. The target follows the Request
// convention: ServingsFromObjective derives the yield from the objective,
// any positive value is used as-is.
func NewResizeStage(client inference.Client, target int, logger *slog.Logger) *ResizeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResizeStage{client: client, target: target, logger: logger}
}

// Name returns the stage name.
func (s *ResizeStage) Name() string { return StageResize }

// Do resolves the target yield, computes the scaling factor against the
// recipe's stated servings (1 when the page stated none), and asks the
// model to rewrite quantities unless the factor is exactly 1.
//
// A derived or explicit target that is not positive fails the attempt
// before any scaling inference happens.
func (s *ResizeStage) Do(ctx context.Context, state *State) error {
	target := s.target
	derived := false

	if target == ServingsFromObjective {
		var err error
		target, err = s.deriveTarget(ctx, state)
		if err != nil {
			return err
		}
		derived = true
	}

	if target <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidServings, target)
	}

	original := state.Recipe.Servings
	if original <= 0 {
		original = DefaultOriginalServings
	}

	factor := float64(target) / float64(original)
	info := &model.ScalingInfo{
		OriginalServings: original,
		TargetServings:   target,
		Factor:           factor,
		Method:           "inference",
	}

	if factor == 1 {
		info.Method = "passthrough"
		if derived {
			info.Method += "+derived"
		}
		scaled := *state.Recipe
		scaled.Servings = target
		state.Scaled = &scaled
		state.Scaling = info
		return nil
	}

	if derived {
		info.Method += "+derived"
	}

	response, err := s.client.Complete(ctx, scaleSystemPrompt, ScalePrompt(state.Recipe, original, target, factor))
	if err != nil {
		return fmt.Errorf("scaling inference: %w", err)
	}

	var scaled model.Recipe
	if err := inference.DecodeJSON(response, &scaled); err != nil {
		return fmt.Errorf("scaling response: %w", err)
	}

	if err := validateScaled(state.Recipe, &scaled); err != nil {
		return err
	}

	scaled.Servings = target
	scaled.URL = state.Recipe.URL
	scaled.Source = state.Recipe.Source
	if scaled.Title == "" {
		scaled.Title = state.Recipe.Title
	}

	state.Scaled = &scaled
	state.Scaling = info
	return nil
}

// servingsPattern matches an explicit serving count in objective text,
// e.g. "for 6 people", "serves 4", "4 servings".
var servingsPattern = regexp.MustCompile(`(?i)(?:for|serves?|feeds?)\s+(-?\d+)\s*(?:people|persons|guests|servings?)?|(-?\d+)\s+(?:people|persons|servings?)`)

// deriveTarget resolves a serving count from the objective text: a cheap
// regex pass first, then an inference call when the text is ambiguous.
func (s *ResizeStage) deriveTarget(ctx context.Context, state *State) (int, error) {
	objective := state.Objective

	if m := servingsPattern.FindStringSubmatch(objective); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil {
			s.logger.Debug("derived servings from objective text", "servings", n)
			return n, nil
		}
	}

	response, err := s.client.Complete(ctx, deriveSystemPrompt, DerivePrompt(objective))
	if err != nil {
		return 0, fmt.Errorf("servings inference: %w", err)
	}

	var result struct {
		Servings int `json:"servings"`
	}
	if err := inference.DecodeJSON(response, &result); err != nil {
		return 0, fmt.Errorf("servings response: %w", err)
	}

	return result.Servings, nil
}

// validateScaled checks that a rescaled recipe still lines up with the
// original: same ingredient count, same step count, and no positive
// quantity collapsed to zero or below.
func validateScaled(original, scaled *model.Recipe) error {
	if len(scaled.Ingredients) != len(original.Ingredients) {
		return fmt.Errorf("%w: %d ingredients became %d",
			ErrScaleMismatch, len(original.Ingredients), len(scaled.Ingredients))
	}
	if len(scaled.Steps) != len(original.Steps) {
		return fmt.Errorf("%w: %d steps became %d",
			ErrScaleMismatch, len(original.Steps), len(scaled.Steps))
	}
	for i, ing := range original.Ingredients {
		if ing.Amount > 0 && scaled.Ingredients[i].Amount <= 0 {
			return fmt.Errorf("%w: ingredient %d amount %g became %g",
				ErrScaleMismatch, i+1, ing.Amount, scaled.Ingredients[i].Amount)
		}
	}
	return nil
}

// RenderStage turns the final recipe into a markdown artifact and
// persists it. Once the pipeline reaches this stage a usable record
// exists, so Render never fails the attempt: an inference failure falls
// back to the deterministic renderer, and a persistence failure is
// tolerated with an empty artifact path.
type RenderStage struct {
	client inference.Client
	store  store.Store
	style  string
	logger *slog.Logger
}

// NewRenderStage creates a RenderStage writing through the given store.
func NewRenderStage(client inference.Client, st store.Store, style string, logger *slog.Logger) *RenderStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderStage{client: client, store: st, style: style, logger: logger}
}

// Name returns the stage name.
func (s *RenderStage) Name() string { return StageRender }

// Do renders and persists the recipe. It always returns nil.
func (s *RenderStage) Do(ctx context.Context, state *State) error {
	recipe := state.FinalRecipe()

	artifact, err := s.render(ctx, recipe, state.Scaling)
	if err != nil {
		s.logger.Warn("render inference failed, using fallback renderer",
			"candidate", state.Candidate.ID,
			"error", err,
		)
		artifact = FallbackMarkdown(recipe, state.Scaling)
		state.Fallback = true
	}
	state.Artifact = artifact

	path, err := s.store.Save(recipe.Title, artifact)
	if err != nil {
		s.logger.Warn("could not persist artifact",
			"candidate", state.Candidate.ID,
			"error", err,
		)
		return nil
	}

	state.ArtifactPath = path
	return nil
}

// render asks the model for a styled markdown document and sanity-checks
// the reply before accepting it.
func (s *RenderStage) render(ctx context.Context, recipe *model.Recipe, scaling *model.ScalingInfo) (string, error) {
	response, err := s.client.Complete(ctx, renderSystemPrompt, RenderPrompt(recipe, scaling, s.style))
	if err != nil {
		return "", err
	}

	doc := inference.StripFences(response)
	doc = strings.TrimSpace(doc)
	if doc == "" || !strings.Contains(doc, "#") {
		return "", fmt.Errorf("render response is not a markdown document")
	}

	return doc, nil
}

// DefaultStages is the StageFactory used by the CLI: discover, normalize,
// optionally resize, then render.
func DefaultStages(fetcher fetch.Fetcher, client inference.Client, st store.Store, logger *slog.Logger) StageFactory {
	return func(req Request) []Stage {
		stages := []Stage{
			NewDiscoverStage(fetcher, logger),
			NewNormalizeStage(client, logger),
		}
		if req.ResizeRequested() {
			stages = append(stages, NewResizeStage(client, req.TargetServings, logger))
		}
		stages = append(stages, NewRenderStage(client, st, req.Style, logger))
		return stages
	}
}
