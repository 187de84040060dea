package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"souschef/internal/model"
)

// mockFetcher is a test helper that implements fetch.Fetcher.
type mockFetcher struct {
	content string
	err     error
}

// Fetch implements Fetcher.Fetch.
func (m *mockFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

// mockClient is a test helper that implements inference.Client.
type mockClient struct {
	completeFunc func(system, prompt string) (string, error)
	calls        []string
}

// Complete implements Client.Complete.
func (m *mockClient) Complete(_ context.Context, system, prompt string) (string, error) {
	m.calls = append(m.calls, system)
	if m.completeFunc != nil {
		return m.completeFunc(system, prompt)
	}
	return "", errors.New("unexpected inference call")
}

// mockStore is a test helper that implements store.Store.
type mockStore struct {
	path  string
	err   error
	saved string
}

// Save implements Store.Save.
func (m *mockStore) Save(_, content string) (string, error) {
	m.saved = content
	return m.path, m.err
}

// testCandidate returns a candidate for stage tests.
func testCandidate() model.Candidate {
	return model.NewCandidate(
		"Classic Pad Thai",
		"https://allrecipes.com/recipe/pad-thai",
		"An easy pad thai",
		1,
	)
}

// testRecipe returns a complete recipe for stage tests.
func testRecipe(servings int) *model.Recipe {
	return &model.Recipe{
		Title: "Classic Pad Thai",
		Ingredients: []model.Ingredient{
			{Text: "8 oz rice noodles", Amount: 8, Unit: "oz"},
			{Text: "2 eggs", Amount: 2},
		},
		Steps: []model.Step{
			{Number: 1, Text: "Soak the noodles."},
			{Number: 2, Text: "Scramble the eggs."},
		},
		Servings: servings,
	}
}

// TestDiscoverStage tests fetching and the relevance gate.
func TestDiscoverStage(t *testing.T) {
	t.Parallel()

	t.Run("stores recipe content on the state", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{content: "Ingredients: 2 cups flour. Preheat the oven."}
		stage := NewDiscoverStage(fetcher, nil)
		state := NewState(testCandidate())

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Content != fetcher.content {
			t.Errorf("expected content on state, got %q", state.Content)
		}
	})

	t.Run("rejects pages without recipe signal", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{content: "Our top food bloggers share their thoughts on kitchen design."}
		stage := NewDiscoverStage(fetcher, nil)
		state := NewState(testCandidate())

		err := stage.Do(context.Background(), state)
		if !errors.Is(err, ErrContentIrrelevant) {
			t.Errorf("expected ErrContentIrrelevant, got %v", err)
		}
		if state.Content != "" {
			t.Error("expected no content on failed state")
		}
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{err: errors.New("404 not found")}
		stage := NewDiscoverStage(fetcher, nil)

		err := stage.Do(context.Background(), NewState(testCandidate()))
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("expected fetch error, got %v", err)
		}
	})

	t.Run("has the discover name", func(t *testing.T) {
		t.Parallel()

		if got := NewDiscoverStage(nil, nil).Name(); got != StageDiscover {
			t.Errorf("expected %q, got %q", StageDiscover, got)
		}
	})
}

// TestNormalizeStage tests recipe extraction and validation.
func TestNormalizeStage(t *testing.T) {
	t.Parallel()

	const validResponse = `{
		"success": true,
		"recipe": {
			"title": "Classic Pad Thai",
			"ingredients": [{"ingredient": "8 oz rice noodles", "amount": 8, "unit": "oz"}],
			"instructions": [{"instruction": "Soak the noodles."}],
			"servings": 4
		}
	}`

	t.Run("extracts a complete recipe", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return validResponse, nil
		}}
		stage := NewNormalizeStage(client, nil)
		state := NewState(testCandidate())
		state.Content = "page text"

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Recipe == nil {
			t.Fatal("expected recipe on state")
		}
		if state.Recipe.Servings != 4 {
			t.Errorf("expected 4 servings, got %d", state.Recipe.Servings)
		}
		if state.Recipe.URL != state.Candidate.URL {
			t.Errorf("expected candidate URL on recipe, got %q", state.Recipe.URL)
		}
		if state.Recipe.Steps[0].Number != 1 {
			t.Errorf("expected step renumbered to 1, got %d", state.Recipe.Steps[0].Number)
		}
	})

	t.Run("accepts fenced responses", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "```json\n" + validResponse + "\n```", nil
		}}
		stage := NewNormalizeStage(client, nil)
		state := NewState(testCandidate())

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("fails when the model reports failure", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return `{"success": false, "error": "page is a product listing"}`, nil
		}}
		stage := NewNormalizeStage(client, nil)

		err := stage.Do(context.Background(), NewState(testCandidate()))
		if err == nil || !strings.Contains(err.Error(), "product listing") {
			t.Errorf("expected model rejection reason, got %v", err)
		}
	})

	t.Run("rejects recipes without ingredients or steps", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			response string
		}{
			{
				"no ingredients",
				`{"success": true, "recipe": {"title": "X", "ingredients": [], "instructions": [{"instruction": "Mix."}]}}`,
			},
			{
				"no instructions",
				`{"success": true, "recipe": {"title": "X", "ingredients": [{"ingredient": "flour"}], "instructions": []}}`,
			},
			{
				"missing recipe object",
				`{"success": true, "recipe": null}`,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				client := &mockClient{completeFunc: func(_, _ string) (string, error) {
					return tt.response, nil
				}}
				stage := NewNormalizeStage(client, nil)

				err := stage.Do(context.Background(), NewState(testCandidate()))
				if !errors.Is(err, ErrEmptyRecipe) {
					t.Errorf("expected ErrEmptyRecipe, got %v", err)
				}
			})
		}
	})

	t.Run("fails on non-JSON responses", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "Sorry, I could not find a recipe on that page.", nil
		}}
		stage := NewNormalizeStage(client, nil)

		if err := stage.Do(context.Background(), NewState(testCandidate())); err == nil {
			t.Error("expected error for prose response")
		}
	})
}

// TestResizeStage tests target resolution and scaling.
func TestResizeStage(t *testing.T) {
	t.Parallel()

	// scaledResponse echoes the test recipe with doubled quantities.
	const scaledResponse = `{
		"title": "Classic Pad Thai",
		"ingredients": [
			{"ingredient": "16 oz rice noodles", "amount": 16, "unit": "oz"},
			{"ingredient": "4 eggs", "amount": 4}
		],
		"instructions": [
			{"step": 1, "instruction": "Soak the noodles."},
			{"step": 2, "instruction": "Scramble the eggs."}
		]
	}`

	t.Run("scales to an explicit target", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return scaledResponse, nil
		}}
		stage := NewResizeStage(client, 8, nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if state.Scaled == nil {
			t.Fatal("expected scaled recipe")
		}
		if state.Scaled.Servings != 8 {
			t.Errorf("expected 8 servings, got %d", state.Scaled.Servings)
		}
		if state.Scaling == nil {
			t.Fatal("expected scaling info")
		}
		if state.Scaling.Factor != 2 {
			t.Errorf("expected factor 2, got %g", state.Scaling.Factor)
		}
		if state.Scaling.Method != "inference" {
			t.Errorf("expected method inference, got %q", state.Scaling.Method)
		}
	})

	t.Run("factor one skips the scaling call", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{}
		stage := NewResizeStage(client, 4, nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(client.calls) != 0 {
			t.Errorf("expected no inference calls, got %d", len(client.calls))
		}
		if state.Scaling.Method != "passthrough" {
			t.Errorf("expected passthrough, got %q", state.Scaling.Method)
		}
		if state.Scaled.Ingredients[0].Amount != 8 {
			t.Error("expected quantities unchanged")
		}
	})

	t.Run("assumes one serving when the page stated none", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return scaledResponse, nil
		}}
		stage := NewResizeStage(client, 3, nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(0)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if state.Scaling.OriginalServings != DefaultOriginalServings {
			t.Errorf("expected original servings %d, got %d",
				DefaultOriginalServings, state.Scaling.OriginalServings)
		}
		if state.Scaling.Factor != 3 {
			t.Errorf("expected factor 3, got %g", state.Scaling.Factor)
		}
	})

	t.Run("rejects non-positive explicit targets before any call", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{}
		stage := NewResizeStage(client, -3, nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		err := stage.Do(context.Background(), state)
		if !errors.Is(err, ErrInvalidServings) {
			t.Fatalf("expected ErrInvalidServings, got %v", err)
		}
		if len(client.calls) != 0 {
			t.Errorf("expected no inference calls, got %d", len(client.calls))
		}
	})

	t.Run("derives the target from objective text without inference", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return scaledResponse, nil
		}}
		stage := NewResizeStage(client, ServingsFromObjective, nil)
		state := NewState(testCandidate())
		state.Objective = "pad thai for 8 people"
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if state.Scaling.TargetServings != 8 {
			t.Errorf("expected target 8, got %d", state.Scaling.TargetServings)
		}
		if state.Scaling.Method != "inference+derived" {
			t.Errorf("expected inference+derived, got %q", state.Scaling.Method)
		}
		// Only the scaling call, not a derivation call.
		if len(client.calls) != 1 {
			t.Errorf("expected 1 inference call, got %d", len(client.calls))
		}
	})

	t.Run("derives the target via inference when text is ambiguous", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(system, _ string) (string, error) {
			if strings.Contains(system, "how many") {
				return `{"servings": 6}`, nil
			}
			return scaledResponse, nil
		}}
		stage := NewResizeStage(client, ServingsFromObjective, nil)
		state := NewState(testCandidate())
		state.Objective = "pad thai for a small dinner party"
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if state.Scaling.TargetServings != 6 {
			t.Errorf("expected target 6, got %d", state.Scaling.TargetServings)
		}
		if len(client.calls) != 2 {
			t.Errorf("expected 2 inference calls, got %d", len(client.calls))
		}
	})

	t.Run("rejects a derived zero before the scaling call", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return `{"servings": 0}`, nil
		}}
		stage := NewResizeStage(client, ServingsFromObjective, nil)
		state := NewState(testCandidate())
		state.Objective = "a nice pad thai"
		state.Recipe = testRecipe(4)

		err := stage.Do(context.Background(), state)
		if !errors.Is(err, ErrInvalidServings) {
			t.Fatalf("expected ErrInvalidServings, got %v", err)
		}
		// Exactly the derivation call, never the scaling call.
		if len(client.calls) != 1 {
			t.Errorf("expected 1 inference call, got %d", len(client.calls))
		}
	})

	t.Run("marks passthrough of a derived target", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{}
		stage := NewResizeStage(client, ServingsFromObjective, nil)
		state := NewState(testCandidate())
		state.Objective = "pad thai for 4 people"
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Scaling.Method != "passthrough+derived" {
			t.Errorf("expected passthrough+derived, got %q", state.Scaling.Method)
		}
	})

	t.Run("rejects mismatched scaled recipes", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return `{
				"title": "Classic Pad Thai",
				"ingredients": [{"ingredient": "16 oz rice noodles", "amount": 16, "unit": "oz"}],
				"instructions": [
					{"step": 1, "instruction": "Soak the noodles."},
					{"step": 2, "instruction": "Scramble the eggs."}
				]
			}`, nil
		}}
		stage := NewResizeStage(client, 8, nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		err := stage.Do(context.Background(), state)
		if !errors.Is(err, ErrScaleMismatch) {
			t.Errorf("expected ErrScaleMismatch, got %v", err)
		}
	})

	t.Run("rejects quantities that collapse to zero or below", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return `{
				"title": "Classic Pad Thai",
				"ingredients": [
					{"ingredient": "0 oz rice noodles", "amount": 0, "unit": "oz"},
					{"ingredient": "-4 eggs", "amount": -4}
				],
				"instructions": [
					{"step": 1, "instruction": "Soak the noodles."},
					{"step": 2, "instruction": "Scramble the eggs."}
				]
			}`, nil
		}}
		stage := NewResizeStage(client, 8, nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		err := stage.Do(context.Background(), state)
		if !errors.Is(err, ErrScaleMismatch) {
			t.Errorf("expected ErrScaleMismatch, got %v", err)
		}
		if state.Scaled != nil {
			t.Error("expected no scaled recipe on the state")
		}
	})
}

// TestRenderStage tests the render guarantee.
func TestRenderStage(t *testing.T) {
	t.Parallel()

	t.Run("renders via inference and persists", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "# Classic Pad Thai\n\nA lovely noodle dish.", nil
		}}
		st := &mockStore{path: "/tmp/classic-pad-thai.md"}
		stage := NewRenderStage(client, st, "cookbook", nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if state.Fallback {
			t.Error("expected inference rendering, not fallback")
		}
		if state.ArtifactPath != st.path {
			t.Errorf("expected artifact path %q, got %q", st.path, state.ArtifactPath)
		}
		if !strings.HasPrefix(st.saved, "# Classic Pad Thai") {
			t.Errorf("unexpected saved document: %q", st.saved)
		}
	})

	t.Run("falls back when inference fails", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "", errors.New("endpoint unreachable")
		}}
		st := &mockStore{path: "/tmp/classic-pad-thai.md"}
		stage := NewRenderStage(client, st, "cookbook", nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("expected render to never fail, got %v", err)
		}

		if !state.Fallback {
			t.Error("expected fallback rendering")
		}
		if !strings.Contains(state.Artifact, "Classic Pad Thai") {
			t.Errorf("expected fallback document with title, got %q", state.Artifact)
		}
		if !strings.Contains(state.Artifact, "8 oz rice noodles") {
			t.Error("expected fallback document with ingredients")
		}
	})

	t.Run("falls back when the response is not markdown", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "Here you go, enjoy the recipe!", nil
		}}
		st := &mockStore{}
		stage := NewRenderStage(client, st, "simple", nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !state.Fallback {
			t.Error("expected fallback for non-markdown response")
		}
	})

	t.Run("tolerates persistence failure", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "# Classic Pad Thai", nil
		}}
		st := &mockStore{err: errors.New("disk full")}
		stage := NewRenderStage(client, st, "cookbook", nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("expected render to never fail, got %v", err)
		}

		if state.Artifact == "" {
			t.Error("expected artifact despite save failure")
		}
		if state.ArtifactPath != "" {
			t.Errorf("expected empty artifact path, got %q", state.ArtifactPath)
		}
	})

	t.Run("survives inference and persistence both failing", func(t *testing.T) {
		t.Parallel()

		client := &mockClient{completeFunc: func(_, _ string) (string, error) {
			return "", errors.New("endpoint unreachable")
		}}
		st := &mockStore{err: errors.New("disk full")}
		stage := NewRenderStage(client, st, "cookbook", nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("expected render to never fail, got %v", err)
		}

		if !state.Fallback {
			t.Error("expected fallback rendering")
		}
		if !strings.Contains(state.Artifact, "Classic Pad Thai") {
			t.Errorf("expected fallback document despite save failure, got %q", state.Artifact)
		}
		if state.ArtifactPath != "" {
			t.Errorf("expected empty artifact path, got %q", state.ArtifactPath)
		}
	})

	t.Run("renders the scaled recipe when present", func(t *testing.T) {
		t.Parallel()

		var prompt string
		client := &mockClient{completeFunc: func(_, p string) (string, error) {
			prompt = p
			return "# Scaled Pad Thai", nil
		}}
		st := &mockStore{}
		stage := NewRenderStage(client, st, "cookbook", nil)
		state := NewState(testCandidate())
		state.Recipe = testRecipe(4)
		scaled := testRecipe(8)
		scaled.Ingredients[0].Text = "16 oz rice noodles"
		state.Scaled = scaled

		if err := stage.Do(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(prompt, "16 oz rice noodles") {
			t.Error("expected prompt to carry the scaled recipe")
		}
	})
}

// TestDefaultStages tests stage sequence assembly.
func TestDefaultStages(t *testing.T) {
	t.Parallel()

	factory := DefaultStages(&mockFetcher{}, &mockClient{}, &mockStore{}, nil)

	t.Run("omits resize when not requested", func(t *testing.T) {
		t.Parallel()

		stages := factory(Request{TargetServings: 0, Style: "cookbook"})

		want := []string{StageDiscover, StageNormalize, StageRender}
		if len(stages) != len(want) {
			t.Fatalf("expected %d stages, got %d", len(want), len(stages))
		}
		for i, name := range want {
			if stages[i].Name() != name {
				t.Errorf("stage %d: expected %s, got %s", i, name, stages[i].Name())
			}
		}
	})

	t.Run("includes resize when requested", func(t *testing.T) {
		t.Parallel()

		stages := factory(Request{TargetServings: 6, Style: "cookbook"})

		want := []string{StageDiscover, StageNormalize, StageResize, StageRender}
		if len(stages) != len(want) {
			t.Fatalf("expected %d stages, got %d", len(want), len(stages))
		}
		for i, name := range want {
			if stages[i].Name() != name {
				t.Errorf("stage %d: expected %s, got %s", i, name, stages[i].Name())
			}
		}
	})
}

// TestFallbackMarkdown tests the deterministic renderer.
func TestFallbackMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("renders a complete document", func(t *testing.T) {
		t.Parallel()

		recipe := testRecipe(4)
		recipe.Description = "Street-food classic."
		recipe.PrepTime = "15 minutes"
		recipe.URL = "https://allrecipes.com/recipe/pad-thai"
		recipe.Source = "AllRecipes"

		doc := FallbackMarkdown(recipe, nil)

		for _, want := range []string{
			"# Classic Pad Thai",
			"Street-food classic.",
			"## Ingredients",
			"8 oz rice noodles",
			"## Instructions",
			"1. Soak the noodles.",
			"2. Scramble the eggs.",
			"15 minutes",
			"AllRecipes",
		} {
			if !strings.Contains(doc, want) {
				t.Errorf("expected document to contain %q", want)
			}
		}
	})

	t.Run("notes rescaling in the facts table", func(t *testing.T) {
		t.Parallel()

		recipe := testRecipe(8)
		scaling := &model.ScalingInfo{OriginalServings: 4, TargetServings: 8, Factor: 2, Method: "inference"}

		doc := FallbackMarkdown(recipe, scaling)
		if !strings.Contains(doc, "rescaled from 4") {
			t.Error("expected rescaling note in document")
		}
	})

	t.Run("handles a minimal recipe", func(t *testing.T) {
		t.Parallel()

		recipe := &model.Recipe{
			Title:       "Toast",
			Ingredients: []model.Ingredient{{Text: "1 slice bread"}},
			Steps:       []model.Step{{Number: 1, Text: "Toast the bread."}},
		}

		doc := FallbackMarkdown(recipe, nil)
		if !strings.Contains(doc, "# Toast") {
			t.Error("expected title heading")
		}
		if strings.Contains(doc, "Servings") {
			t.Error("expected no facts table for a yield-less recipe")
		}
	})
}
