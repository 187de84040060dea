package search

import (
	"context"
	"strings"

	"souschef/internal/model"
)

// Provider returns ranked candidate recipe pages for an objective.
// An empty result is a valid answer, not an error: it means the pipeline
// should report exhaustion without attempting any stage. Ordering must be
// deterministic for a fixed input within a single run.
type Provider interface {
	Find(ctx context.Context, objective string, constraints []string) ([]model.Candidate, error)
}

// BuildQuery turns an objective and constraint tags into a search query.
// Constraint tags not already present in the objective are prepended, and
// the word "recipe" is appended when missing, which keeps results on
// actual recipe pages rather than food blogs about the dish.
func BuildQuery(objective string, constraints []string) string {
	lower := strings.ToLower(objective)

	var parts []string
	for _, tag := range constraints {
		if !strings.Contains(lower, strings.ToLower(tag)) {
			parts = append(parts, tag)
		}
	}
	parts = append(parts, objective)
	if !strings.Contains(lower, "recipe") {
		parts = append(parts, "recipe")
	}

	return strings.Join(parts, " ")
}

// roundupKeywords mark titles of list/collection pages that aggregate
// many recipes. Those pages defeat single-recipe extraction, so results
// whose titles contain any of these words are skipped.
var roundupKeywords = []string{
	"roundup", "collection", "best", "top", "list",
	"guide", "favorite", "ideas",
}

// preferredDomains are recipe sites with reliably extractable pages.
// Results from these hosts rank ahead of generic matches.
var preferredDomains = []string{
	"allrecipes.com", "epicurious.com", "bonappetit.com",
	"tasty.co", "delish.com",
}

// recipePathKeywords admit generic sites whose URL suggests a recipe page.
var recipePathKeywords = []string{"recipe", "cooking", "food"}

// isRoundupTitle reports whether a result title looks like a multi-recipe
// collection page.
func isRoundupTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range roundupKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isBlocked reports whether the URL's host matches any blocked domain.
func isBlocked(rawURL string, blocked []string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range blocked {
		if strings.Contains(lower, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// isPreferred reports whether the URL belongs to a preferred recipe site.
func isPreferred(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range preferredDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// looksLikeRecipeURL reports whether a generic URL plausibly hosts a
// recipe page.
func looksLikeRecipeURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, kw := range recipePathKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
