package model

import (
	"strings"
	"testing"
)

// TestNewCandidate tests candidate construction.
func TestNewCandidate(t *testing.T) {
	t.Parallel()

	c := NewCandidate("Vegan Pancakes", "https://www.allrecipes.com/recipe/123", "Fluffy pancakes.", 1)

	t.Run("derives stable ID from URL", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(c.ID, "recipe_") {
			t.Errorf("got %q, expected recipe_ prefix", c.ID)
		}
		again := NewCandidate("other title", "https://www.allrecipes.com/recipe/123", "", 5)
		if again.ID != c.ID {
			t.Errorf("IDs differ for same URL: %q vs %q", again.ID, c.ID)
		}
	})

	t.Run("resolves friendly source name", func(t *testing.T) {
		t.Parallel()
		if c.Source != "AllRecipes" {
			t.Errorf("got %q, expected %q", c.Source, "AllRecipes")
		}
	})

	t.Run("keeps provider rank", func(t *testing.T) {
		t.Parallel()
		if c.Rank != 1 {
			t.Errorf("got %d, expected 1", c.Rank)
		}
	})
}

// TestSourceName tests friendly source name resolution.
func TestSourceName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "known site", url: "https://www.epicurious.com/recipes/x", want: "Epicurious"},
		{name: "known site without www", url: "https://tasty.co/recipe/y", want: "Tasty"},
		{name: "unknown site falls back to host", url: "https://www.example.org/r", want: "example.org"},
		{name: "missing host", url: "not-a-url", want: "Unknown"},
		{name: "empty", url: "", want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SourceName(tt.url); got != tt.want {
				t.Errorf("SourceName(%q) = %q, expected %q", tt.url, got, tt.want)
			}
		})
	}
}
