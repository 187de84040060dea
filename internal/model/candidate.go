package model

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Candidate is one ranked reference to a recipe page discovered by the
// search provider. Candidates are consumed in rank order by the pipeline;
// a candidate that fails any stage is never revisited.
type Candidate struct {
	// ID uniquely identifies this candidate within a run.
	// It is derived from the URL so repeated searches produce stable IDs.
	ID string `json:"id"`

	// Title is the page title as returned by the search provider.
	Title string `json:"title"`

	// URL is the location of the recipe page.
	URL string `json:"url"`

	// Description is a short snippet from the search result.
	Description string `json:"description"`

	// Source is a friendly name for the site hosting the recipe
	// (e.g. "AllRecipes"), falling back to the URL host.
	Source string `json:"source"`

	// Rank is the provider-assigned position, starting at 1 for the
	// most relevant result.
	Rank int `json:"rank"`
}

// knownSources maps recipe site hosts to friendly display names.
var knownSources = map[string]string{
	"allrecipes.com": "AllRecipes",
	"epicurious.com": "Epicurious",
	"bonappetit.com": "Bon Appétit",
	"tasty.co":       "Tasty",
	"delish.com":     "Delish",
}

// NewCandidate creates a Candidate for the given search result.
// The ID is a short hash of the URL and Source is derived from the host.
func NewCandidate(title, rawURL, description string, rank int) Candidate {
	return Candidate{
		ID:          candidateID(rawURL),
		Title:       title,
		URL:         rawURL,
		Description: description,
		Source:      SourceName(rawURL),
		Rank:        rank,
	}
}

// SourceName returns a friendly site name for a recipe URL.
// Unknown hosts are returned as-is without the "www." prefix;
// unparseable URLs yield "Unknown".
func SourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if name, ok := knownSources[host]; ok {
		return name
	}
	return host
}

// candidateID returns a short stable identifier for a URL.
func candidateID(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "recipe_" + hex.EncodeToString(sum[:6])
}
