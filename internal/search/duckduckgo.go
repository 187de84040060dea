package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"souschef/internal/model"
)

// duckduckgoEndpoint is the HTML (no-JavaScript) search frontend.
const duckduckgoEndpoint = "https://html.duckduckgo.com/html/"

// maxResults caps how many filtered candidates one search returns.
const maxResults = 5

// DuckDuckGo is a Provider backed by the DuckDuckGo HTML endpoint.
//
// Results are cached per query for the lifetime of the provider so that
// repeated Find calls within one run see identical ordering.
type DuckDuckGo struct {
	client    *http.Client
	endpoint  string
	userAgent string
	blocked   []string
	logger    *slog.Logger
	cache     map[string][]model.Candidate
}

// DuckDuckGoOption configures a DuckDuckGo provider.
type DuckDuckGoOption func(*DuckDuckGo)

// WithHTTPClient sets the HTTP client used for search requests.
func WithHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.client = client
	}
}

// WithUserAgent sets the User-Agent header for search requests.
func WithUserAgent(ua string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.userAgent = ua
	}
}

// WithBlockedDomains adds hosts to exclude from results, on top of the
// built-in default (foodnetwork.com consistently blocks fetches).
func WithBlockedDomains(domains []string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.blocked = append(d.blocked, domains...)
	}
}

// WithSearchLogger sets a custom logger.
func WithSearchLogger(logger *slog.Logger) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.logger = logger
	}
}

// NewDuckDuckGo creates a DuckDuckGo search provider.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		client:    &http.Client{Timeout: 30 * time.Second},
		endpoint:  duckduckgoEndpoint,
		userAgent: "souschef/1.0 (recipe pipeline)",
		blocked:   []string{"foodnetwork.com"},
		logger:    slog.Default(),
		cache:     make(map[string][]model.Candidate),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Find implements Provider.
func (d *DuckDuckGo) Find(ctx context.Context, objective string, constraints []string) ([]model.Candidate, error) {
	query := BuildQuery(objective, constraints)

	if cached, ok := d.cache[query]; ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	results, err := ParseResults(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	candidates := d.filter(results)
	d.cache[query] = candidates

	d.logger.Debug("search completed",
		"query", query,
		"raw_results", len(results),
		"candidates", len(candidates),
	)

	return candidates, nil
}

// filter applies blocked-domain and roundup filters, orders preferred
// recipe sites first, and assigns ranks. Ordering is stable with respect
// to the raw result order within each tier.
func (d *DuckDuckGo) filter(results []Result) []model.Candidate {
	var preferred, generic []Result
	for _, r := range results {
		if r.URL == "" || isBlocked(r.URL, d.blocked) || isRoundupTitle(r.Title) {
			continue
		}
		switch {
		case isPreferred(r.URL):
			preferred = append(preferred, r)
		case looksLikeRecipeURL(r.URL):
			generic = append(generic, r)
		}
	}

	ordered := append(preferred, generic...)
	if len(ordered) > maxResults {
		ordered = ordered[:maxResults]
	}

	candidates := make([]model.Candidate, 0, len(ordered))
	for i, r := range ordered {
		candidates = append(candidates, model.NewCandidate(r.Title, r.URL, r.Snippet, i+1))
	}
	return candidates
}

// Result is one raw search hit before filtering.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// ParseResults extracts search hits from the DuckDuckGo HTML response.
//
// golang.org/x/net/html is used rather than regex because the endpoint's
// markup drifts over time and a tolerant tree parse survives attribute
// reordering and malformed fragments.
func ParseResults(r io.Reader) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []Result
	var current *Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if current != nil {
					results = append(results, *current)
				}
				current = &Result{
					Title: textContent(n),
					URL:   resolveRedirect(attr(n, "href")),
				}
			case hasClass(n, "result__snippet"):
				if current != nil && current.Snippet == "" {
					current.Snippet = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil {
		results = append(results, *current)
	}

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links to the
// destination URL. Plain URLs pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	if strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}

	return href
}

// hasClass reports whether an element node carries the given class.
func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the concatenated text under a node, trimmed.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
