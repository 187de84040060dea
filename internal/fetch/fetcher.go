package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Fetch errors.
var (
	// ErrEmptyContent is returned when a page yields no readable text
	// after cleaning.
	ErrEmptyContent = errors.New("page contains no readable content")
)

// Fetcher retrieves the readable text of a page. Implementations are used
// by the Discover stage; failures there move the pipeline to the next
// candidate rather than aborting the run.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTTPFetcher fetches pages over plain HTTP(S) and cleans the HTML for
// inference input.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	maxRunes    int
	logger      *slog.Logger
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithFetchClient sets the HTTP client.
func WithFetchClient(client *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithFetchUserAgent sets the User-Agent header.
func WithFetchUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the raw response size in bytes. Larger responses
// are truncated rather than rejected.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithMaxRunes caps the cleaned text length handed to inference.
func WithMaxRunes(n int) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxRunes = n
	}
}

// WithFetchLogger sets a custom logger.
func WithFetchLogger(logger *slog.Logger) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates an HTTPFetcher with conservative defaults:
// a 5MB body cap and a 6000-rune cleaned-text budget, matching what a
// small local model can consume alongside the extraction instructions.
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		userAgent:   "souschef/1.0 (recipe pipeline)",
		maxBodySize: 5 * 1024 * 1024,
		maxRunes:    6000,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch implements Fetcher. It returns the cleaned, truncated page text.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch of %s returned status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rawURL, err)
	}

	text := Truncate(CleanHTML(body), f.maxRunes)
	if text == "" {
		return "", ErrEmptyContent
	}

	f.logger.Debug("page fetched",
		"url", rawURL,
		"body_bytes", len(body),
		"text_len", len(text),
	)

	return text, nil
}
