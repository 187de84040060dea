package config

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/adrg/xdg"
)

// Default configuration values. These are chosen to work against a local
// OpenAI-compatible server out of the box while remaining polite to the
// recipe sites souschef fetches from.
const (
	// DefaultEndpoint is the OpenAI-compatible chat-completions base URL.
	// A local inference server is assumed by default; point this at a
	// hosted API via flags or the config file.
	DefaultEndpoint = "http://127.0.0.1:1234/v1"

	// DefaultModel is the model identifier sent with inference requests.
	DefaultModel = "qwen/qwen3-4b-2507"

	// DefaultTimeout applies to each outbound HTTP request (search,
	// page fetch). Inference requests get DefaultInferenceTimeout.
	DefaultTimeout = 30 * time.Second

	// DefaultInferenceTimeout is generous because local models can take
	// a minute to produce a long structured answer.
	DefaultInferenceTimeout = 120 * time.Second

	// DefaultMaxCandidates caps how many search results one run may
	// attempt. Each attempt can cost several inference calls, so this
	// bounds the worst-case latency of an unlucky query.
	DefaultMaxCandidates = 5

	// DefaultMaxBodySize limits the response body read from recipe
	// pages. 5MB is ample for HTML while preventing memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies souschef in HTTP requests so site
	// operators can recognize the traffic.
	DefaultUserAgent = "souschef/1.0 (recipe pipeline)"

	// DefaultStyle is the rendering style for the final artifact.
	DefaultStyle = "cookbook"

	// AppName is used for XDG directory paths.
	AppName = "souschef"
)

// Config holds all options for a souschef run. It is populated from CLI
// flags and the optional .souschef file, then passed through the
// application explicitly rather than read from ambient process state.
type Config struct {
	// Endpoint is the base URL of the OpenAI-compatible inference API.
	Endpoint string

	// Model is the model identifier for inference requests.
	Model string

	// APIKey authenticates against the inference endpoint.
	// May be empty for local servers that ignore authentication.
	APIKey string

	// Timeout applies to search and page-fetch HTTP requests.
	Timeout time.Duration

	// InferenceTimeout applies to each inference call.
	InferenceTimeout time.Duration

	// MaxCandidates is the maximum number of search results to attempt
	// before reporting exhaustion.
	MaxCandidates int

	// MaxBodySize is the maximum recipe-page response size in bytes.
	MaxBodySize int64

	// UserAgent is sent with search and fetch requests.
	UserAgent string

	// Servings is the target yield. 0 disables the Resize stage;
	// a negative value asks the pipeline to derive the yield from the
	// objective text.
	Servings int

	// Style selects the rendering style: cookbook, simple, or detailed.
	Style string

	// Objectives are the recipe requests to run, one pipeline run each.
	Objectives []string

	// Constraints are dietary tags applied to every objective.
	Constraints []string

	// OutputDir is where rendered recipe files are written.
	// Defaults to the XDG data directory.
	OutputDir string

	// ReportFile, when set, receives the run report instead of stdout.
	ReportFile string

	// JSONReport and MarkdownReport select the report format.
	// Mutually exclusive; the default is a human-readable text report.
	JSONReport     bool
	MarkdownReport bool

	// BlockedDomains are hosts excluded from search results.
	BlockedDomains []string

	// Concurrency is the number of objectives processed in parallel
	// when several are given. Within one objective the pipeline is
	// strictly sequential.
	Concurrency int

	// SaveHistory enables recording run reports to the SQLite history
	// database under DBDir.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is an explicit config file location. When empty,
	// .souschef is searched for in the current directory, the XDG
	// config directory, and the home directory.
	ConfigFilePath string
}

// NewConfig returns a Config populated with defaults. Zero values would be
// wrong for most fields (timeouts, endpoint), so defaults are set here and
// documented in one place.
func NewConfig() *Config {
	return &Config{
		Endpoint:         DefaultEndpoint,
		Model:            DefaultModel,
		Timeout:          DefaultTimeout,
		InferenceTimeout: DefaultInferenceTimeout,
		MaxCandidates:    DefaultMaxCandidates,
		MaxBodySize:      DefaultMaxBodySize,
		UserAgent:        DefaultUserAgent,
		Style:            DefaultStyle,
		Concurrency:      1,
		OutputDir:        filepath.Join(XDGDataDir(), "recipes"),
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for souschef.
// On Linux: ~/.local/share/souschef
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for souschef.
// On Linux: ~/.config/souschef
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// validStyles are the rendering styles the Render stage understands.
var validStyles = map[string]bool{
	"cookbook": true,
	"simple":   true,
	"detailed": true,
}

// Validate checks the configuration and returns the first problem found.
// It runs once after flag parsing, before any network activity.
func (c *Config) Validate() error {
	if len(c.Objectives) == 0 {
		return ErrNoObjective
	}

	for _, objective := range c.Objectives {
		if err := ValidateObjective(objective); err != nil {
			return err
		}
	}

	if c.Endpoint == "" {
		return ErrNoEndpoint
	}

	if c.Timeout <= 0 || c.InferenceTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxCandidates <= 0 {
		return ErrInvalidMaxCandidates
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// Servings < 0 is the derive-from-objective sentinel; any explicit
	// non-positive target is caught at flag parsing by using -1 as the
	// only sentinel value.
	if c.Servings < -1 {
		return ErrInvalidServings
	}

	if !validStyles[c.Style] {
		return ErrInvalidStyle
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	return nil
}

// ValidateObjective applies the request-quality rules to a free-text
// objective: non-empty, between 2 and 200 characters, and containing at
// least one letter. Objectives made of digits and punctuation only are
// almost always accidental input rather than a dish.
func ValidateObjective(objective string) error {
	trimmed := strings.TrimSpace(objective)

	// Rune count, not bytes: non-ASCII dish names must get the full
	// 200 characters.
	switch length := utf8.RuneCountInString(trimmed); {
	case trimmed == "":
		return ErrEmptyObjective
	case length < 2:
		return ErrObjectiveTooShort
	case length > 200:
		return ErrObjectiveTooLong
	case !strings.ContainsFunc(trimmed, unicode.IsLetter):
		return ErrObjectiveNotText
	}
	return nil
}

// DedupeConstraints returns the constraint tags lowercased with duplicates
// removed, preserving first-seen order.
func DedupeConstraints(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}
