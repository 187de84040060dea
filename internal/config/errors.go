package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// ValidateObjective. Package-level sentinels let callers use errors.Is
// for programmatic handling while keeping human-readable messages.
var (
	// ErrNoObjective is returned when no recipe objective was given.
	ErrNoObjective = errors.New("no objective specified: provide a recipe request such as \"vegan pancakes\"")

	// ErrEmptyObjective is returned for an objective that is empty or
	// whitespace only.
	ErrEmptyObjective = errors.New("empty objective")

	// ErrObjectiveTooShort is returned for objectives under 2 characters.
	ErrObjectiveTooShort = errors.New("objective too short: use at least 2 characters")

	// ErrObjectiveTooLong is returned for objectives over 200 characters.
	ErrObjectiveTooLong = errors.New("objective too long: maximum 200 characters")

	// ErrObjectiveNotText is returned for objectives with no letters.
	ErrObjectiveNotText = errors.New("objective contains no letters")

	// ErrNoEndpoint is returned when the inference endpoint is empty.
	ErrNoEndpoint = errors.New("no inference endpoint configured")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxCandidates is returned when the candidate cap is not
	// positive. A cap of zero would mean no candidate is ever attempted.
	ErrInvalidMaxCandidates = errors.New("invalid max candidates: must be positive")

	// ErrInvalidMaxBodySize is returned for a negative body size limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidServings is returned for a servings value below the
	// derive sentinel (-1). Explicit targets must be positive.
	ErrInvalidServings = errors.New("invalid servings: use a positive number, or -1 to derive from the objective")

	// ErrInvalidStyle is returned for an unknown rendering style.
	ErrInvalidStyle = errors.New("invalid style: must be cookbook, simple, or detailed")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)
