package inference

import "errors"

// Inference errors. Stages convert these into per-candidate failures;
// they never abort a whole run.
var (
	// ErrEmptyResponse is returned when the service answers with no
	// usable text.
	ErrEmptyResponse = errors.New("inference returned an empty response")

	// ErrNoJSON is returned when a response expected to carry a JSON
	// object contains no braces to extract.
	ErrNoJSON = errors.New("no JSON object found in inference response")
)
