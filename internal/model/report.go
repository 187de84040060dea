package model

import "time"

// RunReport is the structured outcome of one pipeline run. It is produced
// for every run, successful or not, and is what the report writers and the
// history database consume. The pipeline never surfaces domain failures as
// errors; they are enumerated here instead.
type RunReport struct {
	// Objective is the free-text request the run was started with.
	Objective string `json:"objective"`

	// Constraints are the dietary tags applied to the search,
	// deduplicated and order-preserving.
	Constraints []string `json:"constraints,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Succeeded is true when one candidate survived every stage.
	Succeeded bool `json:"succeeded"`

	// Winner is the candidate that completed the pipeline.
	// Nil when the run exhausted all candidates.
	Winner *Candidate `json:"winner,omitempty"`

	// Recipe is the final record: the rescaled recipe when a resize was
	// requested, otherwise the normalized one. Nil on failure.
	Recipe *Recipe `json:"recipe,omitempty"`

	// Scaling holds resize traceability metadata when a resize ran.
	Scaling *ScalingInfo `json:"scaling,omitempty"`

	// StagesRun lists the stage names executed for the winning candidate
	// in order. Empty on failure.
	StagesRun []string `json:"stages_run,omitempty"`

	// ArtifactPath is where the rendered recipe was persisted.
	// Empty when persistence failed (the artifact still exists in the
	// report via rendering fallback guarantees).
	ArtifactPath string `json:"artifact_path,omitempty"`

	// Fallback is true when the final artifact came from the
	// deterministic renderer instead of the inference service.
	Fallback bool `json:"fallback,omitempty"`

	// Attempts enumerates every candidate that failed, in attempt order,
	// with the stage that rejected it and the reason.
	Attempts []Attempt `json:"attempts,omitempty"`
}

// Attempt records one failed candidate attempt.
type Attempt struct {
	// Candidate is the candidate that was attempted.
	Candidate Candidate `json:"candidate"`

	// Stage is the name of the stage that failed.
	Stage string `json:"stage"`

	// Reason is the failure description.
	Reason string `json:"reason"`
}

// NewRunReport creates a RunReport for the given request parameters with
// the start timestamp set.
func NewRunReport(objective string, constraints []string) *RunReport {
	return &RunReport{
		Objective:   objective,
		Constraints: constraints,
		StartedAt:   time.Now(),
	}
}

// Exhausted reports whether the run tried candidates (or had none) and
// never reached a full success.
func (r *RunReport) Exhausted() bool {
	return !r.Succeeded
}

// AttemptCount returns the number of failed candidate attempts.
func (r *RunReport) AttemptCount() int {
	return len(r.Attempts)
}
