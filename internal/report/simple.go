package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"souschef/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the full failure log in the output.
	verbose bool

	// titler capitalizes recipe and section titles consistently
	// regardless of how the source page cased them.
	titler cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the full failure log.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
		titler:     cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	if report.Succeeded {
		w.writeRecipe(&sb, report)
	} else {
		w.writeExhaustion(&sb, report)
	}

	if w.verbose || !report.Succeeded {
		w.writeAttempts(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          SOUSCHEF RUN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Objective:   %s\n", report.Objective))
	if len(report.Constraints) > 0 {
		sb.WriteString(fmt.Sprintf("Constraints: %s\n", strings.Join(report.Constraints, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Started:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", report.Duration.Round(time.Millisecond)))

	if report.Succeeded {
		sb.WriteString("Status:      Success\n")
	} else {
		sb.WriteString("Status:      EXHAUSTED (no candidate survived the pipeline)\n")
	}

	sb.WriteString("\n")
}

// writeRecipe writes the winning recipe summary section.
func (w *SimpleWriter) writeRecipe(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RECIPE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	recipe := report.Recipe
	sb.WriteString(fmt.Sprintf("  Title:       %s\n", w.titler.String(recipe.Title)))
	if report.Winner != nil {
		sb.WriteString(fmt.Sprintf("  Source:      %s\n", report.Winner.URL))
	}
	sb.WriteString(fmt.Sprintf("  Ingredients: %d\n", len(recipe.Ingredients)))
	sb.WriteString(fmt.Sprintf("  Steps:       %d\n", len(recipe.Steps)))
	if recipe.Servings > 0 {
		sb.WriteString(fmt.Sprintf("  Servings:    %d\n", recipe.Servings))
	}

	if report.Scaling != nil && report.Scaling.Factor != 1 {
		sb.WriteString(fmt.Sprintf("  Rescaled:    %d -> %d servings (factor %.2f)\n",
			report.Scaling.OriginalServings,
			report.Scaling.TargetServings,
			report.Scaling.Factor,
		))
	}

	if report.ArtifactPath != "" {
		sb.WriteString(fmt.Sprintf("  Saved to:    %s\n", report.ArtifactPath))
	} else {
		sb.WriteString("  Saved to:    (not persisted)\n")
	}
	if report.Fallback {
		sb.WriteString("  Rendering:   deterministic fallback\n")
	}

	sb.WriteString("\n")
}

// writeExhaustion writes the failure summary with a hint for the user.
func (w *SimpleWriter) writeExhaustion(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("NO RECIPE FOUND\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.AttemptCount() == 0 {
		sb.WriteString("  The search returned no usable candidates.\n")
	} else {
		sb.WriteString(fmt.Sprintf("  All %d candidates failed.\n", report.AttemptCount()))
	}
	sb.WriteString("  Try rephrasing the objective or relaxing the constraints.\n\n")
}

// writeAttempts writes the failure log section.
func (w *SimpleWriter) writeAttempts(sb *strings.Builder, report *model.RunReport) {
	if report.AttemptCount() == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED ATTEMPTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i, attempt := range report.Attempts {
		sb.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, attempt.Stage, attempt.Candidate.URL))
		sb.WriteString(fmt.Sprintf("     %s\n", attempt.Reason))
	}
	sb.WriteString("\n")
}
