package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"souschef/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)

	if report.Succeeded {
		w.writeRecipe(md, report)
	} else {
		w.writeExhaustion(md, report)
	}

	w.writeAttempts(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Souschef Run Report")
	md.PlainText("")

	status := "✅ Success"
	if !report.Succeeded {
		status = "❌ Exhausted"
	}

	rows := [][]string{
		{"Objective", report.Objective},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration.String()},
		{"Status", status},
	}
	if len(report.Constraints) > 0 {
		rows = append(rows, []string{"Constraints", strings.Join(report.Constraints, ", ")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecipe writes the winning recipe section.
func (w *MarkdownWriter) writeRecipe(md *markdown.Markdown, report *model.RunReport) {
	recipe := report.Recipe

	md.H2("Recipe")
	md.PlainText("")

	rows := [][]string{
		{"Title", recipe.Title},
		{"Ingredients", strconv.Itoa(len(recipe.Ingredients))},
		{"Steps", strconv.Itoa(len(recipe.Steps))},
	}
	if report.Winner != nil {
		source := report.Winner.Source
		if source == "" {
			source = report.Winner.URL
		}
		rows = append(rows, []string{"Source", "[" + source + "](" + report.Winner.URL + ")"})
	}
	if recipe.Servings > 0 {
		rows = append(rows, []string{"Servings", strconv.Itoa(recipe.Servings)})
	}
	if report.ArtifactPath != "" {
		rows = append(rows, []string{"Saved to", "`" + report.ArtifactPath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Scaling != nil && report.Scaling.Factor != 1 {
		md.Notef("Rescaled from %d to %d servings (factor %.2f, %s).",
			report.Scaling.OriginalServings,
			report.Scaling.TargetServings,
			report.Scaling.Factor,
			report.Scaling.Method,
		)
		md.PlainText("")
	}

	if report.Fallback {
		md.Important("The saved document was produced by the deterministic fallback renderer because the inference service did not return usable markdown.")
		md.PlainText("")
	}
}

// writeExhaustion writes the failure section with a user-facing hint.
func (w *MarkdownWriter) writeExhaustion(md *markdown.Markdown, report *model.RunReport) {
	md.H2("No Recipe Found")
	md.PlainText("")

	if report.AttemptCount() == 0 {
		md.Warning("The search returned no usable candidates for this objective.")
	} else {
		md.Warningf("All %d candidates failed the pipeline.", report.AttemptCount())
	}
	md.PlainText("")
	md.PlainText("Try rephrasing the objective or relaxing the constraints.")
	md.PlainText("")
}

// writeAttempts writes the failure log table.
func (w *MarkdownWriter) writeAttempts(md *markdown.Markdown, report *model.RunReport) {
	if report.AttemptCount() == 0 {
		return
	}

	md.H2("Failed Attempts")
	md.PlainText("")

	rows := make([][]string, len(report.Attempts))
	for i, attempt := range report.Attempts {
		rows[i] = []string{
			attempt.Candidate.URL,
			attempt.Stage,
			truncateString(attempt.Reason, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Candidate", "Stage", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
