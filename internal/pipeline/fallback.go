package pipeline

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"souschef/internal/model"
)

// FallbackMarkdown renders a recipe deterministically, without inference.
// It is the Render stage's guarantee: once a recipe record exists, a
// readable document always comes out, even with the model unreachable.
//
// Design decision: We use the nao1215/markdown library here as well as in
// the report writers, so the fallback document and the styled one share
// the same markdown dialect.
func FallbackMarkdown(recipe *model.Recipe, scaling *model.ScalingInfo) string {
	md := markdown.NewMarkdown(io.Discard)

	md.H1(recipe.Title)
	md.PlainText("")

	if recipe.Description != "" {
		md.PlainText(recipe.Description)
		md.PlainText("")
	}

	writeFactsTable(md, recipe, scaling)

	md.H2("Ingredients")
	md.PlainText("")
	items := make([]string, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		items[i] = ing.Text
	}
	md.BulletList(items...)
	md.PlainText("")

	md.H2("Instructions")
	md.PlainText("")
	steps := make([]string, len(recipe.Steps))
	for i, step := range recipe.Steps {
		steps[i] = step.Text
	}
	md.OrderedList(steps...)
	md.PlainText("")

	if recipe.URL != "" {
		md.HorizontalRule()
		md.PlainText("")
		source := recipe.Source
		if source == "" {
			source = recipe.URL
		}
		md.PlainTextf("*Source: [%s](%s)*", source, recipe.URL)
	}

	return md.String()
}

// writeFactsTable writes the yield and timing table, skipping rows the
// recipe does not state.
func writeFactsTable(md *markdown.Markdown, recipe *model.Recipe, scaling *model.ScalingInfo) {
	var rows [][]string

	if recipe.Servings > 0 {
		servings := strconv.Itoa(recipe.Servings)
		if scaling != nil && scaling.Factor != 1 {
			servings += " (rescaled from " + strconv.Itoa(scaling.OriginalServings) + ")"
		}
		rows = append(rows, []string{"Servings", servings})
	}
	if recipe.PrepTime != "" {
		rows = append(rows, []string{"Prep time", recipe.PrepTime})
	}
	if recipe.CookTime != "" {
		rows = append(rows, []string{"Cook time", recipe.CookTime})
	}
	if recipe.TotalTime != "" {
		rows = append(rows, []string{"Total time", recipe.TotalTime})
	}
	if recipe.Difficulty != "" {
		rows = append(rows, []string{"Difficulty", recipe.Difficulty})
	}

	if len(rows) == 0 {
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"", ""},
		Rows:   rows,
	})
	md.PlainText("")
}
