package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"souschef/internal/model"
)

// System prompts for the inference-backed stages. Each stage pins the
// model to a single narrow job and a strict output contract, which keeps
// small local models on-task.
const (
	normalizeSystemPrompt = "You are a precise recipe extraction assistant. " +
		"You read raw web page text and return structured recipe data as JSON. " +
		"You reply with JSON only, no prose and no markdown fences."

	deriveSystemPrompt = "You read a cooking request and determine how many " +
		"servings the person is asking for. You reply with JSON only."

	scaleSystemPrompt = "You are a recipe scaling assistant. You rewrite " +
		"ingredient quantities for a new serving count without changing the " +
		"cooking method. You reply with JSON only, no prose and no markdown fences."

	renderSystemPrompt = "You are a recipe formatting assistant. You turn " +
		"structured recipe data into a clean markdown document. You reply with " +
		"the markdown document only."
)

// NormalizePrompt builds the extraction prompt for a candidate page.
func NormalizePrompt(candidate model.Candidate, content string) string {
	var b strings.Builder

	b.WriteString("Extract the recipe from the following web page text.\n\n")
	fmt.Fprintf(&b, "Page title: %s\nPage URL: %s\n\n", candidate.Title, candidate.URL)
	b.WriteString("Page text:\n---\n")
	b.WriteString(content)
	b.WriteString("\n---\n\n")
	b.WriteString(`Respond with a single JSON object in exactly this shape:
{
  "success": true,
  "error": null,
  "recipe": {
    "title": "...",
    "description": "...",
    "ingredients": [{"ingredient": "2 cups flour", "amount": 2, "unit": "cups"}],
    "instructions": [{"step": 1, "instruction": "..."}],
    "servings": 4,
    "prep_time": "20 minutes",
    "cook_time": "30 minutes",
    "total_time": "50 minutes",
    "dietary_tags": ["vegetarian"],
    "difficulty": "easy"
  }
}

Rules:
- "ingredient" is the full human-readable line; "amount" and "unit" are the parsed quantity, omitted when the line has no meaningful quantity.
- Number the instructions from 1 in cooking order.
- Omit servings, times, tags, and difficulty when the page does not state them.
- If the page does not actually contain a recipe, respond with {"success": false, "error": "<short reason>", "recipe": null}.`)

	return b.String()
}

// DerivePrompt asks the model to resolve a serving count from the
// objective text.
func DerivePrompt(objective string) string {
	return fmt.Sprintf(`How many servings is this cooking request asking for?

Request: %q

Respond with a single JSON object: {"servings": <number>}.
Use the number stated or clearly implied by the request. If the request
does not indicate a serving count at all, respond with {"servings": 0}.`, objective)
}

// ScalePrompt asks the model to rescale ingredient quantities.
func ScalePrompt(recipe *model.Recipe, original, target int, factor float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scale this recipe from %d to %d servings (multiply every quantity by %.4g).\n\n", original, target, factor)
	b.WriteString("Recipe JSON:\n")
	b.WriteString(recipeJSON(recipe))
	b.WriteString("\n\nRespond with the complete recipe JSON object in the same shape, with:\n")
	b.WriteString("- every ingredient quantity multiplied by the factor, with the \"ingredient\" text rewritten to match;\n")
	b.WriteString("- sensible kitchen-friendly rounding (e.g. 1.33 cups, not 1.3333333 cups);\n")
	b.WriteString("- the same number of ingredients and the same instructions, unchanged;\n")
	fmt.Fprintf(&b, "- \"servings\" set to %d.", target)

	return b.String()
}

// RenderPrompt asks the model for a styled markdown rendition of the
// final recipe. Style is one of cookbook, simple, or detailed.
func RenderPrompt(recipe *model.Recipe, scaling *model.ScalingInfo, style string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Format this recipe as a markdown document in the %q style.\n\n", style)

	switch style {
	case "simple":
		b.WriteString("Simple style: title, ingredient list, numbered steps. Nothing else.\n\n")
	case "detailed":
		b.WriteString("Detailed style: title, description, yield and timing table, ingredient list with quantities, numbered steps, and a notes section with tips.\n\n")
	default:
		b.WriteString("Cookbook style: title, short description, yield and timing, ingredient list, numbered steps, written warmly like a printed cookbook page.\n\n")
	}

	b.WriteString("Recipe JSON:\n")
	b.WriteString(recipeJSON(recipe))

	if scaling != nil && scaling.Factor != 1 {
		fmt.Fprintf(&b, "\n\nThis recipe was rescaled from %d to %d servings. Mention the adjusted yield.",
			scaling.OriginalServings, scaling.TargetServings)
	}

	b.WriteString("\n\nRespond with the markdown document only, starting with a level-1 heading.")

	return b.String()
}

// recipeJSON renders a recipe as indented JSON for prompt embedding.
func recipeJSON(recipe *model.Recipe) string {
	data, err := json.MarshalIndent(recipe, "", "  ")
	if err != nil {
		// A Recipe contains only marshalable types; this cannot happen.
		return "{}"
	}
	return string(data)
}
