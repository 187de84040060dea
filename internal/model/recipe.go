package model

// Recipe is the structured record extracted from a recipe page.
// Ingredients and Steps are order-significant; a Recipe with either list
// empty is not a valid extraction result and must be rejected by the
// Normalize stage.
type Recipe struct {
	// Title is the recipe name.
	Title string `json:"title"`

	// Description is a short summary of the dish, if available.
	Description string `json:"description,omitempty"`

	// URL is the page the recipe was extracted from.
	URL string `json:"url,omitempty"`

	// Source is the friendly site name (see SourceName).
	Source string `json:"source,omitempty"`

	// Ingredients lists the recipe components in presentation order.
	Ingredients []Ingredient `json:"ingredients"`

	// Steps lists the preparation instructions in execution order.
	Steps []Step `json:"instructions"`

	// Servings is the yield the recipe is written for.
	// Zero means the page did not state a yield.
	Servings int `json:"servings,omitempty"`

	// PrepTime, CookTime, and TotalTime are free-text duration estimates
	// as stated on the page (e.g. "20 minutes").
	PrepTime  string `json:"prep_time,omitempty"`
	CookTime  string `json:"cook_time,omitempty"`
	TotalTime string `json:"total_time,omitempty"`

	// DietTags lists dietary attributes (e.g. "vegan", "gluten-free").
	DietTags []string `json:"dietary_tags,omitempty"`

	// Difficulty is a free-text difficulty rating, if stated.
	Difficulty string `json:"difficulty,omitempty"`
}

// Ingredient is one recipe component.
type Ingredient struct {
	// Text is the full ingredient line as a human would read it
	// (e.g. "2 cups all-purpose flour").
	Text string `json:"ingredient"`

	// Amount is the numeric quantity parsed from the line.
	// Zero means the line carries no meaningful quantity
	// (e.g. "salt to taste").
	Amount float64 `json:"amount,omitempty"`

	// Unit is the measurement unit for Amount (e.g. "cups", "g").
	Unit string `json:"unit,omitempty"`
}

// Step is one preparation instruction.
type Step struct {
	// Number is the 1-based position of the step.
	Number int `json:"step"`

	// Text is the instruction prose.
	Text string `json:"instruction"`
}

// IsComplete reports whether the recipe has at least one ingredient and
// one step. The Normalize stage converts incomplete extractions into
// failures rather than passing them downstream.
func (r *Recipe) IsComplete() bool {
	return r != nil && len(r.Ingredients) > 0 && len(r.Steps) > 0
}

// ScalingInfo records how a recipe was rescaled, for traceability in the
// run report.
type ScalingInfo struct {
	// OriginalServings is the yield the source recipe was written for.
	// When the page omitted a yield, this holds the documented fallback
	// of 1.
	OriginalServings int `json:"original_servings"`

	// TargetServings is the yield the user asked for.
	TargetServings int `json:"target_servings"`

	// Factor is TargetServings / OriginalServings.
	Factor float64 `json:"factor"`

	// Method describes how scaling was performed: "inference" when the
	// language model rewrote quantities, "passthrough" for factor 1.
	// A "+derived" suffix means the target was resolved from the
	// objective text rather than given explicitly.
	Method string `json:"method"`
}
