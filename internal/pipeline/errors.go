package pipeline

import "errors"

var (
	// ErrContentIrrelevant is returned when a fetched page carries no
	// recipe signal worth normalizing.
	ErrContentIrrelevant = errors.New("page content does not look like a recipe")

	// ErrEmptyRecipe is returned when extraction produced a record with
	// no ingredients or no instructions.
	ErrEmptyRecipe = errors.New("extracted recipe has no ingredients or instructions")

	// ErrInvalidServings is returned when a target or derived serving
	// count is not a positive number.
	ErrInvalidServings = errors.New("serving count must be positive")

	// ErrScaleMismatch is returned when a rescaled recipe does not line
	// up with the original item for item.
	ErrScaleMismatch = errors.New("scaled recipe does not match the original item for item")
)
