// Package main provides the entry point for the souschef CLI.
//
// Souschef finds a recipe on the web for a free-text objective, extracts
// it into a structured record, optionally rescales it to a serving count,
// and renders it as a markdown document.
//
// Usage:
//
//	souschef cook "vegetarian pad thai"
//	souschef cook --servings 6 "lentil soup"
//
// See --help for all available options.
package main

// main is the entry point for souschef.
func main() {
	Execute()
}
