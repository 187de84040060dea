// Package fetch retrieves recipe pages and prepares their content for
// inference. Fetched HTML is reduced to readable text: scripts, styles,
// and navigation chrome are stripped, whitespace is collapsed, and the
// result is truncated to a budget that fits comfortably in a model
// context window.
package fetch
