// Package search discovers candidate recipe pages for an objective.
//
// The Provider interface is the pipeline's only view of web search; the
// shipped implementation scrapes the DuckDuckGo HTML endpoint, filters
// out blocked domains and recipe-roundup pages, and ranks single-recipe
// pages from known cooking sites first.
package search
