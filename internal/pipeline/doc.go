// Package pipeline contains the orchestration core of souschef.
//
// A run walks an ordered list of search candidates depth-first: each
// candidate gets a fresh State and the full stage sequence (Discover,
// Normalize, optionally Resize, Render). The first candidate to survive
// every stage wins and no later candidate is attempted. A stage failure
// abandons only that candidate: its State is discarded, the failure is
// recorded with the candidate and stage name, and the orchestrator moves
// on. When every candidate has failed (or the provider returned none),
// the run report enumerates all recorded failures.
//
// Depth-first per candidate, rather than breadth-first per stage, bounds
// inference calls to the minimum needed to find one working candidate
// and keeps failure attribution local to a single attempt.
package pipeline
