// Package database provides SQLite-based persistence for run history.
//
// Every pipeline run produces a RunReport; this package stores them so
// past runs can be listed and re-inspected from the command line.
//
// Design decision: We use modernc.org/sqlite (pure Go) rather than
// mattn/go-sqlite3 (CGO) because it simplifies cross-compilation and
// deployment without sacrificing functionality for our use case.
package database
