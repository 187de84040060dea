// Package report renders run reports for human and machine consumers.
//
// Three writers cover the output formats: SimpleWriter for terminal
// text, MarkdownWriter for shareable documents, and JSONWriter for tool
// integration. All implement the Writer interface, and MultiWriter
// composes them when a run should go to both the terminal and a file.
//
// The report data itself lives in the model package; this package only
// decides how it looks on the way out.
package report
