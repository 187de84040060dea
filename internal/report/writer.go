package report

import (
	"io"

	"souschef/internal/model"
)

// Writer renders a run report to some destination. Write returns the
// number of bytes written so callers can account for partial fan-out
// through MultiWriter.
type Writer interface {
	Write(report *model.RunReport) (int, error)
}

// MultiWriter fans a report out to several Writers, typically a terminal
// writer plus a file writer. It is not io.MultiWriter because the unit
// written here is a report, not a byte slice.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through each writer in order, stopping at the
// first failure. The returned count is the total across the writers that
// ran.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by the concrete writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
