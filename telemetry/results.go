package telemetry

import (
	"fmt"
	"io"
	"os"
)

// ResultsLog appends one line per finished round to a plain text file.
// Lines are never rewritten, so several runs can share a file.
type ResultsLog struct {
	w     io.Writer
	close func() error
}

// OpenResultsLog opens path for appending, creating it if needed.
func OpenResultsLog(path string) (*ResultsLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening results log: %w", err)
	}
	return &ResultsLog{w: f, close: f.Close}, nil
}

// NewResultsLog writes results to w.
func NewResultsLog(w io.Writer) *ResultsLog {
	return &ResultsLog{w: w}
}

// Append records that round lasted duration ticks.
func (r *ResultsLog) Append(round, duration int) error {
	if r == nil {
		return nil
	}
	if _, err := fmt.Fprintf(r.w, "Round: %d, duration: %d\n", round, duration); err != nil {
		return fmt.Errorf("appending result: %w", err)
	}
	return nil
}

// Close closes the underlying file, if one was opened.
func (r *ResultsLog) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}
