package yolo

import (
	"bufio"
	"fmt"
	"os"
)

// ReadFile reads all well-formed records from a label file. Malformed
// lines are rejected individually; their count is returned so callers
// can surface them without aborting the file.
func ReadFile(path string) (records []Record, rejected int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		r, err := ParseLine(line)
		if err != nil {
			rejected++
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, rejected, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, rejected, nil
}

// Writer appends label lines to a single tile's label file. It is
// opened once per tile and must be closed to flush buffered lines.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// NewWriter opens (or creates) a label file for appending.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one record as a label line.
func (w *Writer) Append(r Record) error {
	_, err := w.w.WriteString(r.String() + "\n")
	return err
}

// Close flushes and closes the underlying file. Safe to call after a
// partial write failure; the first error encountered is returned.
func (w *Writer) Close() error {
	flushErr := w.w.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
