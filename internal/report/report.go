// Package report records one row per committed keyframe.
package report

import "github.com/cockroachdb/errors"

// Columns is the header of the tab-separated report.
var Columns = []string{"ID", "Frame", "Filename", "Overlap", "Blur"}

// FrameRecord describes a committed keyframe. Records are created on
// commit and never mutated.
type FrameRecord struct {
	// ID is the output index, starting at 0.
	ID int
	// Frame is the read index of the committed frame in the stream.
	Frame int
	// Filename is the identifier returned by the frame sink.
	Filename string
	// Overlap is the value that triggered the commit (0 for the first keyframe).
	Overlap float64
	// Blur is the sharpness of the committed frame (0 for the first keyframe).
	Blur float64
	// Forced is set when Overlap was substituted for a failed estimate.
	Forced bool
}

// Writer persists FrameRecords in commit order.
type Writer interface {
	Write(rec FrameRecord) error
	Close() error
}

type discard struct{}

func (discard) Write(FrameRecord) error { return nil }
func (discard) Close() error            { return nil }

// Discard is a Writer that drops every record.
var Discard Writer = discard{}

type multiWriter struct {
	writers []Writer
}

// Multi fans records out to every writer in order. Nil writers are skipped.
func Multi(writers ...Writer) Writer {
	var ws []Writer
	for _, w := range writers {
		if w != nil {
			ws = append(ws, w)
		}
	}
	switch len(ws) {
	case 0:
		return Discard
	case 1:
		return ws[0]
	}
	return &multiWriter{writers: ws}
}

func (m *multiWriter) Write(rec FrameRecord) error {
	for _, w := range m.writers {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer and returns the combined errors.
func (m *multiWriter) Close() error {
	var errs error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}
