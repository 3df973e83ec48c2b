package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
)

// TSVWriter writes FrameRecords as tab-separated rows under a header line.
// Every row is flushed as soon as it is written.
type TSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	header bool
}

// NewTSVWriter writes to w. Close does not close w.
func NewTSVWriter(w io.Writer) *TSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &TSVWriter{w: cw}
}

// CreateTSV creates (or truncates) the file at path and writes to it.
func CreateTSV(path string) (*TSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create report %s", path)
	}
	t := NewTSVWriter(f)
	t.closer = f
	return t, nil
}

// Write appends rec, emitting the header first if needed.
func (t *TSVWriter) Write(rec FrameRecord) error {
	if !t.header {
		if err := t.w.Write(Columns); err != nil {
			return errors.Wrap(err, "write report header")
		}
		t.header = true
	}

	row := []string{
		strconv.Itoa(rec.ID),
		strconv.Itoa(rec.Frame),
		rec.Filename,
		formatFloat(rec.Overlap),
		formatFloat(rec.Blur),
	}
	if err := t.w.Write(row); err != nil {
		return errors.Wrapf(err, "write report row %d", rec.ID)
	}

	t.w.Flush()
	return t.w.Error()
}

// Close flushes pending output and closes the file opened by CreateTSV.
// A report with no rows still gets its header.
func (t *TSVWriter) Close() error {
	if !t.header {
		if err := t.w.Write(Columns); err != nil {
			return err
		}
		t.header = true
	}
	t.w.Flush()
	err := t.w.Error()
	if t.closer != nil {
		err = errors.CombineErrors(err, t.closer.Close())
		t.closer = nil
	}
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
