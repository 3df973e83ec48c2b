package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	recs   []FrameRecord
	closed bool
	err    error
}

func (m *memWriter) Write(rec FrameRecord) error {
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memWriter) Close() error {
	m.closed = true
	return nil
}

func TestTSVWriter_Rows(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf)

	recs := []FrameRecord{
		{ID: 0, Frame: 0, Filename: "out/kf0000.jpg"},
		{ID: 1, Frame: 8, Filename: "out/kf0001.jpg", Overlap: 0.35, Blur: 30.125},
		{ID: 2, Frame: 19, Filename: "out/kf0002.jpg", Overlap: 0.01, Blur: 12, Forced: true},
	}
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())

	want := strings.Join([]string{
		"ID\tFrame\tFilename\tOverlap\tBlur",
		"0\t0\tout/kf0000.jpg\t0.000000\t0.000000",
		"1\t8\tout/kf0001.jpg\t0.350000\t30.125000",
		"2\t19\tout/kf0002.jpg\t0.010000\t12.000000",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestTSVWriter_FlushesEveryRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf)

	require.NoError(t, w.Write(FrameRecord{ID: 0, Filename: "a.jpg"}))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestTSVWriter_EmptyReportHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTSVWriter(&buf).Close())
	assert.Equal(t, "ID\tFrame\tFilename\tOverlap\tBlur\n", buf.String())
}

func TestCreateTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tsv")

	w, err := CreateTSV(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(FrameRecord{ID: 0, Filename: "kf0000.jpg"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}

func TestCreateTSV_BadPath(t *testing.T) {
	_, err := CreateTSV(filepath.Join(t.TempDir(), "missing", "report.tsv"))
	assert.Error(t, err)
}

func TestMulti(t *testing.T) {
	a, b := &memWriter{}, &memWriter{}
	w := Multi(a, nil, b)

	require.NoError(t, w.Write(FrameRecord{ID: 0}))
	require.NoError(t, w.Write(FrameRecord{ID: 1}))
	require.NoError(t, w.Close())

	assert.Len(t, a.recs, 2)
	assert.Len(t, b.recs, 2)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestMulti_StopsOnError(t *testing.T) {
	boom := errors.New("disk full")
	a, b := &memWriter{err: boom}, &memWriter{}

	err := Multi(a, b).Write(FrameRecord{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, b.recs)
}

func TestMulti_Degenerate(t *testing.T) {
	assert.Equal(t, Discard, Multi())
	assert.Equal(t, Discard, Multi(nil))

	a := &memWriter{}
	assert.Same(t, a, Multi(a))
}
