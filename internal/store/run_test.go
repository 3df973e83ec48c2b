package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/videostrip/internal/report"
)

func newRun() *Run {
	return &Run{
		Input:        "clips/reef.mp4",
		OutputPrefix: "out/reef_",
		MinOverlap:   0.4,
		Comparison:   "inclusive",
		Window:       11,
		Extractor:    "cpu",
		Scorer:       "laplacian",
	}
}

func TestRunRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Runs()

	run := newRun()
	require.NoError(t, repo.Create(run))
	assert.NotEmpty(t, run.ID, "Create should assign an ID")
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())

	got, err := repo.GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Input, got.Input)
	assert.Equal(t, run.OutputPrefix, got.OutputPrefix)
	assert.InDelta(t, 0.4, got.MinOverlap, 1e-12)
	assert.Equal(t, 11, got.Window)
	assert.Equal(t, RunStatusRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
}

func TestRunRepository_GetMissing(t *testing.T) {
	_, err := newTestStore(t).Runs().GetByID("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepository_Finish(t *testing.T) {
	s := newTestStore(t)
	repo := s.Runs()

	run := newRun()
	require.NoError(t, repo.Create(run))

	stats := RunStats{FramesRead: 1200, Keyframes: 14, Forced: 2}
	require.NoError(t, repo.Finish(run.ID, RunStatusFailed, stats, errors.New("stream ended inside the lookahead window")))

	got, err := repo.GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, 1200, got.FramesRead)
	assert.Equal(t, 14, got.Keyframes)
	assert.Equal(t, 2, got.Forced)
	assert.Equal(t, "stream ended inside the lookahead window", got.Error)
	require.NotNil(t, got.FinishedAt)

	assert.ErrorIs(t, repo.Finish("nope", RunStatusCompleted, stats, nil), ErrNotFound)
}

func TestRunRepository_RejectsUnknownStatus(t *testing.T) {
	s := newTestStore(t)
	run := newRun()
	require.NoError(t, s.Runs().Create(run))

	assert.Error(t, s.Runs().Finish(run.ID, RunStatus("paused"), RunStats{}, nil))
}

func TestRunRepository_ListAndDelete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Runs()

	a, b := newRun(), newRun()
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	runs, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	require.NoError(t, s.Keyframes().Add(a.ID, report.FrameRecord{ID: 0, Filename: "out/reef_0000.jpg"}))
	require.NoError(t, repo.Delete(a.ID))
	assert.ErrorIs(t, repo.Delete(a.ID), ErrNotFound)

	recs, err := s.Keyframes().ListByRun(a.ID)
	require.NoError(t, err)
	assert.Empty(t, recs, "keyframes should cascade with their run")
}

func TestRecorder(t *testing.T) {
	s := newTestStore(t)
	run := newRun()
	require.NoError(t, s.Runs().Create(run))

	var w report.Writer = NewRecorder(s, run.ID)
	want := []report.FrameRecord{
		{ID: 0, Frame: 0, Filename: "out/reef_0000.jpg"},
		{ID: 1, Frame: 57, Filename: "out/reef_0001.jpg", Overlap: 0.38, Blur: 21.5},
		{ID: 2, Frame: 90, Filename: "out/reef_0002.jpg", Overlap: 0.01, Blur: 18.25, Forced: true},
	}
	for _, rec := range want {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())

	got, err := s.Keyframes().ListByRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecorder_DuplicateIndexRejected(t *testing.T) {
	s := newTestStore(t)
	run := newRun()
	require.NoError(t, s.Runs().Create(run))

	rec := NewRecorder(s, run.ID)
	require.NoError(t, rec.Write(report.FrameRecord{ID: 0, Filename: "a.jpg"}))
	assert.Error(t, rec.Write(report.FrameRecord{ID: 0, Filename: "b.jpg"}))
}

func TestRecorder_UnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := NewRecorder(s, "missing").Write(report.FrameRecord{ID: 0, Filename: "a.jpg"})
	assert.Error(t, err, "foreign key should reject keyframes of unknown runs")
}
