package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/ayusman/videostrip/internal/report"
)

// KeyframeRepository stores the FrameRecords of each run.
type KeyframeRepository struct {
	db *sql.DB
}

// Keyframes returns the keyframe repository for this store.
func (s *Store) Keyframes() *KeyframeRepository {
	return &KeyframeRepository{db: s.db}
}

// Add appends a record to a run.
func (r *KeyframeRepository) Add(runID string, rec report.FrameRecord) error {
	_, err := r.db.Exec(
		`INSERT INTO keyframes (run_id, output_index, frame_index, filename, overlap, blur, forced)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.ID, rec.Frame, rec.Filename, rec.Overlap, rec.Blur, rec.Forced,
	)
	if err != nil {
		return errors.Wrapf(err, "add keyframe %d to run %s", rec.ID, runID)
	}
	return nil
}

// ListByRun returns the records of a run in commit order.
func (r *KeyframeRepository) ListByRun(runID string) ([]report.FrameRecord, error) {
	rows, err := r.db.Query(
		`SELECT output_index, frame_index, filename, overlap, blur, forced
		 FROM keyframes
		 WHERE run_id = ?
		 ORDER BY output_index`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []report.FrameRecord
	for rows.Next() {
		var rec report.FrameRecord
		if err := rows.Scan(&rec.ID, &rec.Frame, &rec.Filename, &rec.Overlap, &rec.Blur, &rec.Forced); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// Recorder is a report.Writer that appends records to one run.
type Recorder struct {
	repo  *KeyframeRepository
	runID string
}

// NewRecorder creates a Recorder for runID.
func NewRecorder(s *Store, runID string) *Recorder {
	return &Recorder{repo: s.Keyframes(), runID: runID}
}

// Write stores rec under the recorder's run.
func (r *Recorder) Write(rec report.FrameRecord) error {
	return r.repo.Add(r.runID, rec)
}

// Close is a no-op; the Store is closed by its owner.
func (r *Recorder) Close() error {
	return nil
}
