package store

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	// RunStatusRunning marks a run that has not finished yet.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a run that consumed its whole stream.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusCanceled marks a run stopped by the user.
	RunStatusCanceled RunStatus = "canceled"
	// RunStatusFailed marks a run aborted by a fatal error.
	RunStatusFailed RunStatus = "failed"
)

// Run is one extraction over one input.
type Run struct {
	ID           string
	Input        string
	OutputPrefix string
	MinOverlap   float64
	OverlapFloor float64
	Comparison   string
	Window       int
	Extractor    string
	Scorer       string
	Status       RunStatus
	FramesRead   int
	Keyframes    int
	Forced       int
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// RunStats are the counters written when a run finishes.
type RunStats struct {
	FramesRead int
	Keyframes  int
	Forced     int
}

// RunRepository provides CRUD operations for runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Create inserts a new running run. An empty ID is replaced by a fresh UUID.
func (r *RunRepository) Create(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Status = RunStatusRunning
	run.StartedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO runs (id, input, output_prefix, min_overlap, overlap_floor, comparison,
			window_size, extractor, scorer, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, run.OutputPrefix, run.MinOverlap, run.OverlapFloor, run.Comparison,
		run.Window, run.Extractor, run.Scorer, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create run %s", run.ID)
	}
	return nil
}

// Finish records the outcome of a run.
func (r *RunRepository) Finish(id string, status RunStatus, stats RunStats, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	res, err := r.db.Exec(
		`UPDATE runs SET status = ?, frames_read = ?, keyframes = ?, forced = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		string(status), stats.FramesRead, stats.Keyframes, stats.Forced, msg, time.Now(), id,
	)
	if err != nil {
		return errors.Wrapf(err, "finish run %s", id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `id, input, output_prefix, min_overlap, overlap_floor, comparison, window_size,
	extractor, scorer, status, frames_read, keyframes, forced, error, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var status string
	var finished sql.NullTime

	err := row.Scan(&run.ID, &run.Input, &run.OutputPrefix, &run.MinOverlap, &run.OverlapFloor,
		&run.Comparison, &run.Window, &run.Extractor, &run.Scorer, &status, &run.FramesRead,
		&run.Keyframes, &run.Forced, &run.Error, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	run, err := scanRun(r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// List retrieves all runs, most recent first.
func (r *RunRepository) List() ([]*Run, error) {
	rows, err := r.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Delete removes a run and, through the foreign key, its keyframes.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
