package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per extraction
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			output_prefix TEXT NOT NULL,
			min_overlap REAL NOT NULL,
			overlap_floor REAL NOT NULL DEFAULT 0,
			comparison TEXT NOT NULL CHECK(comparison IN ('inclusive', 'exclusive')),
			window_size INTEGER NOT NULL,
			extractor TEXT NOT NULL,
			scorer TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'running'
				CHECK(status IN ('running', 'completed', 'canceled', 'failed')),
			frames_read INTEGER NOT NULL DEFAULT 0,
			keyframes INTEGER NOT NULL DEFAULT 0,
			forced INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,

		// Keyframes table - one row per committed keyframe
		`CREATE TABLE IF NOT EXISTS keyframes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			output_index INTEGER NOT NULL,
			frame_index INTEGER NOT NULL,
			filename TEXT NOT NULL,
			overlap REAL NOT NULL,
			blur REAL NOT NULL,
			forced INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, output_index)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_keyframes_run_id ON keyframes(run_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
