package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per analyzed sequence
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			target_region TEXT NOT NULL CHECK(target_region IN ('UPPER', 'LOWER', 'FULL')),
			contraction_mode TEXT NOT NULL CHECK(contraction_mode IN ('ISOTONIC', 'ISOMETRIC', 'ISOKINETIC')),
			frames INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Frame results table - the scored output of each frame
		`CREATE TABLE IF NOT EXISTS frame_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_index INTEGER NOT NULL,
			dt REAL NOT NULL,
			pattern TEXT NOT NULL,
			movement_state TEXT NOT NULL DEFAULT '',
			warning TEXT NOT NULL DEFAULT '',
			muscle_usage TEXT NOT NULL DEFAULT '{}',
			rom_data TEXT NOT NULL DEFAULT '{}',
			joint_stress TEXT NOT NULL DEFAULT '{}',
			UNIQUE(session_id, frame_index)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_frame_results_session_id ON frame_results(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
