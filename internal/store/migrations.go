package store

import (
	"database/sql"
	"fmt"
)

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Workouts (one row per imported run)
		`CREATE TABLE IF NOT EXISTS workouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			workout_type TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			distance_meters REAL NOT NULL,
			duration_seconds REAL NOT NULL,
			average_heartrate REAL,
			max_heartrate REAL,
			elevation_gain_ft REAL NOT NULL DEFAULT 0,
			weather_temp_f REAL,
			weather_humidity_pct REAL,
			efficiency_factor REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_start_date ON workouts(start_date)`,

		// Performances (races and best efforts)
		`CREATE TABLE IF NOT EXISTS performances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workout_id INTEGER,
			kind TEXT NOT NULL CHECK (kind IN ('race', 'best_effort')),
			source TEXT NOT NULL,
			date TEXT NOT NULL,
			distance_meters REAL NOT NULL CHECK (distance_meters > 0),
			time_seconds REAL NOT NULL CHECK (time_seconds > 0),
			effort_level TEXT NOT NULL DEFAULT '',
			weather_temp_f REAL,
			weather_humidity_pct REAL,
			elevation_gain_ft REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_performances_kind_date ON performances(kind, date)`,
		`CREATE INDEX IF NOT EXISTS idx_performances_workout ON performances(workout_id)`,

		// Prediction snapshots (engine results over time)
		`CREATE TABLE IF NOT EXISTS prediction_snapshots (
			id TEXT PRIMARY KEY,
			as_of TEXT NOT NULL,
			computed_at TEXT NOT NULL,
			vdot REAL NOT NULL,
			confidence TEXT NOT NULL,
			result TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_snapshots_computed_at ON prediction_snapshots(computed_at)`,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
