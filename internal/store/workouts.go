package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const workoutColumns = `id, external_id, name, workout_type, start_date, distance_meters,
	duration_seconds, average_heartrate, max_heartrate, elevation_gain_ft,
	weather_temp_f, weather_humidity_pct, efficiency_factor`

// UpsertWorkout inserts a workout or updates the one with the same external
// ID, and returns its row ID
func (db *DB) UpsertWorkout(ctx context.Context, w *Workout) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO workouts (
			external_id, name, workout_type, start_date, distance_meters,
			duration_seconds, average_heartrate, max_heartrate, elevation_gain_ft,
			weather_temp_f, weather_humidity_pct, efficiency_factor
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			name = excluded.name,
			workout_type = excluded.workout_type,
			start_date = excluded.start_date,
			distance_meters = excluded.distance_meters,
			duration_seconds = excluded.duration_seconds,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			elevation_gain_ft = excluded.elevation_gain_ft,
			weather_temp_f = excluded.weather_temp_f,
			weather_humidity_pct = excluded.weather_humidity_pct,
			efficiency_factor = excluded.efficiency_factor
		RETURNING id
	`,
		w.ExternalID, w.Name, w.WorkoutType, w.StartDate.UTC().Format(time.RFC3339),
		w.DistanceMeters, w.DurationSeconds, w.AverageHeartrate, w.MaxHeartrate,
		w.ElevationGainFt, w.WeatherTempF, w.WeatherHumidityPct, w.EfficiencyFactor,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting workout %s: %w", w.ExternalID, err)
	}

	w.ID = id
	return id, nil
}

// GetWorkout retrieves a workout by ID
func (db *DB) GetWorkout(ctx context.Context, id int64) (*Workout, error) {
	row := db.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)

	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkouts returns workouts that started on or after since, oldest first.
// A zero since returns everything.
func (db *DB) ListWorkouts(ctx context.Context, since time.Time) ([]Workout, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE start_date >= ?
		ORDER BY start_date, id
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// DeleteWorkout removes a workout and, through the foreign key, its best efforts
func (db *DB) DeleteWorkout(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*Workout, error) {
	var w Workout
	var startDate string

	err := row.Scan(
		&w.ID, &w.ExternalID, &w.Name, &w.WorkoutType, &startDate, &w.DistanceMeters,
		&w.DurationSeconds, &w.AverageHeartrate, &w.MaxHeartrate, &w.ElevationGainFt,
		&w.WeatherTempF, &w.WeatherHumidityPct, &w.EfficiencyFactor,
	)
	if err != nil {
		return nil, err
	}

	w.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	return &w, nil
}
