package store

import (
	"context"
	"fmt"
	"time"
)

// InsertPerformance stores a race or best effort and returns its row ID
func (db *DB) InsertPerformance(ctx context.Context, p *Performance) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO performances (
			workout_id, kind, source, date, distance_meters, time_seconds,
			effort_level, weather_temp_f, weather_humidity_pct, elevation_gain_ft
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.WorkoutID, p.Kind, p.Source, p.Date.UTC().Format(time.RFC3339),
		p.DistanceMeters, p.TimeSeconds, p.EffortLevel,
		p.WeatherTempF, p.WeatherHumidityPct, p.ElevationGainFt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting %s performance: %w", p.Kind, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading performance id: %w", err)
	}
	p.ID = id
	return id, nil
}

// ReplaceWorkoutPerformances swaps all performances attached to a workout in
// one transaction, so re-importing a file does not duplicate them
func (db *DB) ReplaceWorkoutPerformances(ctx context.Context, workoutID int64, perfs []Performance) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM performances WHERE workout_id = ?`, workoutID); err != nil {
		return fmt.Errorf("clearing performances for workout %d: %w", workoutID, err)
	}

	for _, p := range perfs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO performances (
				workout_id, kind, source, date, distance_meters, time_seconds,
				effort_level, weather_temp_f, weather_humidity_pct, elevation_gain_ft
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			workoutID, p.Kind, p.Source, p.Date.UTC().Format(time.RFC3339),
			p.DistanceMeters, p.TimeSeconds, p.EffortLevel,
			p.WeatherTempF, p.WeatherHumidityPct, p.ElevationGainFt,
		)
		if err != nil {
			return fmt.Errorf("inserting %s performance: %w", p.Kind, err)
		}
	}

	return tx.Commit()
}

// ListPerformances returns performances of one kind dated on or after since,
// oldest first
func (db *DB) ListPerformances(ctx context.Context, kind string, since time.Time) ([]Performance, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, workout_id, kind, source, date, distance_meters, time_seconds,
			effort_level, weather_temp_f, weather_humidity_pct, elevation_gain_ft
		FROM performances
		WHERE kind = ? AND date >= ?
		ORDER BY date, id
	`, kind, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing %s performances: %w", kind, err)
	}
	defer rows.Close()

	var perfs []Performance
	for rows.Next() {
		var p Performance
		var date string
		err := rows.Scan(
			&p.ID, &p.WorkoutID, &p.Kind, &p.Source, &date, &p.DistanceMeters, &p.TimeSeconds,
			&p.EffortLevel, &p.WeatherTempF, &p.WeatherHumidityPct, &p.ElevationGainFt,
		)
		if err != nil {
			return nil, err
		}

		p.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", date, err)
		}
		perfs = append(perfs, p)
	}
	return perfs, rows.Err()
}
