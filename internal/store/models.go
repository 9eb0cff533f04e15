package store

import "time"

// Performance kinds
const (
	KindRace       = "race"
	KindBestEffort = "best_effort"
)

// Workout is a single recorded run
type Workout struct {
	ID                 int64     `db:"id"`
	ExternalID         string    `db:"external_id"` // stable import key, e.g. FIT file hash
	Name               string    `db:"name"`
	WorkoutType        string    `db:"workout_type"`
	StartDate          time.Time `db:"start_date"`
	DistanceMeters     float64   `db:"distance_meters"`
	DurationSeconds    float64   `db:"duration_seconds"`
	AverageHeartrate   *float64  `db:"average_heartrate"` // nullable
	MaxHeartrate       *float64  `db:"max_heartrate"`     // nullable
	ElevationGainFt    float64   `db:"elevation_gain_ft"`
	WeatherTempF       *float64  `db:"weather_temp_f"`
	WeatherHumidityPct *float64  `db:"weather_humidity_pct"`
	EfficiencyFactor   *float64  `db:"efficiency_factor"`
}

// Performance is a race result or a best effort within a workout
type Performance struct {
	ID                 int64     `db:"id"`
	WorkoutID          *int64    `db:"workout_id"` // nullable for manually entered races
	Kind               string    `db:"kind"`       // race | best_effort
	Source             string    `db:"source"`     // race | time_trial | workout_segment
	Date               time.Time `db:"date"`
	DistanceMeters     float64   `db:"distance_meters"`
	TimeSeconds        float64   `db:"time_seconds"`
	EffortLevel        string    `db:"effort_level"`
	WeatherTempF       *float64  `db:"weather_temp_f"`
	WeatherHumidityPct *float64  `db:"weather_humidity_pct"`
	ElevationGainFt    *float64  `db:"elevation_gain_ft"`
}

// PredictionSnapshot is a persisted engine result
type PredictionSnapshot struct {
	ID         string    `db:"id"`
	AsOf       time.Time `db:"as_of"`
	ComputedAt time.Time `db:"computed_at"`
	VDOT       float64   `db:"vdot"`
	Confidence string    `db:"confidence"`
	Result     []byte    `db:"result"` // JSON-encoded engine result
}
