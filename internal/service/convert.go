package service

import (
	"strconv"
	"time"

	"raceready/internal/config"
	"raceready/internal/engine"
	"raceready/internal/store"
)

// physiology maps configured athlete values onto the engine's view
func physiology(a config.AthleteConfig) engine.UserPhysiology {
	return engine.UserPhysiology{
		RestingHR: a.RestingHR,
		MaxHR:     a.MaxHR,
		Age:       a.Age,
		Gender:    a.Gender,
	}
}

// workoutInput converts a stored workout to the engine's summary form
func workoutInput(w store.Workout) engine.WorkoutSignalInput {
	in := engine.WorkoutSignalInput{
		Date:               w.StartDate,
		DistanceMiles:      w.DistanceMeters / MetersPerMile,
		DurationMinutes:    w.DurationSeconds / SecondsPerMinute,
		AvgPaceSeconds:     engine.PacePerMile(w.DistanceMeters, w.DurationSeconds),
		ElevationGainFt:    w.ElevationGainFt,
		WeatherTempF:       w.WeatherTempF,
		WeatherHumidityPct: w.WeatherHumidityPct,
		WorkoutType:        w.WorkoutType,
	}
	if w.AverageHeartrate != nil {
		in.AvgHR = *w.AverageHeartrate
	}
	if w.MaxHeartrate != nil {
		in.MaxHR = *w.MaxHeartrate
	}
	return in
}

// performanceRecord converts a stored race or best effort
func performanceRecord(p store.Performance) engine.PerformanceRecord {
	r := engine.PerformanceRecord{
		Date:               p.Date,
		DistanceMeters:     p.DistanceMeters,
		TimeSeconds:        p.TimeSeconds,
		Source:             engine.PerformanceSource(p.Source),
		EffortLevel:        p.EffortLevel,
		WeatherTempF:       p.WeatherTempF,
		WeatherHumidityPct: p.WeatherHumidityPct,
		ElevationGainFt:    p.ElevationGainFt,
	}
	if p.WorkoutID != nil {
		r.WorkoutID = strconv.FormatInt(*p.WorkoutID, 10)
	}
	return r
}

// notAfter drops anything dated after asOf so past dates can be replayed
func notAfter[T any](items []T, asOf time.Time, date func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !date(it).After(asOf) {
			out = append(out, it)
		}
	}
	return out
}
