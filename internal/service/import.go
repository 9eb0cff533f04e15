package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"raceready/internal/analysis"
	"raceready/internal/engine"
	"raceready/internal/fitimport"
	"raceready/internal/logger"
	"raceready/internal/metrics"
	"raceready/internal/store"
)

// ErrInvalidRace is returned for a manual race entry that cannot be stored
var ErrInvalidRace = errors.New("invalid race entry")

// ImportOptions describe how an imported activity should be classified
type ImportOptions struct {
	Name        string
	WorkoutType string // easy, tempo, long, ... (empty means "easy")
	Race        bool   // the whole activity was a race
	TimeTrial   bool   // the whole activity was a solo time trial
	EffortLevel string // all_out, hard, ...
}

// ImportResult summarizes one imported file
type ImportResult struct {
	WorkoutID    int64
	ExternalID   string
	StartTime    time.Time
	Miles        float64
	BestEfforts  int
	RaceRecorded bool
	RaceDistance string
	WorkoutType  string
}

// ImportService stores FIT activities and manually entered races
type ImportService struct {
	store   *store.DB
	metrics *metrics.Manager
	log     logger.Logger
}

// NewImportService creates an import service. m and log may be nil.
func NewImportService(db *store.DB, m *metrics.Manager, log logger.Logger) *ImportService {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportService{store: db, metrics: m, log: log.Named("import")}
}

// ImportFile decodes a FIT file and stores the workout, its best efforts and,
// if flagged, the race or time trial it represents. Re-importing a file
// replaces what the previous import stored.
func (s *ImportService) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	result, err := s.importFile(ctx, path, opts)
	if s.metrics != nil {
		status := metrics.ImportOK
		if err != nil {
			status = metrics.ImportFailed
		}
		s.metrics.RecordImport(status)
	}
	if err != nil {
		s.log.Warn(ctx, "import failed", logger.String("path", path), logger.Error(err))
		return nil, err
	}

	s.log.Info(ctx, "activity imported",
		logger.String("path", path),
		logger.Int("workout_id", int(result.WorkoutID)),
		logger.Float64("miles", result.Miles),
		logger.Int("best_efforts", result.BestEfforts),
	)
	return result, nil
}

func (s *ImportService) importFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	if opts.Race && opts.TimeTrial {
		return nil, errors.New("an activity cannot be both a race and a time trial")
	}

	act, err := fitimport.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if act.DistanceMeters <= 0 || act.DurationSeconds <= 0 {
		return nil, fmt.Errorf("activity %s has no distance or duration", path)
	}

	workoutType := normalizeWorkoutType(opts)
	w := &store.Workout{
		ExternalID:       act.ExternalID,
		Name:             opts.Name,
		WorkoutType:      workoutType,
		StartDate:        act.StartTime,
		DistanceMeters:   act.DistanceMeters,
		DurationSeconds:  act.DurationSeconds,
		AverageHeartrate: act.AvgHR,
		MaxHeartrate:     act.MaxHR,
		ElevationGainFt:  act.AscentFt,
		WeatherTempF:     act.TempF,
		EfficiencyFactor: act.EfficiencyFactor(),
	}
	if w.Name == "" {
		w.Name = act.StartTime.Format("Jan 02 2006") + " run"
	}

	workoutID, err := s.store.UpsertWorkout(ctx, w)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		WorkoutID:   workoutID,
		ExternalID:  act.ExternalID,
		StartTime:   act.StartTime,
		Miles:       act.DistanceMeters / MetersPerMile,
		WorkoutType: workoutType,
	}

	var whole *store.Performance
	if opts.Race || opts.TimeTrial {
		perf := wholeActivityPerformance(act, opts)
		whole = &perf
		result.RaceRecorded = true
		if d, ok := analysis.MatchRaceDistance(act.DistanceMeters); ok {
			result.RaceDistance = d.Name
		}
	}

	var perfs []store.Performance
	for _, e := range act.BestEfforts() {
		// The recorded race already stands for its own distance
		if whole != nil && analysis.MatchesRaceDistance(e.DistanceMeters, whole.DistanceMeters) {
			continue
		}
		perfs = append(perfs, store.Performance{
			Kind:           store.KindBestEffort,
			Source:         string(engine.SourceWorkoutSegment),
			Date:           act.StartTime.Add(time.Duration(e.StartOffset) * time.Second),
			DistanceMeters: e.DistanceMeters,
			TimeSeconds:    float64(e.DurationSeconds),
			WeatherTempF:   act.TempF,
		})
	}
	result.BestEfforts = len(perfs)

	if whole != nil {
		perfs = append(perfs, *whole)
	}

	if err := s.store.ReplaceWorkoutPerformances(ctx, workoutID, perfs); err != nil {
		return nil, err
	}
	return result, nil
}

// wholeActivityPerformance records the full activity as a race or time
// trial. Distances within tolerance of a standard race snap to it, since GPS
// rarely measures a certified course exactly.
func wholeActivityPerformance(act *fitimport.Activity, opts ImportOptions) store.Performance {
	distance := act.DistanceMeters
	if d, ok := analysis.MatchRaceDistance(distance); ok {
		distance = d.Meters
	}

	p := store.Performance{
		Kind:           store.KindRace,
		Source:         string(engine.SourceRace),
		Date:           act.StartTime,
		DistanceMeters: distance,
		TimeSeconds:    act.DurationSeconds,
		EffortLevel:    opts.EffortLevel,
		WeatherTempF:   act.TempF,
	}
	if act.AscentFt > 0 {
		gain := act.AscentFt
		p.ElevationGainFt = &gain
	}
	if opts.TimeTrial {
		p.Kind = store.KindBestEffort
		p.Source = string(engine.SourceTimeTrial)
	}
	return p
}

func normalizeWorkoutType(opts ImportOptions) string {
	switch {
	case opts.Race:
		return "race"
	case opts.TimeTrial:
		return "time_trial"
	}
	t := strings.ToLower(strings.TrimSpace(opts.WorkoutType))
	t = strings.ReplaceAll(t, " ", "_")
	if t == "" {
		return "easy"
	}
	return t
}

// RaceEntry is a race result entered by hand
type RaceEntry struct {
	Date               time.Time
	DistanceMeters     float64
	TimeSeconds        float64
	EffortLevel        string
	WeatherTempF       *float64
	WeatherHumidityPct *float64
	ElevationGainFt    *float64
}

// AddRace stores a race that has no recorded activity
func (s *ImportService) AddRace(ctx context.Context, r RaceEntry) (int64, error) {
	if r.DistanceMeters < engine.Distance1K || r.TimeSeconds <= 0 || r.Date.IsZero() {
		return 0, fmt.Errorf("%w: need a date, at least 1K and a positive time", ErrInvalidRace)
	}
	if pace := engine.PacePerMile(r.DistanceMeters, r.TimeSeconds); pace < 180 {
		return 0, fmt.Errorf("%w: %.0f s/mi is faster than any human", ErrInvalidRace, pace)
	}

	id, err := s.store.InsertPerformance(ctx, &store.Performance{
		Kind:               store.KindRace,
		Source:             string(engine.SourceRace),
		Date:               r.Date,
		DistanceMeters:     r.DistanceMeters,
		TimeSeconds:        r.TimeSeconds,
		EffortLevel:        r.EffortLevel,
		WeatherTempF:       r.WeatherTempF,
		WeatherHumidityPct: r.WeatherHumidityPct,
		ElevationGainFt:    r.ElevationGainFt,
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "race added",
		logger.String("date", r.Date.Format(time.DateOnly)),
		logger.Float64("meters", r.DistanceMeters),
		logger.Float64("seconds", r.TimeSeconds),
	)
	return id, nil
}
