package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"raceready/internal/analysis"
	"raceready/internal/config"
	"raceready/internal/engine"
	"raceready/internal/logger"
	"raceready/internal/metrics"
	"raceready/internal/store"
)

// FitnessModel reports the training-load state on a given day
type FitnessModel interface {
	StateOn(date time.Time) engine.FitnessState
}

// Evaluator runs the prediction engine. *engine.Engine satisfies it.
type Evaluator interface {
	Evaluate(in engine.Input) engine.Result
}

// Option configures a PredictionService
type Option func(*PredictionService)

// WithEvaluator replaces the default engine
func WithEvaluator(e Evaluator) Option {
	return func(s *PredictionService) { s.engine = e }
}

// WithMetrics records evaluations on m
func WithMetrics(m *metrics.Manager) Option {
	return func(s *PredictionService) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l logger.Logger) Option {
	return func(s *PredictionService) { s.log = l.Named("predict") }
}

// WithClock sets the clock used when no as-of date is given
func WithClock(now func() time.Time) Option {
	return func(s *PredictionService) { s.now = now }
}

// PredictionService assembles engine input from the store, evaluates it and
// keeps a history of results
type PredictionService struct {
	store   *store.DB
	engine  Evaluator
	athlete engine.UserPhysiology
	zones   analysis.HRZones
	metrics *metrics.Manager
	log     logger.Logger
	now     func() time.Time
}

// NewPredictionService creates a prediction service for the configured athlete
func NewPredictionService(db *store.DB, athlete config.AthleteConfig, opts ...Option) *PredictionService {
	phys := physiology(athlete)
	s := &PredictionService{
		store:   db,
		engine:  engine.New(),
		athlete: phys,
		zones:   analysis.ZonesFor(phys),
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict evaluates fitness as of asOf (zero means now) and saves the result
// as a snapshot
func (s *PredictionService) Predict(ctx context.Context, asOf time.Time) (*engine.Result, error) {
	result, err := s.Evaluate(ctx, asOf)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	snapshot := &store.PredictionSnapshot{
		ID:         uuid.NewString(),
		AsOf:       result.AsOf,
		ComputedAt: s.now(),
		VDOT:       result.VDOT,
		Confidence: result.Confidence,
		Result:     payload,
	}
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "snapshot saved", logger.String("id", snapshot.ID))
	return result, nil
}

// Evaluate runs the engine without saving anything
func (s *PredictionService) Evaluate(ctx context.Context, asOf time.Time) (*engine.Result, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = asOf.UTC()

	in, err := s.buildInput(ctx, asOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.engine.Evaluate(in)
	elapsed := time.Since(start)

	names := make([]string, len(result.Signals))
	for i, sig := range result.Signals {
		names[i] = sig.Name
	}
	if s.metrics != nil {
		s.metrics.RecordEvaluation(result.Confidence, result.VDOT, names, elapsed)
	}

	s.log.Info(ctx, "fitness evaluated",
		logger.String("as_of", asOf.Format(time.DateOnly)),
		logger.Float64("vdot", result.VDOT),
		logger.String("confidence", result.Confidence),
		logger.Int("signals", len(result.Signals)),
		logger.Int("workouts", len(in.Workouts)),
		logger.Duration("elapsed", elapsed),
	)

	return &result, nil
}

// buildInput loads everything the engine needs as of asOf
func (s *PredictionService) buildInput(ctx context.Context, asOf time.Time) (engine.Input, error) {
	since := asOf.AddDate(0, 0, -DataLookbackDays)

	workouts, err := s.store.ListWorkouts(ctx, since)
	if err != nil {
		return engine.Input{}, fmt.Errorf("loading workouts: %w", err)
	}
	workouts = notAfter(workouts, asOf, func(w store.Workout) time.Time { return w.StartDate })

	races, err := s.loadPerformances(ctx, store.KindRace, since, asOf)
	if err != nil {
		return engine.Input{}, err
	}
	efforts, err := s.loadPerformances(ctx, store.KindBestEffort, since, asOf)
	if err != nil {
		return engine.Input{}, err
	}

	inputs := make([]engine.WorkoutSignalInput, len(workouts))
	for i, w := range workouts {
		inputs[i] = workoutInput(w)
	}

	model := analysis.NewLoadModel(inputs, s.zones)
	annotateForm(inputs, model)

	saved, err := s.savedVDOT(ctx, asOf)
	if err != nil {
		return engine.Input{}, err
	}

	return engine.Input{
		Physiology:  s.athlete,
		Workouts:    inputs,
		Races:       races,
		BestEfforts: efforts,
		Fitness:     model.StateOn(asOf),
		Volume:      analysis.SummarizeVolume(inputs, asOf),
		SavedVDOT:   saved,
		AsOf:        asOf,
	}, nil
}

func (s *PredictionService) loadPerformances(ctx context.Context, kind string, since, asOf time.Time) ([]engine.PerformanceRecord, error) {
	perfs, err := s.store.ListPerformances(ctx, kind, since)
	if err != nil {
		return nil, fmt.Errorf("loading %s performances: %w", kind, err)
	}
	perfs = notAfter(perfs, asOf, func(p store.Performance) time.Time { return p.Date })

	records := make([]engine.PerformanceRecord, len(perfs))
	for i, p := range perfs {
		records[i] = performanceRecord(p)
	}
	return records, nil
}

// savedVDOT is the last VDOT stored for a date on or before asOf, used only
// when no signal fires
func (s *PredictionService) savedVDOT(ctx context.Context, asOf time.Time) (*float64, error) {
	latest, err := s.store.LatestSnapshotAsOf(ctx, asOf)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	v := latest.VDOT
	return &v, nil
}

// annotateForm sets each workout's TSB to the form carried into that day,
// before the workout's own load lands
func annotateForm(workouts []engine.WorkoutSignalInput, model FitnessModel) {
	for i := range workouts {
		tsb := model.StateOn(workouts[i].Date.AddDate(0, 0, -1)).TSB
		workouts[i].TSB = &tsb
	}
}

// HistoryEntry is one saved evaluation, for charting
type HistoryEntry struct {
	ID         string    `json:"id"`
	AsOf       time.Time `json:"as_of"`
	ComputedAt time.Time `json:"computed_at"`
	VDOT       float64   `json:"vdot"`
	Confidence string    `json:"confidence"`
}

// History returns up to limit saved evaluations, oldest first
func (s *PredictionService) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	snapshots, err := s.store.ListSnapshots(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, len(snapshots))
	for i, snap := range snapshots {
		// Snapshots arrive newest first
		entries[len(snapshots)-1-i] = HistoryEntry{
			ID:         snap.ID,
			AsOf:       snap.AsOf,
			ComputedAt: snap.ComputedAt,
			VDOT:       snap.VDOT,
			Confidence: snap.Confidence,
		}
	}
	return entries, nil
}

// Snapshot returns the full result saved under id
func (s *PredictionService) Snapshot(ctx context.Context, id string) (*engine.Result, error) {
	snap, err := s.store.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	var result engine.Result
	if err := json.Unmarshal(snap.Result, &result); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", id, err)
	}
	return &result, nil
}
