package engine

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Signal names
const (
	SignalRace          = "race_vdot"
	SignalBestEffort    = "best_effort_vdot"
	SignalHeartRate     = "hr_aerobic_power"
	SignalEFTrend       = "ef_trend"
	SignalCriticalSpeed = "critical_speed"
	SignalTrainingPace  = "training_pace"
)

// Extractor turns the input snapshot into at most one Signal.
// Extractors never fail: ineligible data simply yields ok == false.
type Extractor interface {
	Name() string
	Extract(in Input, asOf time.Time) (sig Signal, ok bool)
}

// DefaultExtractors returns the standard signal set in evaluation order
func DefaultExtractors() []Extractor {
	return []Extractor{
		RaceExtractor{},
		BestEffortExtractor{},
		HeartRateExtractor{},
		EFTrendExtractor{},
		CriticalSpeedExtractor{},
		TrainingPaceExtractor{},
	}
}

// outlierRejectDistance is how far (VDOT points) a single performance may sit
// from the median of its peers before it is discarded
const outlierRejectDistance = 8.0

// candidate is a per-record fitness estimate inside an extractor
type candidate struct {
	vdot   float64
	weight float64
	date   time.Time
	allOut bool
}

// sortCandidates orders candidates by VDOT descending, then date, for
// input-order independence
func sortCandidates(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].vdot != cs[j].vdot {
			return cs[i].vdot > cs[j].vdot
		}
		return cs[i].date.Before(cs[j].date)
	})
}

// rejectOutliers drops candidates far from the median once there are enough
// peers to define one
func rejectOutliers(cs []candidate) []candidate {
	if len(cs) < 3 {
		return cs
	}

	values := make([]float64, len(cs))
	for i, c := range cs {
		values[i] = c.vdot
	}
	med := median(values)

	kept := make([]candidate, 0, len(cs))
	for _, c := range cs {
		if math.Abs(c.vdot-med) <= outlierRejectDistance {
			kept = append(kept, c)
		}
	}
	return kept
}

// newest returns the most recent candidate date
func newest(cs []candidate) time.Time {
	var latest time.Time
	for _, c := range cs {
		if c.date.After(latest) {
			latest = c.date
		}
	}
	return latest
}

// halfLifeDecay returns 0.5^(ageDays/halfLife)
func halfLifeDecay(ageDays, halfLife float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Pow(0.5, ageDays/halfLife)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// normalizeType canonicalizes a workout type label
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.NewReplacer("-", "_", " ", "_").Replace(t)
}

// steadyTypes are workout types without intentional surges
var steadyTypes = map[string]bool{
	"easy":     true,
	"recovery": true,
	"long":     true,
	"long_run": true,
	"steady":   true,
	"aerobic":  true,
	"base":     true,
	"general":  true,
}

// IsSteadyType reports whether a workout type is a steady-state run
func IsSteadyType(workoutType string) bool {
	return steadyTypes[normalizeType(workoutType)]
}

// velocityFromPace converts seconds per mile to meters per minute
func velocityFromPace(paceSeconds float64) float64 {
	if paceSeconds <= 0 {
		return 0
	}
	return Distance1Mile / (paceSeconds / 60)
}

// sortedWorkouts returns a copy of workouts ordered by date so downstream
// sums do not depend on input order
func sortedWorkouts(ws []WorkoutSignalInput) []WorkoutSignalInput {
	out := append([]WorkoutSignalInput(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// workoutPace returns the run's pace in seconds per mile, deriving it from
// distance and duration when the recorded pace is missing
func workoutPace(w WorkoutSignalInput) float64 {
	if w.AvgPaceSeconds > 0 {
		return w.AvgPaceSeconds
	}
	if w.DistanceMiles > 0 && w.DurationMinutes > 0 {
		return w.DurationMinutes * 60 / w.DistanceMiles
	}
	return 0
}
