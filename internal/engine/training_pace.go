package engine

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	tpWeight       = 0.25
	tpLookbackDays = 90
	tpMinMiles     = 0.5
	tpMinMinutes   = 10.0
	tpMinRuns      = 3
	tpBaseConf     = 0.2
	tpExtraConf    = 0.03
	tpMaxConf      = 0.5
	tpHalfLifeDays = 60.0
)

// trainingIntensity is the assumed fraction of VO2max each run type is
// performed at
var trainingIntensity = map[string]float64{
	"recovery":  0.65,
	"easy":      0.70,
	"long":      0.72,
	"long_run":  0.72,
	"steady":    0.75,
	"tempo":     0.86,
	"threshold": 0.88,
}

// TrainingPaceExtractor back-infers fitness from the pace of ordinary
// training runs. It needs no heart rate, so it is the signal of last resort
// for runners without races or a monitor.
type TrainingPaceExtractor struct{}

func (TrainingPaceExtractor) Name() string { return SignalTrainingPace }

func (TrainingPaceExtractor) Extract(in Input, asOf time.Time) (Signal, bool) {
	var values []float64
	latest := -1

	for _, w := range in.Workouts {
		intensity, ok := trainingIntensity[normalizeType(w.WorkoutType)]
		if !ok || !inWindow(asOf, w.Date, tpLookbackDays) {
			continue
		}
		if w.DistanceMiles < tpMinMiles || w.DurationMinutes < tpMinMinutes {
			continue
		}

		velocity := velocityFromPace(workoutPace(w))
		vo2 := oxygenCost(velocity)
		if velocity <= 0 || vo2 <= 0 {
			continue
		}

		values = append(values, ClampVDOT(vo2/intensity))
		if age := daysBefore(asOf, w.Date); latest < 0 || age < latest {
			latest = age
		}
	}

	if len(values) < tpMinRuns {
		return Signal{}, false
	}

	// The faster half of runs best reflects capability; slow days are
	// usually deliberate.
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	top := values[:(len(values)+1)/2]

	conf := math.Min(tpMaxConf, tpBaseConf+tpExtraConf*float64(len(values)))
	conf = clamp01(conf * halfLifeDecay(float64(latest), tpHalfLifeDays))

	return Signal{
		Name:          SignalTrainingPace,
		Kind:          KindEstimate,
		Weight:        tpWeight,
		EstimatedVDOT: mean(top),
		Confidence:    conf,
		DataPoints:    len(values),
		RecencyDays:   intPtr(latest),
		Description:   fmt.Sprintf("Faster %d of %d training runs", len(top), len(values)),
	}, true
}
