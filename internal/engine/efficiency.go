package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	efWeight         = 0.35
	efLookbackDays   = 90
	efMinRuns        = 5
	efMinMiles       = 0.5
	efMinMinutes     = 15.0
	efVDOTPerPercent = 0.5 // VDOT points per 1% change in EF
	efMaxDelta       = 3.0
	efMinDelta       = 0.1

	// EFModifierMinConfidence is the confidence an EF trend needs before it
	// is allowed to move the blended VDOT
	EFModifierMinConfidence = 0.3
)

// EFTrendExtractor regresses efficiency factor over recent steady runs and
// turns a meaningful trend into a VDOT adjustment. It is a modifier, not a
// standalone estimate.
type EFTrendExtractor struct{}

func (EFTrendExtractor) Name() string { return SignalEFTrend }

func (EFTrendExtractor) Extract(in Input, asOf time.Time) (Signal, bool) {
	var xs, ys []float64
	latest := -1

	for _, w := range sortedWorkouts(in.Workouts) {
		if !IsSteadyType(w.WorkoutType) || !inWindow(asOf, w.Date, efLookbackDays) {
			continue
		}
		if w.DistanceMiles < efMinMiles || w.DurationMinutes < efMinMinutes {
			continue
		}
		ef := EfficiencyFactor(workoutPace(w), w.AvgHR)
		if ef <= 0 {
			continue
		}

		age := daysBefore(asOf, w.Date)
		xs = append(xs, -float64(age))
		ys = append(ys, ef)
		if latest < 0 || age < latest {
			latest = age
		}
	}

	if len(xs) < efMinRuns {
		return Signal{}, false
	}

	fit, ok := linearFit(xs, ys)
	if !ok {
		return Signal{}, false
	}

	span := maxOf(xs) - minOf(xs)
	meanEF := mean(ys)
	if span <= 0 || meanEF <= 0 {
		return Signal{}, false
	}

	changePct := fit.slope * span / meanEF * 100
	delta := clamp(changePct*efVDOTPerPercent, -efMaxDelta, efMaxDelta)
	if math.Abs(delta) < efMinDelta {
		return Signal{}, false
	}

	conf := clamp01(fit.r2 * math.Min(1, 0.5+float64(len(xs))/20))

	return Signal{
		Name:          SignalEFTrend,
		Kind:          KindModifier,
		Weight:        efWeight,
		EstimatedVDOT: delta,
		Confidence:    conf,
		DataPoints:    len(xs),
		RecencyDays:   intPtr(latest),
		Description:   fmt.Sprintf("Efficiency %+.1f%% over %.0f days (R² %.2f)", changePct, span, fit.r2),
	}, true
}

// EfficiencyFactor calculates pace:HR efficiency as (m/min) / HR.
// Higher is better - running faster for the same heart rate.
func EfficiencyFactor(paceSeconds, avgHR float64) float64 {
	velocity := velocityFromPace(paceSeconds)
	if velocity <= 0 || avgHR <= 0 {
		return 0
	}
	return velocity / avgHR
}

// lineFit is an ordinary least-squares fit y = intercept + slope*x
type lineFit struct {
	slope     float64
	intercept float64
	r2        float64
}

func linearFit(xs, ys []float64) (lineFit, bool) {
	n := float64(len(xs))
	if len(xs) < 2 || len(xs) != len(ys) {
		return lineFit{}, false
	}

	mx, my := mean(xs), mean(ys)
	var sxx, sxy, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 || n < 2 {
		return lineFit{}, false
	}

	slope := sxy / sxx
	r2 := 1.0
	if syy > 0 {
		r2 = (sxy * sxy) / (sxx * syy)
	}
	return lineFit{slope: slope, intercept: my - slope*mx, r2: r2}, true
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		m = math.Min(m, v)
	}
	return m
}
