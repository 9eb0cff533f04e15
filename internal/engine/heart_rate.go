package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	hrWeight             = 0.5
	hrLookbackDays       = 90
	hrMinMiles           = 0.5
	hrMinMinutes         = 15.0
	hrMinReserveFraction = 0.50
	hrMaxReserveFraction = 0.90
	hrMinReserveBpm      = 20.0
	hrFatiguePerTSB      = 0.001 // HR discount per point of negative TSB
	hrMaxFatigueDiscount = 0.03
	hrHalfLifeDays       = 45.0
	hrBaseConf           = 0.3
	hrExtraConf          = 0.05
	hrMaxConf            = 0.8
	restingVO2           = 3.5 // ml/kg/min
)

// HeartRateExtractor estimates aerobic power from steady runs by relating the
// oxygen cost of the pace to the heart-rate reserve used to hold it
type HeartRateExtractor struct{}

func (HeartRateExtractor) Name() string { return SignalHeartRate }

func (HeartRateExtractor) Extract(in Input, asOf time.Time) (Signal, bool) {
	resting := in.Physiology.RestingHR
	reserve := in.Physiology.MaxHR - resting
	if resting <= 0 || reserve <= hrMinReserveBpm {
		return Signal{}, false
	}

	var cs []candidate
	for _, w := range in.Workouts {
		if !IsSteadyType(w.WorkoutType) || !inWindow(asOf, w.Date, hrLookbackDays) {
			continue
		}
		if w.DistanceMiles < hrMinMiles || w.DurationMinutes < hrMinMinutes || w.AvgHR <= 0 {
			continue
		}

		hrr := (w.AvgHR - resting) / reserve
		if hrr < hrMinReserveFraction || hrr > hrMaxReserveFraction {
			continue
		}

		vdot := vdotFromHeartRate(workoutPace(w), fatigueCorrectedHR(w), resting, reserve)
		if vdot <= 0 {
			continue
		}

		age := float64(daysBefore(asOf, w.Date))
		cs = append(cs, candidate{
			vdot:   ClampVDOT(vdot),
			weight: halfLifeDecay(age, hrHalfLifeDays),
			date:   w.Date,
		})
	}

	if len(cs) == 0 {
		return Signal{}, false
	}

	sortCandidates(cs)

	var sumW, sumWV float64
	values := make([]float64, len(cs))
	for i, c := range cs {
		sumW += c.weight
		sumWV += c.weight * c.vdot
		values[i] = c.vdot
	}
	if sumW <= 0 {
		return Signal{}, false
	}

	spread := stddev(values)
	conf := math.Min(hrMaxConf, hrBaseConf+hrExtraConf*float64(len(cs)))
	conf = clamp01(conf / (1 + spread/5))

	age := daysBefore(asOf, newest(cs))
	return Signal{
		Name:          SignalHeartRate,
		Kind:          KindEstimate,
		Weight:        hrWeight,
		EstimatedVDOT: sumWV / sumW,
		Confidence:    conf,
		DataPoints:    len(cs),
		RecencyDays:   intPtr(age),
		Description:   fmt.Sprintf("%d steady run(s) with heart rate, spread %.1f", len(cs), spread),
	}, true
}

// fatigueCorrectedHR discounts the observed heart rate when the run was done
// under accumulated fatigue (negative TSB)
func fatigueCorrectedHR(w WorkoutSignalInput) float64 {
	hr := w.AvgHR
	if w.TSB != nil && *w.TSB < 0 {
		discount := math.Min(hrMaxFatigueDiscount, -*w.TSB*hrFatiguePerTSB)
		hr *= 1 - discount
	}
	return hr
}

// vdotFromHeartRate extrapolates the oxygen cost of a pace to maximal effort
// assuming %VO2 reserve tracks %HR reserve
func vdotFromHeartRate(paceSeconds, hr, resting, reserve float64) float64 {
	velocity := velocityFromPace(paceSeconds)
	if velocity <= 0 || reserve <= 0 {
		return 0
	}

	hrr := (hr - resting) / reserve
	if hrr <= 0 {
		return 0
	}

	vo2 := oxygenCost(velocity)
	if vo2 <= restingVO2 {
		return 0
	}
	return restingVO2 + (vo2-restingVO2)/hrr
}
