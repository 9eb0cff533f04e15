package engine

import (
	"fmt"
	"math"
)

// TaperBonusPct is the best-case form adjustment used for tapered predictions
const TaperBonusPct = -0.5

const lowCTL = 20.0

// FormAdjustmentPct converts fitness/fatigue into a race-time adjustment in
// percent. Positive values slow the prediction.
func FormAdjustmentPct(f FitnessState) float64 {
	var pct float64
	switch {
	case f.TSB > 25:
		pct = 0.5
	case f.TSB > 5:
		pct = -0.5
	case f.TSB >= -10:
		pct = 0
	case f.TSB >= -25:
		pct = 1.5
	default:
		pct = 3
	}
	if f.CTL < lowCTL {
		pct += 1
	}
	return pct
}

// FormDescription returns a human-readable description of the fitness state
func FormDescription(f FitnessState) string {
	var desc string
	switch {
	case f.TSB > 25:
		desc = "Very fresh (possibly detrained)"
	case f.TSB > 10:
		desc = "Fresh and ready to race"
	case f.TSB > 0:
		desc = "Neutral - good for training"
	case f.TSB > -10:
		desc = "Slightly fatigued"
	case f.TSB > -25:
		desc = "Tired but building fitness"
	default:
		desc = "Very fatigued - rest needed"
	}
	if f.CTL < lowCTL {
		desc += "; aerobic base is thin"
	}
	return desc
}

// readinessRequirement is what a runner needs in the legs for a distance
type readinessRequirement struct {
	weeklyMiles float64
	longRun     float64
	weeks       int
}

var readinessRequirements = map[string]readinessRequirement{
	"5K":            {weeklyMiles: 15, longRun: 5, weeks: 6},
	"10K":           {weeklyMiles: 20, longRun: 7, weeks: 8},
	"Half Marathon": {weeklyMiles: 30, longRun: 11, weeks: 10},
	"Marathon":      {weeklyMiles: 40, longRun: 18, weeks: 12},
}

const (
	readinessVolumeWeight      = 0.40
	readinessLongRunWeight     = 0.35
	readinessConsistencyWeight = 0.25
	readinessReasonThreshold   = 0.7
	maxConsistencyWeeks        = 12
)

// Readiness scores how prepared the recent training is for a distance, with
// reasons when it falls short
func Readiness(d RaceDistance, v TrainingVolume) (float64, ReadinessFactors, []string) {
	req, ok := readinessRequirements[d.Name]
	if !ok {
		req = scaledRequirement(d)
	}

	weeks := v.WeeksConsecutiveTraining
	if weeks > maxConsistencyWeeks {
		weeks = maxConsistencyWeeks
	}

	factors := ReadinessFactors{
		Volume:      ratio(v.AvgWeeklyMiles4Weeks, req.weeklyMiles),
		LongRun:     ratio(v.LongestRecentRunMiles, req.longRun),
		Consistency: ratio(float64(weeks), float64(req.weeks)),
	}
	score := clamp01(readinessVolumeWeight*factors.Volume +
		readinessLongRunWeight*factors.LongRun +
		readinessConsistencyWeight*factors.Consistency)

	reasons := []string{}
	if score < readinessReasonThreshold {
		reasons = append(reasons, limitingReason(d, req, v, factors))
	}
	if d.Meters <= Distance10K && v.QualitySessionsPerWeek < 1 {
		reasons = append(reasons, "No regular quality sessions; speed may lag fitness")
	}

	return round2(score), factors, reasons
}

// limitingReason names the weakest readiness factor
func limitingReason(d RaceDistance, req readinessRequirement, v TrainingVolume, f ReadinessFactors) string {
	switch {
	case f.Volume <= f.LongRun && f.Volume <= f.Consistency:
		return fmt.Sprintf("Weekly volume %.0f mi is below the %.0f mi typical for %s",
			v.AvgWeeklyMiles4Weeks, req.weeklyMiles, d.Name)
	case f.LongRun <= f.Consistency:
		return fmt.Sprintf("Longest recent run %.1f mi is short of the %.0f mi %s needs",
			v.LongestRecentRunMiles, req.longRun, d.Name)
	default:
		return fmt.Sprintf("Only %d consistent week(s) of training; %d recommended for %s",
			v.WeeksConsecutiveTraining, req.weeks, d.Name)
	}
}

// scaledRequirement interpolates requirements for a non-standard distance
// from the 5K baseline
func scaledRequirement(d RaceDistance) readinessRequirement {
	base := readinessRequirements["5K"]
	scale := math.Max(1, math.Sqrt(d.Meters/Distance5K))
	return readinessRequirement{
		weeklyMiles: base.weeklyMiles * scale,
		longRun:     base.longRun * scale,
		weeks:       int(math.Min(maxConsistencyWeeks, math.Round(float64(base.weeks)*scale))),
	}
}

func ratio(actual, required float64) float64 {
	if required <= 0 {
		return 1
	}
	return clamp01(actual / required)
}
