package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	bestEffortWeight        = 0.65
	bestEffortLookbackDays  = 180
	bestEffortSegmentMin    = Distance5K
	bestEffortRaceMin       = Distance1Mile
	bestEffortNonRaceDerate = 0.97
	bestEffortTopK          = 5
	bestEffortRankDecay     = 0.5 // weight multiplier per rank position
	bestEffortHalfLifeDays  = 90.0
	bestEffortBaseConf      = 0.5
	bestEffortExtraConf     = 0.08
	bestEffortMaxConf       = 0.85
)

// BestEffortExtractor estimates fitness from the fastest recent efforts.
// The fastest few efforts dominate: ranked candidates are combined with a
// geometric decay of 0.5 per rank, so a single slow day cannot drag the
// estimate down.
type BestEffortExtractor struct{}

func (BestEffortExtractor) Name() string { return SignalBestEffort }

func (BestEffortExtractor) Extract(in Input, asOf time.Time) (Signal, bool) {
	var cs []candidate

	for _, e := range in.BestEfforts {
		if !bestEffortEligible(e) {
			continue
		}
		if !inWindow(asOf, e.Date, bestEffortLookbackDays) {
			continue
		}

		vdot := VDOTFromPerformance(e.DistanceMeters, e.TimeSeconds)
		if vdot <= 0 {
			continue
		}
		if e.Source != SourceRace {
			vdot *= bestEffortNonRaceDerate
		}
		cs = append(cs, candidate{vdot: ClampVDOT(vdot), date: e.Date})
	}

	if len(cs) == 0 {
		return Signal{}, false
	}

	sortCandidates(cs)
	cs = rejectOutliers(cs)

	estimate := peakWeightedMean(cs, bestEffortTopK, bestEffortRankDecay)

	latest := newest(cs)
	age := daysBefore(asOf, latest)
	conf := math.Min(bestEffortMaxConf, bestEffortBaseConf+bestEffortExtraConf*float64(len(cs)-1))
	conf = clamp01(conf * halfLifeDecay(float64(age), bestEffortHalfLifeDays))

	return Signal{
		Name:          SignalBestEffort,
		Kind:          KindEstimate,
		Weight:        bestEffortWeight,
		EstimatedVDOT: estimate,
		Confidence:    conf,
		DataPoints:    len(cs),
		RecencyDays:   intPtr(age),
		Description:   fmt.Sprintf("Peak of %d best effort(s), top %.1f", len(cs), cs[0].vdot),
	}, true
}

// bestEffortEligible applies the per-source minimum distance
func bestEffortEligible(e PerformanceRecord) bool {
	if e.DistanceMeters <= 0 || e.TimeSeconds <= 0 {
		return false
	}
	switch e.Source {
	case SourceWorkoutSegment:
		return e.DistanceMeters >= bestEffortSegmentMin
	case SourceRace, SourceTimeTrial:
		return e.DistanceMeters >= bestEffortRaceMin
	default:
		return false
	}
}

// peakWeightedMean averages the top k candidates (already sorted descending)
// with weight decay^rank
func peakWeightedMean(cs []candidate, k int, decay float64) float64 {
	if len(cs) < k {
		k = len(cs)
	}

	var sumW, sumWV float64
	w := 1.0
	for i := 0; i < k; i++ {
		sumW += w
		sumWV += w * cs[i].vdot
		w *= decay
	}
	if sumW == 0 {
		return 0
	}
	return sumWV / sumW
}
