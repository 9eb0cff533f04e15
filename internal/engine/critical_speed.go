package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	csWeight       = 0.6
	csLookbackDays = 180
	csMaxDistance  = Distance15K
	csMinSeconds   = 120.0
	csMinBuckets   = 3
	csHoldMinutes  = 30.0 // duration CS is treated as sustainable for
	csBaseConf     = 0.45
	csExtraConf    = 0.08
	csMaxConf      = 0.75
	csHalfLifeDays = 120.0
)

// csBuckets are the upper bounds (meters) of the distance buckets. A
// performance falls into the first bucket whose bound it does not exceed.
var csBuckets = []float64{
	1200,  // ~1K
	2000,  // ~mile
	3500,  // ~3K
	6000,  // ~5K
	9000,  // ~8K
	12000, // ~10K
	csMaxDistance,
}

// CriticalSpeedExtractor fits the two-parameter critical-speed model
// D = D' + CS·t across the fastest performance in each distance bucket
type CriticalSpeedExtractor struct{}

func (CriticalSpeedExtractor) Name() string { return SignalCriticalSpeed }

func (CriticalSpeedExtractor) Extract(in Input, asOf time.Time) (Signal, bool) {
	best := make([]*PerformanceRecord, len(csBuckets))

	consider := func(records []PerformanceRecord) {
		for i := range records {
			r := records[i]
			if r.DistanceMeters <= 0 || r.TimeSeconds < csMinSeconds || r.DistanceMeters > csMaxDistance {
				continue
			}
			if !inWindow(asOf, r.Date, csLookbackDays) {
				continue
			}
			b := csBucket(r.DistanceMeters)
			if b < 0 {
				continue
			}
			if best[b] == nil || fasterThan(r, *best[b]) {
				best[b] = &r
			}
		}
	}
	consider(in.Races)
	consider(in.BestEfforts)

	var ts, ds []float64
	var latest time.Time
	for _, r := range best {
		if r == nil {
			continue
		}
		ts = append(ts, r.TimeSeconds)
		ds = append(ds, r.DistanceMeters)
		if r.Date.After(latest) {
			latest = r.Date
		}
	}

	if len(ts) < csMinBuckets {
		return Signal{}, false
	}

	fit, ok := linearFit(ts, ds)
	if !ok {
		return Signal{}, false
	}

	cs := fit.slope         // m/s
	dPrime := fit.intercept // m
	if cs <= 0 || dPrime < 0 {
		return Signal{}, false
	}

	vdot := vdotAtVelocity(cs*60, csHoldMinutes)
	if vdot <= 0 {
		return Signal{}, false
	}

	age := daysBefore(asOf, latest)
	conf := math.Min(csMaxConf, csBaseConf+csExtraConf*float64(len(ts)-csMinBuckets))
	conf = clamp01(conf * fit.r2 * halfLifeDecay(float64(age), csHalfLifeDays))

	return Signal{
		Name:          SignalCriticalSpeed,
		Kind:          KindEstimate,
		Weight:        csWeight,
		EstimatedVDOT: ClampVDOT(vdot),
		Confidence:    conf,
		DataPoints:    len(ts),
		RecencyDays:   intPtr(age),
		Description: fmt.Sprintf("CS %s/mi, D' %.0f m across %d distances",
			formatPace(PacePerMile(cs, 1)), dPrime, len(ts)),
	}, true
}

func csBucket(meters float64) int {
	for i, bound := range csBuckets {
		if meters <= bound {
			return i
		}
	}
	return -1
}

// fasterThan compares average speed, breaking ties by the earlier date
func fasterThan(a, b PerformanceRecord) bool {
	va := a.DistanceMeters / a.TimeSeconds
	vb := b.DistanceMeters / b.TimeSeconds
	if va != vb {
		return va > vb
	}
	return a.Date.Before(b.Date)
}

// formatPace renders seconds per mile as m:ss
func formatPace(seconds float64) string {
	s := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
