package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	raceWeight        = 1.0
	raceMinDistance   = Distance1K
	raceLookbackDays  = 365
	raceHalfLifeDays  = 180.0
	raceStaleDays     = 120
	raceStalePenalty  = 0.85
	raceBaseConf      = 0.65
	raceAllOutBonus   = 0.15
	raceExtraRaceConf = 0.05
	raceMaxExtraConf  = 0.15
	raceMaxConf       = 0.95

	heatThresholdF     = 60.0
	heatPctPerDegree   = 0.0015 // fraction of time per °F above threshold
	humidityThreshold  = 60.0
	climbSecondsPer100 = 8.0 // seconds lost per 100 ft of climbing
	maxClimbCorrection = 0.05
	maxConditionsFix   = 0.10
)

// RaceExtractor estimates fitness from recent race results
type RaceExtractor struct{}

func (RaceExtractor) Name() string { return SignalRace }

func (RaceExtractor) Extract(in Input, asOf time.Time) (Signal, bool) {
	var cs []candidate

	for _, r := range in.Races {
		if r.Source != SourceRace || r.DistanceMeters < raceMinDistance || r.TimeSeconds <= 0 {
			continue
		}
		if !inWindow(asOf, r.Date, raceLookbackDays) {
			continue
		}

		vdot := VDOTFromPerformance(r.DistanceMeters, CorrectedRaceTime(r))
		if vdot <= 0 {
			continue
		}

		age := float64(daysBefore(asOf, r.Date))
		cs = append(cs, candidate{
			vdot:   ClampVDOT(vdot),
			weight: raceRecency(age) * effortFactor(r.EffortLevel),
			date:   r.Date,
			allOut: r.EffortLevel == EffortAllOut,
		})
	}

	if len(cs) == 0 {
		return Signal{}, false
	}

	sortCandidates(cs)
	cs = rejectOutliers(cs)

	var sumW, sumWV float64
	allOut := false
	for _, c := range cs {
		sumW += c.weight
		sumWV += c.weight * c.vdot
		allOut = allOut || c.allOut
	}
	if sumW <= 0 {
		return Signal{}, false
	}

	latest := newest(cs)
	age := daysBefore(asOf, latest)

	conf := raceBaseConf
	if allOut {
		conf += raceAllOutBonus
	}
	conf += math.Min(raceMaxExtraConf, raceExtraRaceConf*float64(len(cs)-1))
	conf = clamp(conf*raceRecency(float64(age)), 0, raceMaxConf)

	return Signal{
		Name:          SignalRace,
		Kind:          KindEstimate,
		Weight:        raceWeight,
		EstimatedVDOT: sumWV / sumW,
		Confidence:    conf,
		DataPoints:    len(cs),
		RecencyDays:   intPtr(age),
		Description:   fmt.Sprintf("%d race(s), most recent %d days ago", len(cs), age),
	}, true
}

// raceRecency decays a race's influence with a 180-day half-life and an
// extra penalty once it is older than 120 days
func raceRecency(ageDays float64) float64 {
	w := halfLifeDecay(ageDays, raceHalfLifeDays)
	if ageDays > raceStaleDays {
		w *= raceStalePenalty
	}
	return w
}

// effortFactor discounts races that were not run flat out
func effortFactor(level string) float64 {
	switch level {
	case EffortAllOut:
		return 1.0
	case "":
		return 0.85
	default:
		return 0.7
	}
}

// CorrectedRaceTime returns the race time adjusted to cool, flat conditions.
// Heat costs 0.15% per °F above 60 (amplified by humidity above 60%), climbing
// costs about 8 s per 100 ft; the combined correction is capped at 10%.
func CorrectedRaceTime(r PerformanceRecord) float64 {
	t := r.TimeSeconds
	if t <= 0 {
		return 0
	}

	correction := 0.0
	if r.WeatherTempF != nil && *r.WeatherTempF > heatThresholdF {
		heat := (*r.WeatherTempF - heatThresholdF) * heatPctPerDegree
		if r.WeatherHumidityPct != nil && *r.WeatherHumidityPct > humidityThreshold {
			heat *= 1 + (*r.WeatherHumidityPct-humidityThreshold)/100
		}
		correction += heat
	}
	if r.ElevationGainFt != nil && *r.ElevationGainFt > 0 {
		climb := (*r.ElevationGainFt / 100 * climbSecondsPer100) / t
		correction += math.Min(climb, maxClimbCorrection)
	}

	correction = math.Min(correction, maxConditionsFix)
	return t * (1 - correction)
}
