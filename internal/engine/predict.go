package engine

import "math"

// RiegelExponent is the endurance fatigue exponent used to scale times
// across distances
const RiegelExponent = 1.06

// rangeBasePct is the half-width of the prediction range, in percent, at
// perfect confidence and agreement
var rangeBasePct = map[string]float64{
	"5K":            2.0,
	"10K":           2.5,
	"Half Marathon": 3.5,
	"Marathon":      5.0,
}

// RiegelTime predicts the time at toMeters from a result at fromMeters
func RiegelTime(seconds, fromMeters, toMeters float64) float64 {
	if seconds <= 0 || fromMeters <= 0 || toMeters <= 0 {
		return 0
	}
	return seconds * math.Pow(toMeters/fromMeters, RiegelExponent)
}

// GeneratePredictions predicts every standard distance from a blended VDOT.
// confidence and agreement are 0-1 and widen the range as they drop.
func GeneratePredictions(vdot, formPct, confidence, agreement float64, volume TrainingVolume) []Prediction {
	anchor := TimeForVDOT(vdot, Distance5K)

	predictions := make([]Prediction, 0, len(RaceDistances))
	for _, d := range RaceDistances {
		base := RiegelTime(anchor, Distance5K, d.Meters)
		predicted := base * (1 + formPct/100)
		tapered := base * (1 + TaperBonusPct/100)

		halfPct := rangeHalfPct(d, confidence, agreement)
		readiness, factors, reasons := Readiness(d, volume)

		predictions = append(predictions, Prediction{
			Distance:         d.Name,
			Meters:           d.Meters,
			Miles:            round2(d.Miles()),
			PredictedSeconds: int(math.Round(predicted)),
			TaperedSeconds:   int(math.Round(tapered)),
			PacePerMile:      int(math.Round(predicted / d.Miles())),
			Range: TimeRange{
				Fast: int(math.Floor(predicted * (1 - halfPct/100))),
				Slow: int(math.Ceil(predicted * (1 + halfPct/100))),
			},
			Readiness:         readiness,
			ReadinessFactors:  factors,
			AdjustmentReasons: reasons,
		})
	}
	return predictions
}

func rangeHalfPct(d RaceDistance, confidence, agreement float64) float64 {
	base, ok := rangeBasePct[d.Name]
	if !ok {
		base = 2 + 3*clamp01((d.Meters-Distance5K)/(DistanceMarathon-Distance5K))
	}
	return base * (1 + (1 - clamp01(confidence)) + (1 - clamp01(agreement)))
}
