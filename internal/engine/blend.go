package engine

import (
	"fmt"
	"math"
)

const (
	dampenThreshold = 4.0 // VDOT points from the pass-1 mean
	agreementScale  = 3.0
	rangeStdDevs    = 1.5
	minRangeHalf    = 0.5
	fallbackSpread  = 3.0
)

// Blend is the fused fitness estimate
type Blend struct {
	VDOT       float64
	Range      VDOTRange
	Agreement  float64
	Confidence float64 // 0-1, weighted signal confidence scaled by agreement
	Details    string
	Estimates  int // estimate signals that contributed
	Fallback   bool
}

// BlendSignals fuses estimate signals with a two-pass weighted mean and then
// applies modifier signals as additive adjustments. With no estimate signals
// it falls back to saved (when plausible) or DefaultVDOT.
func BlendSignals(signals []Signal, saved *float64) Blend {
	var estimates, modifiers []Signal
	for _, s := range signals {
		if s.Kind == KindModifier {
			modifiers = append(modifiers, s)
			continue
		}
		estimates = append(estimates, s)
	}

	if len(estimates) == 0 {
		return fallbackBlend(saved)
	}

	weights := make([]float64, len(estimates))
	for i, s := range estimates {
		weights[i] = s.Weight * s.Confidence
	}
	first := weightedMean(estimates, weights)

	// Pass 2: shrink the influence of estimates far from the consensus.
	damped := make([]float64, len(estimates))
	for i, s := range estimates {
		damped[i] = weights[i]
		if dev := math.Abs(s.EstimatedVDOT - first); dev > dampenThreshold {
			damped[i] *= (dampenThreshold / dev) * (dampenThreshold / dev)
		}
	}
	vdot := weightedMean(estimates, damped)

	for _, m := range modifiers {
		if m.Confidence > EFModifierMinConfidence {
			vdot += m.EstimatedVDOT * m.Weight
		}
	}
	vdot = ClampVDOT(vdot)

	var ss float64
	for _, s := range estimates {
		d := s.EstimatedVDOT - vdot
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(estimates)))

	agreement := 1 / (1 + (sd/agreementScale)*(sd/agreementScale))
	half := math.Max(rangeStdDevs*sd, minRangeHalf)

	var sumW, sumWC float64
	for i, s := range estimates {
		sumW += damped[i]
		sumWC += damped[i] * s.Confidence
	}
	conf := 0.0
	if sumW > 0 {
		conf = sumWC / sumW
	}

	return Blend{
		VDOT:       vdot,
		Range:      VDOTRange{Low: ClampVDOT(vdot - half), High: ClampVDOT(vdot + half)},
		Agreement:  agreement,
		Confidence: clamp01(conf * (0.5 + 0.5*agreement)),
		Details:    agreementDetails(len(estimates), sd),
		Estimates:  len(estimates),
	}
}

// weightedMean falls back to the plain mean when every weight is zero
func weightedMean(signals []Signal, weights []float64) float64 {
	var sumW, sumWV float64
	for i, s := range signals {
		sumW += weights[i]
		sumWV += weights[i] * s.EstimatedVDOT
	}
	if sumW > 0 {
		return sumWV / sumW
	}

	values := make([]float64, len(signals))
	for i, s := range signals {
		values[i] = s.EstimatedVDOT
	}
	return mean(values)
}

func fallbackBlend(saved *float64) Blend {
	vdot := DefaultVDOT
	details := "No fitness signals; using default fitness"
	if saved != nil && *saved >= MinVDOT && *saved <= MaxVDOT {
		vdot = *saved
		details = "No fitness signals; using saved fitness"
	}
	return Blend{
		VDOT:     vdot,
		Range:    VDOTRange{Low: ClampVDOT(vdot - fallbackSpread), High: ClampVDOT(vdot + fallbackSpread)},
		Details:  details,
		Fallback: true,
	}
}

func agreementDetails(n int, sd float64) string {
	if n == 1 {
		return "Single signal; agreement not measurable"
	}
	switch {
	case sd <= 1.5:
		return fmt.Sprintf("%d signals agree closely (±%.1f)", n, sd)
	case sd <= 3:
		return fmt.Sprintf("%d signals broadly agree (±%.1f)", n, sd)
	default:
		return fmt.Sprintf("%d signals disagree (±%.1f)", n, sd)
	}
}
