package engine

import "math"

// VDOT bounds considered physiologically plausible
const (
	MinVDOT     = 15.0
	MaxVDOT     = 85.0
	DefaultVDOT = 40.0
)

// sustainableFraction maps effort duration (minutes) to the fraction of
// maximal aerobic power the conversion divides by. Upper bounds are inclusive.
var sustainableFraction = []struct {
	maxMinutes float64
	fraction   float64
}{
	{3.5, 0.80},
	{7, 0.84},
	{12, 0.88},
	{20, 0.91},
	{30, 0.93},
	{45, 0.95},
	{60, 0.96},
	{90, 0.97},
	{120, 0.975},
}

const longEffortFraction = 0.98

// stepBlendMinutes is the half-width of the ramp the inverse conversion uses
// across each sustainable-fraction step
const stepBlendMinutes = 0.5

// oxygenCost returns the VO2 (ml/kg/min) of running at velocity meters/minute
func oxygenCost(velocity float64) float64 {
	return -4.60 + 0.182258*velocity + 0.000104*velocity*velocity
}

// percentMax returns the sustainable fraction for an effort of the given minutes
func percentMax(minutes float64) float64 {
	for _, step := range sustainableFraction {
		if minutes <= step.maxMinutes {
			return step.fraction
		}
	}
	return longEffortFraction
}

// rampedPercentMax matches percentMax except within stepBlendMinutes of a
// step boundary, where it ramps linearly to the next fraction. It is
// continuous and non-decreasing, so the fitness index it implies falls
// strictly as time grows.
func rampedPercentMax(minutes float64) float64 {
	for i, step := range sustainableFraction {
		next := longEffortFraction
		if i+1 < len(sustainableFraction) {
			next = sustainableFraction[i+1].fraction
		}
		start := step.maxMinutes - stepBlendMinutes
		if minutes < start {
			return step.fraction
		}
		if minutes <= step.maxMinutes+stepBlendMinutes {
			return step.fraction + (next-step.fraction)*(minutes-start)/(2*stepBlendMinutes)
		}
	}
	return longEffortFraction
}

// VDOTFromPerformance derives a fitness index from a performance.
// distanceMeters and timeSeconds must be positive; otherwise 0 is returned.
func VDOTFromPerformance(distanceMeters, timeSeconds float64) float64 {
	if distanceMeters <= 0 || timeSeconds <= 0 {
		return 0
	}

	minutes := timeSeconds / 60
	velocity := distanceMeters / minutes // m/min

	return oxygenCost(velocity) / percentMax(minutes)
}

// TimeForVDOT returns the time at the given distance that a fitness index
// predicts. Away from the sustainable-fraction steps it inverts
// VDOTFromPerformance exactly; across a step it uses rampedPercentMax so every
// index maps to its own time. Uses bisection with a fixed iteration count so
// results are reproducible.
func TimeForVDOT(vdot, distanceMeters float64) float64 {
	if vdot <= 0 || distanceMeters <= 0 {
		return 0
	}

	lo, hi := 1.0, 24*3600.0
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		minutes := mid / 60
		if oxygenCost(distanceMeters/minutes)/rampedPercentMax(minutes) > vdot {
			lo = mid // too fast
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// vdotAtVelocity converts a sustained velocity (m/min) held for the given
// minutes into a fitness index
func vdotAtVelocity(velocity, minutes float64) float64 {
	if velocity <= 0 || minutes <= 0 {
		return 0
	}
	return oxygenCost(velocity) / percentMax(minutes)
}

// VDOTLabel returns a human-readable fitness level for a VDOT value
func VDOTLabel(vdot float64) string {
	switch {
	case vdot >= 75:
		return "Elite"
	case vdot >= 65:
		return "Highly Competitive"
	case vdot >= 55:
		return "Competitive"
	case vdot >= 45:
		return "Advanced Recreational"
	case vdot >= 38:
		return "Intermediate"
	case vdot >= 30:
		return "Beginner"
	default:
		return "Novice"
	}
}

// ClampVDOT bounds a fitness index to the plausible range
func ClampVDOT(vdot float64) float64 {
	if math.IsNaN(vdot) {
		return DefaultVDOT
	}
	return clamp(vdot, MinVDOT, MaxVDOT)
}
