package analysis

const (
	minMovingSpeed = 0.5 // m/s
	minEFHeartrate = 80
	maxEFHeartrate = 220

	// Each percent of grade costs roughly 3% extra effort.
	gradeEffortFactor = 3.0
	minGradeFactor    = 0.5
	maxGradeFactor    = 3.0
)

// EfficiencyFactor is grade-adjusted speed (m/min) over heart rate across
// the moving samples of a run. Samples without grade count as flat, so a
// flat run gives the plain pace:HR efficiency factor. Typical values are
// 1.0 to 2.0; 0 means no usable samples.
func EfficiencyFactor(points []StreamPoint) float64 {
	var speedSum, hrSum float64
	var n int

	for _, p := range points {
		if p.VelocitySmooth == nil || p.Heartrate == nil {
			continue
		}
		speed, hr := *p.VelocitySmooth, float64(*p.Heartrate)
		if speed <= minMovingSpeed || hr <= minEFHeartrate || hr >= maxEFHeartrate {
			continue
		}

		speedSum += speed / gradeFactor(p.GradeSmooth)
		hrSum += hr
		n++
	}

	if n == 0 {
		return 0
	}
	return (speedSum / float64(n) * 60) / (hrSum / float64(n))
}

// gradeFactor scales effort by grade (percent); climbs cost more, descents
// less, within limits
func gradeFactor(gradePct *float64) float64 {
	if gradePct == nil {
		return 1
	}
	f := 1 + *gradePct/100*gradeEffortFactor
	if f < minGradeFactor {
		return minGradeFactor
	}
	if f > maxGradeFactor {
		return maxGradeFactor
	}
	return f
}
