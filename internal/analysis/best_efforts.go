package analysis

import "raceready/internal/engine"

// BestEffort represents the fastest segment of a given distance within an activity
type BestEffort struct {
	DistanceMeters  float64
	DurationSeconds int
	StartOffset     int // time offset in stream where effort starts
	EndOffset       int // time offset in stream where effort ends
	AvgHeartrate    float64
}

const (
	DistanceTolerance  = 0.05 // 5% tolerance for race distance matching
	MinPointsForEffort = 10   // minimum stream points needed
)

// EffortDistances are the segment distances worth extracting from a run.
// Shorter segments are too noisy to stand in for a race effort.
var EffortDistances = []float64{
	engine.Distance5K,
	engine.Distance10K,
	engine.Distance15K,
	engine.DistanceHalfMara,
}

// FindBestEffort finds the fastest segment of targetDistance meters within the stream data.
// Uses a sliding window over the distance samples.
// Returns nil if the activity is shorter than targetDistance or has insufficient data.
func FindBestEffort(streams []StreamPoint, targetDistance float64) *BestEffort {
	if len(streams) < MinPointsForEffort {
		return nil
	}

	// Filter to points with valid distance data
	var points []distPoint
	for _, p := range streams {
		if p.Distance != nil {
			points = append(points, distPoint{
				distance:   *p.Distance,
				timeOffset: p.TimeOffset,
				heartrate:  p.Heartrate,
			})
		}
	}

	if len(points) < MinPointsForEffort {
		return nil
	}

	totalDistance := points[len(points)-1].distance - points[0].distance
	if totalDistance < targetDistance {
		return nil
	}

	var bestEffort *BestEffort
	bestDuration := int(^uint(0) >> 1) // max int

	// Distance is cumulative, so the right edge only ever moves forward
	right := 0
	for left := 0; left < len(points); left++ {
		if right <= left {
			right = left + 1
		}
		for right < len(points) && points[right].distance-points[left].distance < targetDistance {
			right++
		}
		if right >= len(points) {
			break
		}

		duration := points[right].timeOffset - points[left].timeOffset
		if duration <= 0 || duration >= bestDuration {
			continue
		}

		bestDuration = duration
		bestEffort = &BestEffort{
			DistanceMeters:  points[right].distance - points[left].distance,
			DurationSeconds: duration,
			StartOffset:     points[left].timeOffset,
			EndOffset:       points[right].timeOffset,
			AvgHeartrate:    calculateSegmentAvgHR(points, left, right),
		}
	}

	return bestEffort
}

// FindBestEfforts returns the best effort for every distance in EffortDistances
// the stream is long enough to cover
func FindBestEfforts(streams []StreamPoint) []BestEffort {
	var efforts []BestEffort
	for _, d := range EffortDistances {
		if e := FindBestEffort(streams, d); e != nil {
			e.DistanceMeters = d
			efforts = append(efforts, *e)
		}
	}
	return efforts
}

// distPoint is a helper struct for sliding window algorithm
type distPoint struct {
	distance   float64
	timeOffset int
	heartrate  *int
}

// calculateSegmentAvgHR calculates average HR for a segment of points
func calculateSegmentAvgHR(points []distPoint, left, right int) float64 {
	var hrSum float64
	var hrCount int

	for i := left; i <= right; i++ {
		if points[i].heartrate != nil && *points[i].heartrate > 50 {
			hrSum += float64(*points[i].heartrate)
			hrCount++
		}
	}

	if hrCount > 0 {
		return hrSum / float64(hrCount)
	}
	return 0
}

// MatchesRaceDistance checks if an activity's total distance matches a standard race distance
// within the tolerance (±5%)
func MatchesRaceDistance(activityDistance float64, raceDistance float64) bool {
	lowerBound := raceDistance * (1 - DistanceTolerance)
	upperBound := raceDistance * (1 + DistanceTolerance)
	return activityDistance >= lowerBound && activityDistance <= upperBound
}

// MatchRaceDistance returns the standard race distance an activity was most
// likely run at, if any
func MatchRaceDistance(activityDistance float64) (engine.RaceDistance, bool) {
	for _, d := range engine.RaceDistances {
		if MatchesRaceDistance(activityDistance, d.Meters) {
			return d, true
		}
	}
	return engine.RaceDistance{}, false
}
