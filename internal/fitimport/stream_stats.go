package fitimport

import "raceready/internal/analysis"

const (
	minValidHeartrate = 50
	maxValidHeartrate = 220
)

// StreamStats holds aggregates used when the session message omits a value
type StreamStats struct {
	HRSum         float64
	HRCount       int
	MaxHR         int
	TempSum       float64
	TempCount     int
	ElapsedTime   int     // seconds from first to last sample
	TotalDistance float64 // meters
}

// AggregateStreamStats calculates HR, temperature and distance stats from streams
func AggregateStreamStats(streams []analysis.StreamPoint) StreamStats {
	var stats StreamStats
	for _, p := range streams {
		if isValidHeartrate(p.Heartrate) {
			stats.HRSum += float64(*p.Heartrate)
			stats.HRCount++
			if *p.Heartrate > stats.MaxHR {
				stats.MaxHR = *p.Heartrate
			}
		}
		if p.Temperature != nil {
			stats.TempSum += *p.Temperature
			stats.TempCount++
		}
	}
	if len(streams) > 1 {
		stats.ElapsedTime = streams[len(streams)-1].TimeOffset - streams[0].TimeOffset
	}
	// Get total distance from last point with distance data
	for i := len(streams) - 1; i >= 0; i-- {
		if streams[i].Distance != nil {
			stats.TotalDistance = *streams[i].Distance
			break
		}
	}
	return stats
}

// AvgHR returns the average heart rate, or 0 if no valid readings
func (s StreamStats) AvgHR() float64 {
	if s.HRCount == 0 {
		return 0
	}
	return s.HRSum / float64(s.HRCount)
}

// AvgTempC returns the average temperature, or 0 if none was recorded
func (s StreamStats) AvgTempC() float64 {
	if s.TempCount == 0 {
		return 0
	}
	return s.TempSum / float64(s.TempCount)
}

// isValidHeartrate checks if HR is in valid range
func isValidHeartrate(hr *int) bool {
	return hr != nil && *hr > minValidHeartrate && *hr < maxValidHeartrate
}
