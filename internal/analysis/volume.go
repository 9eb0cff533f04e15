package analysis

import (
	"strings"
	"time"

	"raceready/internal/engine"
)

const (
	volumeWindowWeeks      = 4
	longRunWindowDays      = 42
	minWeeklyMiles         = 5.0
	maxConsistencyLookback = 104 // weeks
)

// qualityTypes are workout labels that count as quality sessions
var qualityTypes = map[string]bool{
	"tempo":      true,
	"threshold":  true,
	"interval":   true,
	"intervals":  true,
	"track":      true,
	"fartlek":    true,
	"hills":      true,
	"race":       true,
	"time_trial": true,
}

// IsQualityType reports whether a workout label is a quality session
func IsQualityType(workoutType string) bool {
	return qualityTypes[strings.ToLower(strings.TrimSpace(workoutType))]
}

// SummarizeVolume condenses recent training into the readiness inputs. Weeks
// are rolling 7-day blocks ending at asOf.
func SummarizeVolume(workouts []engine.WorkoutSignalInput, asOf time.Time) engine.TrainingVolume {
	var v engine.TrainingVolume
	weekly := make(map[int]float64)
	runs := make(map[int]int)
	quality := 0

	for _, w := range workouts {
		age := asOf.Sub(w.Date)
		if age < 0 {
			continue
		}
		days := int(age.Hours() / 24)
		week := days / 7

		weekly[week] += w.DistanceMiles
		runs[week]++

		if days < volumeWindowWeeks*7 {
			v.AvgWeeklyMiles4Weeks += w.DistanceMiles
			if IsQualityType(w.WorkoutType) {
				quality++
			}
		}
		if days < longRunWindowDays && w.DistanceMiles > v.LongestRecentRunMiles {
			v.LongestRecentRunMiles = w.DistanceMiles
		}
	}

	v.AvgWeeklyMiles4Weeks /= volumeWindowWeeks
	v.QualitySessionsPerWeek = float64(quality) / volumeWindowWeeks

	for week := 0; week < maxConsistencyLookback; week++ {
		if runs[week] == 0 || weekly[week] < minWeeklyMiles {
			break
		}
		v.WeeksConsecutiveTraining++
	}

	return v
}
