package analysis

import (
	"testing"

	"raceready/internal/engine"
)

func TestFindBestEffort_BasicCase(t *testing.T) {
	// Create stream data simulating a run with varying pace
	// Simulate 1K run with best segment around meters 200-1200
	streams := make([]StreamPoint, 0)

	// Build stream data: 2000 meters over ~600 seconds (10 min)
	// Make the segment from 200m-1200m (1000m) faster than the rest
	for i := 0; i <= 600; i++ {
		var dist float64
		if i <= 60 {
			// First minute: slow (200m in 60s = 3.33 m/s)
			dist = float64(i) * 3.33
		} else if i <= 360 {
			// Next 5 min: fast (1000m in 300s = 3.33 m/s but we'll make it faster)
			// Actually from 60s to 360s (300s), cover 1000m at 3.7 m/s
			dist = 200 + float64(i-60)*3.7
		} else {
			// Last 4 min: slow again
			dist = 1310 + float64(i-360)*2.5
		}

		d := dist
		streams = append(streams, StreamPoint{
			TimeOffset: i,
			Distance:   &d,
		})
	}

	// Find best 1K effort
	effort := FindBestEffort(streams, 1000)

	if effort == nil {
		t.Fatal("Expected to find a best effort, got nil")
	}

	// The best 1K should be somewhere in the fast section
	if effort.DurationSeconds < 200 || effort.DurationSeconds > 350 {
		t.Errorf("Expected duration around 270s (1000m at 3.7 m/s), got %d", effort.DurationSeconds)
	}

	if effort.DistanceMeters < 1000 {
		t.Errorf("Expected distance >= 1000m, got %.2f", effort.DistanceMeters)
	}
}

func TestFindBestEffort_TooShort(t *testing.T) {
	// Activity shorter than target distance
	streams := make([]StreamPoint, 0)

	for i := 0; i <= 60; i++ {
		d := float64(i) * 5 // Only 300m total
		streams = append(streams, StreamPoint{
			TimeOffset: i,
			Distance:   &d,
		})
	}

	effort := FindBestEffort(streams, 1000) // Looking for 1K

	if effort != nil {
		t.Error("Expected nil for activity shorter than target distance")
	}
}

func TestFindBestEffort_EmptyStreams(t *testing.T) {
	effort := FindBestEffort([]StreamPoint{}, 1000)
	if effort != nil {
		t.Error("Expected nil for empty streams")
	}
}

func TestFindBestEffort_InsufficientPoints(t *testing.T) {
	streams := make([]StreamPoint, 5)
	for i := range streams {
		d := float64(i) * 100
		streams[i] = StreamPoint{
			TimeOffset: i,
			Distance:   &d,
		}
	}

	effort := FindBestEffort(streams, 400)
	if effort != nil {
		t.Error("Expected nil for insufficient points")
	}
}

func TestFindBestEffort_NoDistanceData(t *testing.T) {
	streams := make([]StreamPoint, 100)
	for i := range streams {
		streams[i] = StreamPoint{
			TimeOffset: i,
			// Distance is nil
		}
	}

	effort := FindBestEffort(streams, 400)
	if effort != nil {
		t.Error("Expected nil when no distance data available")
	}
}

func TestFindBestEffort_WithHeartrate(t *testing.T) {
	streams := make([]StreamPoint, 0)

	// Simulate 1K run with HR data
	for i := 0; i <= 300; i++ {
		d := float64(i) * 4.0 // 1200m in 300s
		hr := 150 + (i / 10)  // HR increases over time

		streams = append(streams, StreamPoint{
			TimeOffset: i,
			Distance:   &d,
			Heartrate:  &hr,
		})
	}

	effort := FindBestEffort(streams, 1000)

	if effort == nil {
		t.Fatal("Expected to find a best effort, got nil")
	}

	if effort.AvgHeartrate <= 0 {
		t.Error("Expected positive average heartrate")
	}

	// HR should be in reasonable range given our test data
	if effort.AvgHeartrate < 150 || effort.AvgHeartrate > 180 {
		t.Errorf("Average HR %.1f outside expected range", effort.AvgHeartrate)
	}
}

func TestFindBestEffort_ReturnsOffsets(t *testing.T) {
	streams := make([]StreamPoint, 0)

	for i := 0; i <= 200; i++ {
		d := float64(i) * 5.0 // 1000m in 200s
		streams = append(streams, StreamPoint{
			TimeOffset: i,
			Distance:   &d,
		})
	}

	effort := FindBestEffort(streams, 400)

	if effort == nil {
		t.Fatal("Expected to find a best effort")
	}

	if effort.StartOffset < 0 {
		t.Error("StartOffset should be non-negative")
	}

	if effort.EndOffset <= effort.StartOffset {
		t.Error("EndOffset should be greater than StartOffset")
	}
}

func TestMatchesRaceDistance(t *testing.T) {
	tests := []struct {
		activity float64
		race     float64
		expected bool
	}{
		{5000, engine.Distance5K, true},        // Exact match
		{5100, engine.Distance5K, true},        // Within +2%
		{4900, engine.Distance5K, true},        // Within -2%
		{5300, engine.Distance5K, false},       // > +5%
		{4700, engine.Distance5K, false},       // < -5%
		{42195, engine.DistanceMarathon, true}, // Marathon exact
		{42000, engine.DistanceMarathon, true}, // Marathon within tolerance
		{1609, engine.Distance1Mile, true},     // Mile exact
		{1650, engine.Distance1Mile, true},     // Mile +2.5%
	}

	for _, tc := range tests {
		result := MatchesRaceDistance(tc.activity, tc.race)
		if result != tc.expected {
			t.Errorf("MatchesRaceDistance(%.0f, %.0f) = %v, expected %v",
				tc.activity, tc.race, result, tc.expected)
		}
	}
}

func TestMatchRaceDistance(t *testing.T) {
	tests := []struct {
		distance      float64
		expectedName  string
		expectedMatch bool
	}{
		{5000, "5K", true},
		{5100, "5K", true},
		{10000, "10K", true},
		{21300, "Half Marathon", true},
		{42195, "Marathon", true},
		{7500, "", false}, // Not a standard distance
		{1609, "", false}, // Mile is not a prediction target
	}

	for _, tc := range tests {
		d, matches := MatchRaceDistance(tc.distance)
		if matches != tc.expectedMatch {
			t.Errorf("MatchRaceDistance(%.0f): expected match=%v, got match=%v",
				tc.distance, tc.expectedMatch, matches)
		}
		if matches && d.Name != tc.expectedName {
			t.Errorf("MatchRaceDistance(%.0f): expected %s, got %s",
				tc.distance, tc.expectedName, d.Name)
		}
	}
}

func TestFindBestEfforts(t *testing.T) {
	// ~11km at 3.8 m/s with a faster 5K block in the middle
	streams := make([]StreamPoint, 0)
	dist := 0.0
	for i := 0; i <= 2700; i++ {
		d := dist
		streams = append(streams, StreamPoint{TimeOffset: i, Distance: &d})
		if i >= 600 && i < 1700 {
			dist += 4.6
		} else {
			dist += 3.8
		}
	}

	efforts := FindBestEfforts(streams)
	if len(efforts) != 2 {
		t.Fatalf("Expected 5K and 10K efforts, got %d", len(efforts))
	}

	if efforts[0].DistanceMeters != engine.Distance5K || efforts[1].DistanceMeters != engine.Distance10K {
		t.Errorf("Unexpected effort distances %.0f, %.0f", efforts[0].DistanceMeters, efforts[1].DistanceMeters)
	}

	// 5000m at 4.6 m/s is ~1087s
	if efforts[0].DurationSeconds < 1080 || efforts[0].DurationSeconds > 1095 {
		t.Errorf("Expected 5K around 1087s, got %d", efforts[0].DurationSeconds)
	}
}
