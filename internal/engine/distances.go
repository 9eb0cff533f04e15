package engine

import (
	"math"
	"time"
)

// Standard distances in meters
const (
	Distance1K       = 1000
	Distance1Mile    = 1609.34
	Distance5K       = 5000
	Distance10K      = 10000
	Distance15K      = 15000
	DistanceHalfMara = 21097.5
	DistanceMarathon = 42195
)

// RaceDistance is one of the standard prediction targets
type RaceDistance struct {
	Name   string // "5K", "10K", "Half Marathon", "Marathon"
	Meters float64
}

// RaceDistances defines the prediction targets, shortest first
var RaceDistances = []RaceDistance{
	{"5K", Distance5K},
	{"10K", Distance10K},
	{"Half Marathon", DistanceHalfMara},
	{"Marathon", DistanceMarathon},
}

// Miles converts meters to miles
func (d RaceDistance) Miles() float64 {
	return d.Meters / Distance1Mile
}

// PacePerMile calculates pace in seconds per mile
func PacePerMile(distanceMeters, seconds float64) float64 {
	if distanceMeters <= 0 || seconds <= 0 {
		return 0
	}
	return seconds / (distanceMeters / Distance1Mile)
}

// daysBefore returns whole days from date to asOf; negative when date is after asOf
func daysBefore(asOf, date time.Time) int {
	return int(math.Floor(asOf.Sub(date).Hours() / 24))
}

// inWindow reports whether date falls within the look-back window ending at asOf
func inWindow(asOf, date time.Time, days int) bool {
	age := asOf.Sub(date)
	return age >= 0 && age <= time.Duration(days)*24*time.Hour
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func intPtr(i int) *int {
	return &i
}
