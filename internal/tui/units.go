package tui

import (
	"fmt"

	"raceready/internal/config"
)

const (
	metersPerMile = 1609.344
	metersPerKm   = 1000.0
)

// Units formats engine output in the athlete's preferred units
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit != "km"
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// FormatPace converts a per-mile pace to the user's pace unit
func (u Units) FormatPace(secondsPerMile int) string {
	if secondsPerMile <= 0 {
		return "-"
	}
	pace := float64(secondsPerMile)
	if u.cfg.PaceUnit == "min/km" {
		pace = pace * metersPerKm / metersPerMile
	}
	total := int(pace + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatPaceWithUnit formats pace with the unit label
func (u Units) FormatPaceWithUnit(secondsPerMile int) string {
	pace := u.FormatPace(secondsPerMile)
	if pace == "-" {
		return pace
	}
	return pace + "/" + u.paceDistanceLabel()
}

// PaceLabel returns the pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	return "min/" + u.paceDistanceLabel()
}

func (u Units) paceDistanceLabel() string {
	if u.cfg.PaceUnit == "min/km" {
		return "km"
	}
	return "mi"
}

// FormatRaceTime renders h:mm:ss, or m:ss under an hour
func FormatRaceTime(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
