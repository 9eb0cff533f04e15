package analysis

import (
	"math"
	"sort"
	"strings"
	"time"

	"raceready/internal/engine"
)

// HRZones represents athlete's heart rate anchors for TRIMP
type HRZones struct {
	RestingHR float64
	MaxHR     float64
	Female    bool
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR: 50,
		MaxHR:     185,
	}
}

// ZonesFor builds zones from athlete physiology, falling back to defaults
// for missing values
func ZonesFor(p engine.UserPhysiology) HRZones {
	z := DefaultZones()
	if p.RestingHR > 0 {
		z.RestingHR = p.RestingHR
	}
	if p.MaxHR > 0 {
		z.MaxHR = p.MaxHR
	}
	g := strings.ToLower(p.Gender)
	z.Female = g == "f" || g == "female"
	return z
}

// trimpCoefficient is Banister's b: 1.92 for men, 1.67 for women
func (z HRZones) trimpCoefficient() float64 {
	if z.Female {
		return 1.67
	}
	return 1.92
}

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ΔHR ratio * e^(b * ΔHR ratio)
func TRIMP(durationMinutes, avgHR float64, zones HRZones) float64 {
	if durationMinutes <= 0 || avgHR <= 0 {
		return 0
	}

	hrReserve := zones.MaxHR - zones.RestingHR
	if hrReserve <= 0 {
		return 0
	}

	hrRatio := (avgHR - zones.RestingHR) / hrReserve
	if hrRatio < 0 {
		hrRatio = 0
	}
	if hrRatio > 1 {
		hrRatio = 1
	}

	return durationMinutes * hrRatio * math.Exp(zones.trimpCoefficient()*hrRatio)
}

// typeIntensity is the assumed HR reserve fraction for runs without heart
// rate, by workout type
var typeIntensity = map[string]float64{
	"recovery":   0.50,
	"easy":       0.60,
	"long":       0.65,
	"long_run":   0.65,
	"steady":     0.68,
	"tempo":      0.80,
	"threshold":  0.85,
	"interval":   0.88,
	"intervals":  0.88,
	"race":       0.92,
	"time_trial": 0.92,
}

const defaultIntensity = 0.62

// WorkoutTRIMP scores a workout, estimating intensity from its type when
// there is no heart rate
func WorkoutTRIMP(w engine.WorkoutSignalInput, zones HRZones) float64 {
	if w.AvgHR > 0 {
		return TRIMP(w.DurationMinutes, w.AvgHR, zones)
	}

	intensity, ok := typeIntensity[strings.ToLower(strings.ReplaceAll(w.WorkoutType, " ", "_"))]
	if !ok {
		intensity = defaultIntensity
	}
	hr := zones.RestingHR + intensity*(zones.MaxHR-zones.RestingHR)
	return TRIMP(w.DurationMinutes, hr, zones)
}

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date  time.Time
	TRIMP float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// State returns the engine's view of the metrics
func (m FitnessMetrics) State() engine.FitnessState {
	return engine.FitnessState{CTL: m.CTL, ATL: m.ATL, TSB: m.TSB}
}

// EMA decay constants
var (
	ctlDecay = 2.0 / (42.0 + 1.0) // 42-day time constant
	atlDecay = 2.0 / (7.0 + 1.0)  // 7-day time constant
)

const dayKey = "2006-01-02"

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads, one entry per
// calendar day from the first load through the last
func CalculateFitnessTrend(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	loads := append([]DailyLoad(nil), dailyLoads...)
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	startDate := truncateDay(loads[0].Date)
	endDate := truncateDay(loads[len(loads)-1].Date)

	loadMap := make(map[string]float64)
	for _, dl := range loads {
		loadMap[dl.Date.Format(dayKey)] += dl.TRIMP // Sum multiple activities on same day
	}

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		trimp := loadMap[d.Format(dayKey)] // 0 if no activity

		ctl = ctl + ctlDecay*(trimp-ctl)
		atl = atl + atlDecay*(trimp-atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// LoadModel is a Banister impulse-response model over a workout history
type LoadModel struct {
	trend []FitnessMetrics
	byDay map[string]int
}

// NewLoadModel scores every workout and builds the daily CTL/ATL/TSB series
func NewLoadModel(workouts []engine.WorkoutSignalInput, zones HRZones) *LoadModel {
	loads := make([]DailyLoad, 0, len(workouts))
	for _, w := range workouts {
		loads = append(loads, DailyLoad{Date: w.Date, TRIMP: WorkoutTRIMP(w, zones)})
	}

	m := &LoadModel{
		trend: CalculateFitnessTrend(loads),
		byDay: make(map[string]int),
	}
	for i, fm := range m.trend {
		m.byDay[fm.Date.Format(dayKey)] = i
	}
	return m
}

// StateOn returns the fitness state at the end of the given day. Days after
// the last workout decay toward zero load; days before the first are empty.
func (m *LoadModel) StateOn(date time.Time) engine.FitnessState {
	if len(m.trend) == 0 {
		return engine.FitnessState{}
	}

	day := truncateDay(date)
	if i, ok := m.byDay[day.Format(dayKey)]; ok {
		return m.trend[i].State()
	}

	first, last := m.trend[0], m.trend[len(m.trend)-1]
	if day.Before(first.Date) {
		return engine.FitnessState{}
	}

	idle := float64(daysBetween(last.Date, day))
	ctl := last.CTL * math.Pow(1-ctlDecay, idle)
	atl := last.ATL * math.Pow(1-atlDecay, idle)
	return engine.FitnessState{CTL: ctl, ATL: atl, TSB: ctl - atl}
}

// Trend returns the daily series, oldest first
func (m *LoadModel) Trend() []FitnessMetrics {
	return m.trend
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(truncateDay(to).Sub(truncateDay(from)).Hours() / 24))
}
