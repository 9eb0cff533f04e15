package engine

import "time"

// PerformanceSource identifies where a performance record came from
type PerformanceSource string

const (
	SourceRace           PerformanceSource = "race"
	SourceTimeTrial      PerformanceSource = "time_trial"
	SourceWorkoutSegment PerformanceSource = "workout_segment"
)

// Effort levels recorded against races
const (
	EffortAllOut = "all_out"
	EffortHard   = "hard"
)

// UserPhysiology holds the athlete values used by the HR-based signal
type UserPhysiology struct {
	RestingHR float64 `json:"resting_hr"`
	MaxHR     float64 `json:"max_hr"`
	Age       int     `json:"age"`
	Gender    string  `json:"gender"`
}

// PerformanceRecord is a race or best-effort result
type PerformanceRecord struct {
	Date               time.Time         `json:"date"`
	DistanceMeters     float64           `json:"distance_meters"`
	TimeSeconds        float64           `json:"time_seconds"`
	Source             PerformanceSource `json:"source"`
	EffortLevel        string            `json:"effort_level,omitempty"`
	WeatherTempF       *float64          `json:"weather_temp_f,omitempty"`
	WeatherHumidityPct *float64          `json:"weather_humidity_pct,omitempty"`
	ElevationGainFt    *float64          `json:"elevation_gain_ft,omitempty"`
	WorkoutID          string            `json:"workout_id,omitempty"`
}

// WorkoutSignalInput is the summary of a single training run
type WorkoutSignalInput struct {
	Date               time.Time `json:"date"`
	DistanceMiles      float64   `json:"distance_miles"`
	DurationMinutes    float64   `json:"duration_minutes"`
	AvgPaceSeconds     float64   `json:"avg_pace_seconds"` // seconds per mile
	AvgHR              float64   `json:"avg_hr"`
	MaxHR              float64   `json:"max_hr"`
	ElevationGainFt    float64   `json:"elevation_gain_ft"`
	WeatherTempF       *float64  `json:"weather_temp_f,omitempty"`
	WeatherHumidityPct *float64  `json:"weather_humidity_pct,omitempty"`
	WorkoutType        string    `json:"workout_type"`
	TSB                *float64  `json:"tsb,omitempty"` // training stress balance on the day, if known
}

// FitnessState is the CTL/ATL/TSB triple produced by the fitness-load model
type FitnessState struct {
	CTL float64 `json:"ctl"` // Chronic Training Load - "Fitness"
	ATL float64 `json:"atl"` // Acute Training Load - "Fatigue"
	TSB float64 `json:"tsb"` // Training Stress Balance - "Form"
}

// TrainingVolume summarizes recent training for readiness scoring
type TrainingVolume struct {
	AvgWeeklyMiles4Weeks     float64 `json:"avg_weekly_miles_4_weeks"`
	LongestRecentRunMiles    float64 `json:"longest_recent_run_miles"`
	WeeksConsecutiveTraining int     `json:"weeks_consecutive_training"`
	QualitySessionsPerWeek   float64 `json:"quality_sessions_per_week"`
}

// Input is the complete, immutable snapshot the engine evaluates
type Input struct {
	Physiology  UserPhysiology       `json:"physiology"`
	Workouts    []WorkoutSignalInput `json:"workouts"`
	Races       []PerformanceRecord  `json:"races"`
	BestEfforts []PerformanceRecord  `json:"best_efforts"`
	Fitness     FitnessState         `json:"fitness"`
	Volume      TrainingVolume       `json:"volume"`
	SavedVDOT   *float64             `json:"saved_vdot,omitempty"`
	AsOf        time.Time            `json:"as_of"` // zero means "now"
}

// SignalKind separates standalone estimates from adjustments to the blend
type SignalKind string

const (
	KindEstimate SignalKind = "estimate"
	KindModifier SignalKind = "modifier"
)

// Signal is one extractor's opinion of current fitness.
// For modifier signals EstimatedVDOT carries the additive delta.
type Signal struct {
	Name          string     `json:"name"`
	Kind          SignalKind `json:"kind"`
	Weight        float64    `json:"weight"`
	EstimatedVDOT float64    `json:"estimated_vdot"`
	Confidence    float64    `json:"confidence"`
	DataPoints    int        `json:"data_points"`
	RecencyDays   *int       `json:"recency_days,omitempty"`
	Description   string     `json:"description"`
}

// TimeRange is a fast/slow bound on a predicted time, in seconds
type TimeRange struct {
	Fast int `json:"fast"`
	Slow int `json:"slow"`
}

// ReadinessFactors are the components of the readiness score, each 0-1
type ReadinessFactors struct {
	Volume      float64 `json:"volume"`
	LongRun     float64 `json:"long_run"`
	Consistency float64 `json:"consistency"`
}

// Prediction is a predicted race time for one standard distance
type Prediction struct {
	Distance          string           `json:"distance"`
	Meters            float64          `json:"meters"`
	Miles             float64          `json:"miles"`
	PredictedSeconds  int              `json:"predicted_seconds"`
	TaperedSeconds    int              `json:"tapered_seconds"`
	PacePerMile       int              `json:"pace_per_mile"`
	Range             TimeRange        `json:"range"`
	Readiness         float64          `json:"readiness"`
	ReadinessFactors  ReadinessFactors `json:"readiness_factors"`
	AdjustmentReasons []string         `json:"adjustment_reasons"`
}

// VDOTRange is the uncertainty band around the blended VDOT
type VDOTRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DataQuality flags describe what evidence the result rests on
type DataQuality struct {
	HasHR         bool `json:"has_hr"`
	HasRaces      bool `json:"has_races"`
	HasRecentData bool `json:"has_recent_data"`
	SignalsUsed   int  `json:"signals_used"`
}

// Confidence labels
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Result is the full engine output
type Result struct {
	AsOf              time.Time    `json:"as_of"`
	VDOT              float64      `json:"vdot"`
	VDOTLabel         string       `json:"vdot_label"`
	VDOTRange         VDOTRange    `json:"vdot_range"`
	Confidence        string       `json:"confidence"`
	AgreementScore    float64      `json:"agreement_score"`
	AgreementDetails  string       `json:"agreement_details"`
	Signals           []Signal     `json:"signals"`
	Predictions       []Prediction `json:"predictions"`
	FormAdjustmentPct float64      `json:"form_adjustment_pct"`
	FormDescription   string       `json:"form_description"`
	DataQuality       DataQuality  `json:"data_quality"`
}
