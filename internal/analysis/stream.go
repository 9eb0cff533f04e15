package analysis

// StreamPoint is a single sample from a recorded activity
type StreamPoint struct {
	TimeOffset     int      // seconds from start
	Altitude       *float64 // meters
	VelocitySmooth *float64 // m/s
	Heartrate      *int     // bpm
	Cadence        *int     // spm
	GradeSmooth    *float64 // percent
	Distance       *float64 // cumulative meters
	Temperature    *float64 // celsius
}
