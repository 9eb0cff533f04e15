// Package fitimport turns a recorded FIT activity into a run summary and a
// stream the analysis package can search for best efforts.
package fitimport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"

	"raceready/internal/analysis"
)

var (
	// ErrNoSession is returned for activity files without a session message
	ErrNoSession = errors.New("activity file has no session message")
	// ErrNotRunning is returned when the session sport is not running
	ErrNotRunning = errors.New("activity is not a run")
)

const (
	metersToFeet = 3.28084

	// FIT running cadence counts one foot
	cadenceMultiplier = 2
)

// Activity is the decoded content of one FIT file
type Activity struct {
	ExternalID      string // content hash, stable across re-imports
	Sport           string
	StartTime       time.Time
	DistanceMeters  float64
	DurationSeconds float64
	AvgHR           *float64
	MaxHR           *float64
	AscentFt        float64
	TempF           *float64
	Streams         []analysis.StreamPoint
}

// DecodeFile reads and decodes the FIT file at path
func DecodeFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a FIT activity. Non-running sessions are rejected with
// ErrNotRunning; generic sessions are accepted.
func Decode(r io.Reader) (*Activity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading FIT data: %w", err)
	}

	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, ErrNoSession
	}

	session := activity.Sessions[0]
	if session.Sport != fit.SportRunning && session.Sport != fit.SportGeneric && session.Sport != fit.SportInvalid {
		return nil, fmt.Errorf("%w: sport %v", ErrNotRunning, session.Sport)
	}

	sum := sha256.Sum256(data)
	a := &Activity{
		ExternalID: "fit-" + hex.EncodeToString(sum[:12]),
		Sport:      fmt.Sprint(session.Sport),
		StartTime:  validTimeOrZero(session.StartTime),
	}

	if a.StartTime.IsZero() {
		for _, rec := range activity.Records {
			if t := validTimeOrZero(rec.Timestamp); !t.IsZero() {
				a.StartTime = t
				break
			}
		}
	}
	if a.StartTime.IsZero() {
		return nil, errors.New("activity has no start time")
	}

	a.Streams = buildStreams(activity.Records, a.StartTime)
	stats := AggregateStreamStats(a.Streams)

	a.DurationSeconds = safePositive(session.GetTotalTimerTimeScaled())
	if a.DurationSeconds == 0 {
		a.DurationSeconds = float64(stats.ElapsedTime)
	}
	a.DistanceMeters = safePositive(session.GetTotalDistanceScaled())
	if a.DistanceMeters == 0 {
		a.DistanceMeters = stats.TotalDistance
	}

	if hr := safeU8(session.AvgHeartRate); hr > 0 {
		a.AvgHR = float64Ptr(float64(hr))
	} else if stats.HRCount > 0 {
		a.AvgHR = float64Ptr(stats.AvgHR())
	}
	if hr := safeU8(session.MaxHeartRate); hr > 0 {
		a.MaxHR = float64Ptr(float64(hr))
	} else if stats.MaxHR > 0 {
		a.MaxHR = float64Ptr(float64(stats.MaxHR))
	}

	if ascent := safeU16(session.TotalAscent); ascent > 0 {
		a.AscentFt = float64(ascent) * metersToFeet
	}

	if session.AvgTemperature != math.MaxInt8 {
		a.TempF = float64Ptr(celsiusToFahrenheit(float64(session.AvgTemperature)))
	} else if stats.TempCount > 0 {
		a.TempF = float64Ptr(celsiusToFahrenheit(stats.AvgTempC()))
	}

	return a, nil
}

// EfficiencyFactor returns the stream EF, or nil without paired HR and speed
func (a *Activity) EfficiencyFactor() *float64 {
	ef := analysis.EfficiencyFactor(a.Streams)
	if ef <= 0 {
		return nil
	}
	return &ef
}

// BestEfforts returns the fastest segments at each effort distance
func (a *Activity) BestEfforts() []analysis.BestEffort {
	return analysis.FindBestEfforts(a.Streams)
}

func buildStreams(records []*fit.RecordMsg, start time.Time) []analysis.StreamPoint {
	points := make([]analysis.StreamPoint, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}

		p := analysis.StreamPoint{TimeOffset: int(ts.Sub(start).Seconds())}

		if d := rec.GetDistanceScaled(); isFinite(d) && d >= 0 {
			p.Distance = float64Ptr(d)
		}
		if v, ok := extractSpeed(rec); ok {
			p.VelocitySmooth = float64Ptr(v)
		}
		if alt, ok := extractAltitude(rec); ok {
			p.Altitude = float64Ptr(alt)
		}
		if rec.HeartRate != math.MaxUint8 && rec.HeartRate > 0 {
			hr := int(rec.HeartRate)
			p.Heartrate = &hr
		}
		if rec.Cadence != math.MaxUint8 && rec.Cadence > 0 {
			cad := int(rec.Cadence) * cadenceMultiplier
			p.Cadence = &cad
		}
		if rec.Temperature != math.MaxInt8 {
			temp := float64(rec.Temperature)
			p.Temperature = &temp
		}

		points = append(points, p)
	}

	fillGrades(points)
	return points
}

// fillGrades derives percent grade between consecutive samples that carry
// both altitude and distance
func fillGrades(points []analysis.StreamPoint) {
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if prev.Altitude == nil || cur.Altitude == nil || prev.Distance == nil || cur.Distance == nil {
			continue
		}
		run := *cur.Distance - *prev.Distance
		if run <= 0 {
			continue
		}
		points[i].GradeSmooth = float64Ptr((*cur.Altitude - *prev.Altitude) / run * 100)
	}
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func extractAltitude(rec *fit.RecordMsg) (float64, bool) {
	alt := rec.GetEnhancedAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	alt = rec.GetAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	return 0, false
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t.UTC()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

func safeU16(v uint16) uint16 {
	if v == ^uint16(0) {
		return 0
	}
	return v
}

func safeU8(v uint8) uint8 {
	if v == ^uint8(0) {
		return 0
	}
	return v
}

func float64Ptr(f float64) *float64 { return &f }
