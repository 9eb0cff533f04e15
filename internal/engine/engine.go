// Package engine estimates current running fitness (VDOT) from races, best
// efforts, heart rate and training pace, and turns it into race predictions.
//
// The engine is pure: it reads an immutable Input, never touches the clock
// except through an injected one, and holds no state between calls.
package engine

import "time"

const (
	recentDataDays    = 30
	recentDataMinRuns = 3
	highConfSignals   = 3
	highConfAgreement = 0.6
	mediumSoloConf    = 0.6
)

// Engine evaluates fitness snapshots
type Engine struct {
	extractors []Extractor
	now        func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithExtractors replaces the signal set
func WithExtractors(extractors ...Extractor) Option {
	return func(e *Engine) {
		e.extractors = extractors
	}
}

// WithClock sets the clock used when Input.AsOf is zero
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine with the default extractors
func New(opts ...Option) *Engine {
	e := &Engine{
		extractors: DefaultExtractors(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Evaluate runs the default engine
func Evaluate(in Input) Result {
	return defaultEngine.Evaluate(in)
}

// Evaluate extracts signals, blends them, applies form and readiness, and
// predicts the standard race distances
func (e *Engine) Evaluate(in Input) Result {
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = e.now()
	}

	signals := []Signal{}
	for _, x := range e.extractors {
		if sig, ok := x.Extract(in, asOf); ok {
			signals = append(signals, sig)
		}
	}

	blend := BlendSignals(signals, in.SavedVDOT)
	formPct := FormAdjustmentPct(in.Fitness)
	quality := assessDataQuality(in, signals, asOf)

	return Result{
		AsOf:              asOf,
		VDOT:              blend.VDOT,
		VDOTLabel:         VDOTLabel(blend.VDOT),
		VDOTRange:         blend.Range,
		Confidence:        confidenceLabel(signals, blend, quality),
		AgreementScore:    blend.Agreement,
		AgreementDetails:  blend.Details,
		Signals:           signals,
		Predictions:       GeneratePredictions(blend.VDOT, formPct, blend.Confidence, blend.Agreement, in.Volume),
		FormAdjustmentPct: formPct,
		FormDescription:   FormDescription(in.Fitness),
		DataQuality:       quality,
	}
}

func assessDataQuality(in Input, signals []Signal, asOf time.Time) DataQuality {
	q := DataQuality{HasRaces: len(in.Races) > 0}

	recent := 0
	for _, w := range in.Workouts {
		if w.AvgHR > 0 {
			q.HasHR = true
		}
		if inWindow(asOf, w.Date, recentDataDays) {
			recent++
		}
	}
	q.HasRecentData = recent >= recentDataMinRuns

	for _, s := range signals {
		if s.Kind == KindEstimate {
			q.SignalsUsed++
		}
	}
	return q
}

// confidenceLabel grades the result: high needs several agreeing signals on
// recent data; medium needs a second signal or one strong one
func confidenceLabel(signals []Signal, b Blend, q DataQuality) string {
	if b.Fallback {
		return ConfidenceLow
	}

	n := q.SignalsUsed
	switch {
	case n >= highConfSignals && b.Agreement >= highConfAgreement && q.HasRecentData:
		return ConfidenceHigh
	case n >= 2:
		return ConfidenceMedium
	case n == 1 && strongestEstimate(signals) >= mediumSoloConf:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func strongestEstimate(signals []Signal) float64 {
	best := 0.0
	for _, s := range signals {
		if s.Kind == KindEstimate && s.Confidence > best {
			best = s.Confidence
		}
	}
	return best
}
