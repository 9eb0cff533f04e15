package engine

import (
	"math"
	"testing"
	"time"
)

var testAsOf = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testAsOf.AddDate(0, 0, -n)
}

func float64Ptr(f float64) *float64 {
	return &f
}

func TestBestEffortEligible(t *testing.T) {
	tests := []struct {
		name   string
		record PerformanceRecord
		want   bool
	}{
		{
			name:   "segment at exactly 5000m",
			record: PerformanceRecord{DistanceMeters: 5000, TimeSeconds: 1300, Source: SourceWorkoutSegment},
			want:   true,
		},
		{
			name:   "segment at 4999m",
			record: PerformanceRecord{DistanceMeters: 4999, TimeSeconds: 1300, Source: SourceWorkoutSegment},
			want:   false,
		},
		{
			name:   "race at one mile",
			record: PerformanceRecord{DistanceMeters: Distance1Mile, TimeSeconds: 360, Source: SourceRace},
			want:   true,
		},
		{
			name:   "time trial just under a mile",
			record: PerformanceRecord{DistanceMeters: 1600, TimeSeconds: 360, Source: SourceTimeTrial},
			want:   false,
		},
		{
			name:   "zero time",
			record: PerformanceRecord{DistanceMeters: 5000, TimeSeconds: 0, Source: SourceRace},
			want:   false,
		},
		{
			name:   "unknown source",
			record: PerformanceRecord{DistanceMeters: 5000, TimeSeconds: 1300, Source: "treadmill"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestEffortEligible(tt.record); got != tt.want {
				t.Errorf("bestEffortEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBestEffortExtractorDeratesNonRace(t *testing.T) {
	record := PerformanceRecord{Date: daysAgo(10), DistanceMeters: 5000, TimeSeconds: 1260}

	record.Source = SourceRace
	race, ok := BestEffortExtractor{}.Extract(Input{BestEfforts: []PerformanceRecord{record}}, testAsOf)
	if !ok {
		t.Fatal("expected a signal from a race best effort")
	}

	record.Source = SourceWorkoutSegment
	seg, ok := BestEffortExtractor{}.Extract(Input{BestEfforts: []PerformanceRecord{record}}, testAsOf)
	if !ok {
		t.Fatal("expected a signal from a workout segment")
	}

	if got, want := seg.EstimatedVDOT, race.EstimatedVDOT*0.97; math.Abs(got-want) > 1e-9 {
		t.Errorf("segment VDOT = %v, want %v", got, want)
	}
}

func TestPeakWeightedMean(t *testing.T) {
	cs := []candidate{{vdot: 50}, {vdot: 48}, {vdot: 46}}

	got := peakWeightedMean(cs, 5, 0.5)
	want := (50 + 24 + 11.5) / 1.75
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("peakWeightedMean() = %v, want %v", got, want)
	}

	// only the top k count
	if got := peakWeightedMean(cs, 1, 0.5); got != 50 {
		t.Errorf("peakWeightedMean(k=1) = %v, want 50", got)
	}
}

func TestRejectOutliers(t *testing.T) {
	cs := []candidate{{vdot: 80}, {vdot: 46}, {vdot: 45}, {vdot: 44}}
	kept := rejectOutliers(cs)
	if len(kept) != 3 {
		t.Fatalf("kept %d candidates, want 3", len(kept))
	}
	for _, c := range kept {
		if c.vdot == 80 {
			t.Error("outlier was not rejected")
		}
	}

	// two candidates never define a median worth trusting
	pair := []candidate{{vdot: 80}, {vdot: 45}}
	if got := rejectOutliers(pair); len(got) != 2 {
		t.Errorf("kept %d of a pair, want 2", len(got))
	}
}

func TestCorrectedRaceTime(t *testing.T) {
	tests := []struct {
		name   string
		record PerformanceRecord
		want   float64
	}{
		{
			name:   "no conditions",
			record: PerformanceRecord{TimeSeconds: 1200},
			want:   1200,
		},
		{
			name:   "cool day",
			record: PerformanceRecord{TimeSeconds: 1200, WeatherTempF: float64Ptr(55)},
			want:   1200,
		},
		{
			name:   "80F dry",
			record: PerformanceRecord{TimeSeconds: 1200, WeatherTempF: float64Ptr(80)},
			want:   1200 * (1 - 0.03),
		},
		{
			name: "80F at 80% humidity",
			record: PerformanceRecord{
				TimeSeconds:        1200,
				WeatherTempF:       float64Ptr(80),
				WeatherHumidityPct: float64Ptr(80),
			},
			want: 1200 * (1 - 0.03*1.2),
		},
		{
			name:   "moderate climbing",
			record: PerformanceRecord{TimeSeconds: 2400, ElevationGainFt: float64Ptr(300)},
			want:   2400 - 24,
		},
		{
			name:   "climb capped at 5%",
			record: PerformanceRecord{TimeSeconds: 1200, ElevationGainFt: float64Ptr(5000)},
			want:   1200 * 0.95,
		},
		{
			name: "total capped at 10%",
			record: PerformanceRecord{
				TimeSeconds:        1200,
				WeatherTempF:       float64Ptr(100),
				WeatherHumidityPct: float64Ptr(100),
				ElevationGainFt:    float64Ptr(5000),
			},
			want: 1200 * 0.90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectedRaceTime(tt.record)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CorrectedRaceTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRaceExtractorEligibility(t *testing.T) {
	tests := []struct {
		name   string
		record PerformanceRecord
		want   bool
	}{
		{"race at 1000m", PerformanceRecord{Date: daysAgo(5), DistanceMeters: 1000, TimeSeconds: 200, Source: SourceRace}, true},
		{"race under 1000m", PerformanceRecord{Date: daysAgo(5), DistanceMeters: 800, TimeSeconds: 150, Source: SourceRace}, false},
		{"time trial", PerformanceRecord{Date: daysAgo(5), DistanceMeters: 5000, TimeSeconds: 1260, Source: SourceTimeTrial}, false},
		{"older than a year", PerformanceRecord{Date: daysAgo(400), DistanceMeters: 5000, TimeSeconds: 1260, Source: SourceRace}, false},
		{"after asOf", PerformanceRecord{Date: testAsOf.AddDate(0, 0, 2), DistanceMeters: 5000, TimeSeconds: 1260, Source: SourceRace}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := RaceExtractor{}.Extract(Input{Races: []PerformanceRecord{tt.record}}, testAsOf)
			if ok != tt.want {
				t.Errorf("Extract() ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestRaceRecency(t *testing.T) {
	if raceRecency(10) <= raceRecency(100) {
		t.Error("recent race should outweigh older race")
	}
	// the stale penalty applies on top of the half-life
	want := math.Pow(0.5, 150.0/180) * 0.85
	if got := raceRecency(150); math.Abs(got-want) > 1e-9 {
		t.Errorf("raceRecency(150) = %v, want %v", got, want)
	}
}

func hrInput(workouts ...WorkoutSignalInput) Input {
	return Input{
		Physiology: UserPhysiology{RestingHR: 50, MaxHR: 190},
		Workouts:   workouts,
	}
}

func TestHeartRateExtractorEligibility(t *testing.T) {
	base := WorkoutSignalInput{
		Date:            daysAgo(3),
		DistanceMiles:   6,
		DurationMinutes: 54,
		AvgPaceSeconds:  540,
		AvgHR:           140,
		WorkoutType:     "easy",
	}

	tests := []struct {
		name   string
		mutate func(w *WorkoutSignalInput)
		want   bool
	}{
		{"steady run in band", func(w *WorkoutSignalInput) {}, true},
		{"HRR below band", func(w *WorkoutSignalInput) { w.AvgHR = 115 }, false},
		{"HRR above band", func(w *WorkoutSignalInput) { w.AvgHR = 180 }, false},
		{"interval session", func(w *WorkoutSignalInput) { w.WorkoutType = "interval" }, false},
		{"tempo run", func(w *WorkoutSignalInput) { w.WorkoutType = "tempo" }, false},
		{"too short", func(w *WorkoutSignalInput) { w.DurationMinutes = 14 }, false},
		{"no heart rate", func(w *WorkoutSignalInput) { w.AvgHR = 0 }, false},
		{"outside window", func(w *WorkoutSignalInput) { w.Date = daysAgo(91) }, false},
		{"long run label", func(w *WorkoutSignalInput) { w.WorkoutType = "Long Run" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := base
			tt.mutate(&w)
			_, ok := HeartRateExtractor{}.Extract(hrInput(w), testAsOf)
			if ok != tt.want {
				t.Errorf("Extract() ok = %v, want %v", ok, tt.want)
			}
		})
	}

	t.Run("narrow reserve", func(t *testing.T) {
		in := hrInput(base)
		in.Physiology = UserPhysiology{RestingHR: 150, MaxHR: 165}
		if _, ok := (HeartRateExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal with a 15 bpm reserve")
		}
	})
}

func TestHeartRateExtractorEstimate(t *testing.T) {
	w := WorkoutSignalInput{
		Date:            daysAgo(3),
		DistanceMiles:   6,
		DurationMinutes: 54,
		AvgPaceSeconds:  540,
		AvgHR:           140,
		WorkoutType:     "easy",
	}

	sig, ok := HeartRateExtractor{}.Extract(hrInput(w), testAsOf)
	if !ok {
		t.Fatal("expected a signal")
	}
	if math.Abs(sig.EstimatedVDOT-46.77) > 0.05 {
		t.Errorf("EstimatedVDOT = %v, want ~46.77", sig.EstimatedVDOT)
	}
}

func TestFatigueCorrectedHR(t *testing.T) {
	tests := []struct {
		name string
		tsb  *float64
		want float64
	}{
		{"unknown TSB", nil, 150},
		{"fresh", float64Ptr(5), 150},
		{"tired", float64Ptr(-20), 150 * 0.98},
		{"capped", float64Ptr(-50), 150 * 0.97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fatigueCorrectedHR(WorkoutSignalInput{AvgHR: 150, TSB: tt.tsb})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("fatigueCorrectedHR() = %v, want %v", got, tt.want)
			}
		})
	}

	// a tired run implies more aerobic power than the same run fresh
	fresh := WorkoutSignalInput{Date: daysAgo(2), DistanceMiles: 6, DurationMinutes: 54, AvgPaceSeconds: 540, AvgHR: 140, WorkoutType: "easy"}
	tired := fresh
	tired.TSB = float64Ptr(-20)

	a, _ := HeartRateExtractor{}.Extract(hrInput(fresh), testAsOf)
	b, _ := HeartRateExtractor{}.Extract(hrInput(tired), testAsOf)
	if b.EstimatedVDOT <= a.EstimatedVDOT {
		t.Errorf("fatigued estimate %v should exceed fresh estimate %v", b.EstimatedVDOT, a.EstimatedVDOT)
	}
}

func steadyRuns(paces []float64, hr float64) []WorkoutSignalInput {
	days := []int{50, 40, 30, 20, 10, 1, 45, 35}
	var ws []WorkoutSignalInput
	for i, p := range paces {
		ws = append(ws, WorkoutSignalInput{
			Date:            daysAgo(days[i]),
			DistanceMiles:   5,
			DurationMinutes: 5 * p / 60,
			AvgPaceSeconds:  p,
			AvgHR:           hr,
			WorkoutType:     "easy",
		})
	}
	return ws
}

func TestEFTrendExtractor(t *testing.T) {
	t.Run("improving efficiency", func(t *testing.T) {
		in := hrInput(steadyRuns([]float64{540, 534, 528, 522, 516, 510}, 140)...)
		sig, ok := EFTrendExtractor{}.Extract(in, testAsOf)
		if !ok {
			t.Fatal("expected a signal")
		}
		if sig.Kind != KindModifier {
			t.Errorf("Kind = %v, want modifier", sig.Kind)
		}
		if sig.EstimatedVDOT <= 2.5 || sig.EstimatedVDOT > efMaxDelta {
			t.Errorf("delta = %v, want in (2.5, 3]", sig.EstimatedVDOT)
		}
		if sig.Confidence <= EFModifierMinConfidence {
			t.Errorf("Confidence = %v, want above %v", sig.Confidence, EFModifierMinConfidence)
		}
	})

	t.Run("flat efficiency dropped", func(t *testing.T) {
		in := hrInput(steadyRuns([]float64{530, 530, 530, 530, 530, 530}, 140)...)
		if _, ok := (EFTrendExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal for a flat trend")
		}
	})

	t.Run("too few runs", func(t *testing.T) {
		in := hrInput(steadyRuns([]float64{540, 530, 520, 510}, 140)...)
		if _, ok := (EFTrendExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal with four runs")
		}
	})

	t.Run("large change clamped", func(t *testing.T) {
		in := hrInput(steadyRuns([]float64{600, 560, 520, 480, 440, 400}, 140)...)
		sig, ok := EFTrendExtractor{}.Extract(in, testAsOf)
		if !ok {
			t.Fatal("expected a signal")
		}
		if sig.EstimatedVDOT != efMaxDelta {
			t.Errorf("delta = %v, want %v", sig.EstimatedVDOT, efMaxDelta)
		}
	})
}

func TestCriticalSpeedExtractor(t *testing.T) {
	// Performances generated from CS = 4.5 m/s and D' = 200 m
	perf := func(meters float64, days int) PerformanceRecord {
		return PerformanceRecord{
			Date:           daysAgo(days),
			DistanceMeters: meters,
			TimeSeconds:    (meters - 200) / 4.5,
			Source:         SourceTimeTrial,
		}
	}

	t.Run("exact model recovered", func(t *testing.T) {
		in := Input{
			Races:       []PerformanceRecord{perf(5000, 20), perf(10000, 40)},
			BestEfforts: []PerformanceRecord{perf(1500, 10), perf(3000, 30)},
		}
		sig, ok := CriticalSpeedExtractor{}.Extract(in, testAsOf)
		if !ok {
			t.Fatal("expected a signal")
		}
		want := vdotAtVelocity(4.5*60, csHoldMinutes)
		if math.Abs(sig.EstimatedVDOT-want) > 0.01 {
			t.Errorf("EstimatedVDOT = %v, want %v", sig.EstimatedVDOT, want)
		}
		if sig.DataPoints != 4 {
			t.Errorf("DataPoints = %d, want 4", sig.DataPoints)
		}
	})

	t.Run("fastest per bucket", func(t *testing.T) {
		slow := perf(5000, 15)
		slow.TimeSeconds += 120
		in := Input{BestEfforts: []PerformanceRecord{perf(1500, 10), perf(3000, 30), perf(5000, 20), slow}}
		sig, ok := CriticalSpeedExtractor{}.Extract(in, testAsOf)
		if !ok {
			t.Fatal("expected a signal")
		}
		if sig.DataPoints != 3 {
			t.Errorf("DataPoints = %d, want 3", sig.DataPoints)
		}
	})

	t.Run("two buckets", func(t *testing.T) {
		in := Input{BestEfforts: []PerformanceRecord{perf(3000, 30), perf(5000, 20), perf(5200, 5)}}
		if _, ok := (CriticalSpeedExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal with only two buckets")
		}
	})

	t.Run("beyond 15K ignored", func(t *testing.T) {
		in := Input{BestEfforts: []PerformanceRecord{perf(3000, 30), perf(5000, 20), perf(DistanceHalfMara, 5)}}
		if _, ok := (CriticalSpeedExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal when the third distance exceeds 15K")
		}
	})
}

func TestTrainingPaceExtractor(t *testing.T) {
	run := func(kind string, pace float64, days int) WorkoutSignalInput {
		return WorkoutSignalInput{
			Date:            daysAgo(days),
			DistanceMiles:   4,
			DurationMinutes: 4 * pace / 60,
			AvgPaceSeconds:  pace,
			WorkoutType:     kind,
		}
	}

	t.Run("mean of faster half", func(t *testing.T) {
		in := Input{Workouts: []WorkoutSignalInput{
			run("easy", 540, 20),
			run("easy", 530, 15),
			run("easy", 520, 10),
			run("tempo", 420, 5),
		}}
		sig, ok := TrainingPaceExtractor{}.Extract(in, testAsOf)
		if !ok {
			t.Fatal("expected a signal")
		}
		want := (49.77 + 46.90) / 2
		if math.Abs(sig.EstimatedVDOT-want) > 0.05 {
			t.Errorf("EstimatedVDOT = %v, want ~%v", sig.EstimatedVDOT, want)
		}
		if *sig.RecencyDays != 5 {
			t.Errorf("RecencyDays = %d, want 5", *sig.RecencyDays)
		}
	})

	t.Run("intervals ignored", func(t *testing.T) {
		in := Input{Workouts: []WorkoutSignalInput{
			run("easy", 540, 20),
			run("interval", 400, 15),
			run("easy", 520, 10),
		}}
		if _, ok := (TrainingPaceExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal with only two eligible runs")
		}
	})

	t.Run("short runs ignored", func(t *testing.T) {
		short := run("easy", 540, 3)
		short.DurationMinutes = 9
		in := Input{Workouts: []WorkoutSignalInput{run("easy", 540, 20), run("easy", 520, 10), short}}
		if _, ok := (TrainingPaceExtractor{}).Extract(in, testAsOf); ok {
			t.Error("expected no signal when a run is under 10 minutes")
		}
	})
}
