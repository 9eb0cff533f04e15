package engine

import (
	"math"
	"testing"
)

func TestRiegelTime(t *testing.T) {
	got := RiegelTime(1200, Distance5K, Distance10K)
	want := 1200 * math.Pow(2, 1.06)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RiegelTime() = %v, want %v", got, want)
	}
	if RiegelTime(0, Distance5K, Distance10K) != 0 {
		t.Error("RiegelTime with zero time should be 0")
	}
}

func TestGeneratePredictions(t *testing.T) {
	volume := TrainingVolume{AvgWeeklyMiles4Weeks: 30, LongestRecentRunMiles: 12, WeeksConsecutiveTraining: 10, QualitySessionsPerWeek: 1}
	preds := GeneratePredictions(50, 0, 0.8, 0.9, volume)

	if len(preds) != 4 {
		t.Fatalf("got %d predictions, want 4", len(preds))
	}

	byName := map[string]Prediction{}
	for _, p := range preds {
		byName[p.Distance] = p
	}

	fiveK := byName["5K"]
	anchor := TimeForVDOT(50, Distance5K)
	if got := float64(fiveK.PredictedSeconds); math.Abs(got-anchor) > 1 {
		t.Errorf("5K predicted = %v, want %v", got, anchor)
	}

	ratio := float64(byName["Marathon"].PredictedSeconds) / float64(fiveK.PredictedSeconds)
	if ratio <= 8.44 || ratio >= 12 {
		t.Errorf("Marathon/5K ratio = %v, want in (8.44, 12)", ratio)
	}
	ratio = float64(byName["10K"].PredictedSeconds) / float64(fiveK.PredictedSeconds)
	if ratio <= 2.0 || ratio >= 2.3 {
		t.Errorf("10K/5K ratio = %v, want in (2.0, 2.3)", ratio)
	}

	prevSpread := 0
	for _, p := range preds {
		if p.Range.Fast >= p.Range.Slow {
			t.Errorf("%s range %+v, want fast < slow", p.Distance, p.Range)
		}
		if p.Range.Fast > p.PredictedSeconds || p.Range.Slow < p.PredictedSeconds {
			t.Errorf("%s range %+v does not contain %d", p.Distance, p.Range, p.PredictedSeconds)
		}
		spread := p.Range.Slow - p.Range.Fast
		if spread <= prevSpread {
			t.Errorf("%s spread %d not wider than %d", p.Distance, spread, prevSpread)
		}
		prevSpread = spread

		wantPace := int(math.Round(float64(p.PredictedSeconds) / p.Miles))
		if diff := p.PacePerMile - wantPace; diff < -1 || diff > 1 {
			t.Errorf("%s pace = %d, want ~%d", p.Distance, p.PacePerMile, wantPace)
		}
		if p.Readiness < 0 || p.Readiness > 1 {
			t.Errorf("%s readiness %v out of [0, 1]", p.Distance, p.Readiness)
		}
	}
}

func TestGeneratePredictionsFormAndTaper(t *testing.T) {
	neutral := GeneratePredictions(50, 0, 0.8, 0.9, TrainingVolume{})
	fatigued := GeneratePredictions(50, 3, 0.8, 0.9, TrainingVolume{})

	for i := range neutral {
		if fatigued[i].PredictedSeconds <= neutral[i].PredictedSeconds {
			t.Errorf("%s: fatigued %d not slower than neutral %d",
				neutral[i].Distance, fatigued[i].PredictedSeconds, neutral[i].PredictedSeconds)
		}
		if fatigued[i].TaperedSeconds != neutral[i].TaperedSeconds {
			t.Errorf("%s: tapered time should not depend on form", neutral[i].Distance)
		}
		if neutral[i].TaperedSeconds >= neutral[i].PredictedSeconds {
			t.Errorf("%s: tapered %d not faster than predicted %d",
				neutral[i].Distance, neutral[i].TaperedSeconds, neutral[i].PredictedSeconds)
		}
	}
}

func TestGeneratePredictionsRangeNarrowsWithConfidence(t *testing.T) {
	sure := GeneratePredictions(50, 0, 1, 1, TrainingVolume{})
	unsure := GeneratePredictions(50, 0, 0.2, 0.3, TrainingVolume{})

	for i := range sure {
		a := sure[i].Range.Slow - sure[i].Range.Fast
		b := unsure[i].Range.Slow - unsure[i].Range.Fast
		if a >= b {
			t.Errorf("%s: confident spread %d not narrower than %d", sure[i].Distance, a, b)
		}
	}
}
