package analysis

import (
	"math"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// sample builds a point at speed m/s and hr bpm, with an optional grade
func sample(speed float64, hr int, grade ...float64) StreamPoint {
	p := StreamPoint{VelocitySmooth: floatPtr(speed), Heartrate: intPtr(hr)}
	if len(grade) > 0 {
		p.GradeSmooth = floatPtr(grade[0])
	}
	return p
}

func TestEfficiencyFactor(t *testing.T) {
	tests := []struct {
		name   string
		points []StreamPoint
		want   float64
	}{
		{name: "no points", points: nil, want: 0},
		{
			name:   "all samples standing still",
			points: []StreamPoint{sample(0.3, 140), sample(0.5, 145)},
			want:   0,
		},
		{
			name:   "heart rate outside 80-220",
			points: []StreamPoint{sample(3, 80), sample(3, 220), sample(3, 230)},
			want:   0,
		},
		{
			// 180 m/min / 150 bpm
			name:   "steady flat run",
			points: []StreamPoint{sample(3, 150), sample(3, 150), sample(3, 150)},
			want:   1.2,
		},
		{
			name:   "averages speed and heart rate separately",
			points: []StreamPoint{sample(2.5, 140), sample(3.5, 160)},
			want:   1.2,
		},
		{
			name: "skips samples missing a channel",
			points: []StreamPoint{
				sample(4, 150),
				{VelocitySmooth: floatPtr(9)},
				{Heartrate: intPtr(100)},
				sample(4, 150),
			},
			want: 1.6,
		},
		{
			// 5% climb: effort factor 1.15, so 3.45 m/s is worth 3 m/s flat
			name:   "climb credits extra effort",
			points: []StreamPoint{sample(3.45, 150, 5), sample(3.45, 150, 5)},
			want:   1.2,
		},
		{
			// -10% descent: factor 0.7
			name:   "descent discounts speed",
			points: []StreamPoint{sample(2.1, 150, -10)},
			want:   1.2,
		},
		{
			name:   "steep descent clamps at half",
			points: []StreamPoint{sample(1.5, 150, -40)},
			want:   1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EfficiencyFactor(tt.points)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("EfficiencyFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}
