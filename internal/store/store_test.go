package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 { return &f }

func sampleWorkout(externalID string, start time.Time) *Workout {
	return &Workout{
		ExternalID:       externalID,
		Name:             "Morning Run",
		WorkoutType:      "easy",
		StartDate:        start,
		DistanceMeters:   8046.72,
		DurationSeconds:  2700,
		AverageHeartrate: float64Ptr(142),
		ElevationGainFt:  120,
	}
}

func TestUpsertWorkout(t *testing.T) {
	ctx := context.Background()
	db := OpenTest(t)
	start := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)

	w := sampleWorkout("fit-abc", start)
	id, err := db.UpsertWorkout(ctx, w)
	require.NoError(t, err)
	require.NotZero(t, id)
	assert.Equal(t, id, w.ID)

	got, err := db.GetWorkout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Morning Run", got.Name)
	assert.True(t, got.StartDate.Equal(start))
	require.NotNil(t, got.AverageHeartrate)
	assert.Equal(t, 142.0, *got.AverageHeartrate)
	assert.Nil(t, got.MaxHeartrate)

	// Re-importing the same file updates in place
	w2 := sampleWorkout("fit-abc", start)
	w2.Name = "Renamed"
	id2, err := db.UpsertWorkout(ctx, w2)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	all, err := db.ListWorkouts(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed", all[0].Name)
}

func TestGetWorkoutNotFound(t *testing.T) {
	db := OpenTest(t)

	_, err := db.GetWorkout(context.Background(), 42)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	err = db.DeleteWorkout(context.Background(), 42)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestListWorkoutsSince(t *testing.T) {
	ctx := context.Background()
	db := OpenTest(t)
	base := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		_, err := db.UpsertWorkout(ctx, sampleWorkout(id, base.AddDate(0, 0, 10*(2-i))))
		require.NoError(t, err)
	}

	all, err := db.ListWorkouts(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].ExternalID, all[1].ExternalID, all[2].ExternalID})

	recent, err := db.ListWorkouts(ctx, base.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].ExternalID)
}

func TestPerformances(t *testing.T) {
	ctx := context.Background()
	db := OpenTest(t)
	date := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

	workoutID, err := db.UpsertWorkout(ctx, sampleWorkout("fit-race", date))
	require.NoError(t, err)

	race := &Performance{
		WorkoutID:      &workoutID,
		Kind:           KindRace,
		Source:         "race",
		Date:           date,
		DistanceMeters: 5000,
		TimeSeconds:    1200,
		EffortLevel:    "all_out",
		WeatherTempF:   float64Ptr(48),
	}
	_, err = db.InsertPerformance(ctx, race)
	require.NoError(t, err)
	assert.NotZero(t, race.ID)

	// Manually entered race with no workout
	_, err = db.InsertPerformance(ctx, &Performance{
		Kind:           KindRace,
		Source:         "race",
		Date:           date.AddDate(0, -3, 0),
		DistanceMeters: 10000,
		TimeSeconds:    2520,
	})
	require.NoError(t, err)

	err = db.ReplaceWorkoutPerformances(ctx, workoutID, []Performance{
		{Kind: KindBestEffort, Source: "workout_segment", Date: date, DistanceMeters: 5000, TimeSeconds: 1200},
	})
	require.NoError(t, err)

	races, err := db.ListPerformances(ctx, KindRace, time.Time{})
	require.NoError(t, err)
	require.Len(t, races, 1, "replace drops the race attached to the workout")
	assert.Nil(t, races[0].WorkoutID)
	assert.Equal(t, 10000.0, races[0].DistanceMeters)

	efforts, err := db.ListPerformances(ctx, KindBestEffort, time.Time{})
	require.NoError(t, err)
	require.Len(t, efforts, 1)
	require.NotNil(t, efforts[0].WorkoutID)
	assert.Equal(t, workoutID, *efforts[0].WorkoutID)
	assert.True(t, efforts[0].Date.Equal(date))

	require.NoError(t, db.DeleteWorkout(ctx, workoutID))
	efforts, err = db.ListPerformances(ctx, KindBestEffort, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, efforts, "best efforts cascade with their workout")
}

func TestInsertPerformanceRejectsBadRows(t *testing.T) {
	db := OpenTest(t)

	_, err := db.InsertPerformance(context.Background(), &Performance{
		Kind:           "guess",
		Source:         "race",
		Date:           time.Now(),
		DistanceMeters: 5000,
		TimeSeconds:    1200,
	})
	assert.Error(t, err)

	_, err = db.InsertPerformance(context.Background(), &Performance{
		Kind:           KindRace,
		Source:         "race",
		Date:           time.Now(),
		DistanceMeters: 5000,
		TimeSeconds:    0,
	})
	assert.Error(t, err)
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	db := OpenTest(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	far := base.AddDate(10, 0, 0)

	_, err := db.LatestSnapshotAsOf(ctx, far)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	var ids []string
	for i, vdot := range []float64{48.2, 49.0, 49.6} {
		s := &PredictionSnapshot{
			ID:         uuid.NewString(),
			AsOf:       base.AddDate(0, 0, i),
			ComputedAt: base.AddDate(0, 0, i).Add(time.Duration(i) * 500 * time.Millisecond),
			VDOT:       vdot,
			Confidence: "medium",
			Result:     []byte(`{"vdot":1}`),
		}
		require.NoError(t, db.SaveSnapshot(ctx, s))
		ids = append(ids, s.ID)
	}

	latest, err := db.LatestSnapshotAsOf(ctx, far)
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)
	assert.Equal(t, 49.6, latest.VDOT)
	assert.JSONEq(t, `{"vdot":1}`, string(latest.Result))

	list, err := db.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	got, err := db.GetSnapshot(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, got.AsOf.Equal(base))

	_, err = db.GetSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestLatestSnapshotAsOf(t *testing.T) {
	ctx := context.Background()
	db := OpenTest(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snaps := []struct {
		id       string
		asOf     time.Time
		computed time.Time
		vdot     float64
	}{
		{"march", base, base, 48},
		{"june", base.AddDate(0, 3, 0), base.AddDate(0, 3, 0), 52},
		// A replay saved after June but dated in April
		{"april-replay", base.AddDate(0, 1, 0), base.AddDate(0, 4, 0), 50},
	}
	for _, s := range snaps {
		require.NoError(t, db.SaveSnapshot(ctx, &PredictionSnapshot{
			ID:         s.id,
			AsOf:       s.asOf,
			ComputedAt: s.computed,
			VDOT:       s.vdot,
			Confidence: "medium",
			Result:     []byte(`{}`),
		}))
	}

	tests := []struct {
		name   string
		asOf   time.Time
		wantID string
	}{
		{"before any snapshot", base.AddDate(0, 0, -1), ""},
		{"same instant", base, "march"},
		{"between march and april", base.AddDate(0, 0, 15), "march"},
		{"after april", base.AddDate(0, 2, 0), "april-replay"},
		{"after everything", base.AddDate(1, 0, 0), "april-replay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.LatestSnapshotAsOf(ctx, tt.asOf)
			if tt.wantID == "" {
				assert.ErrorIs(t, err, ErrSnapshotNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/data.db"

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	// Migrations are idempotent
	db2, err := Open(path)
	require.NoError(t, err)
	db2.Close()
}
