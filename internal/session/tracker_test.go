package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/fitness-app/internal/domain"
)

var start = time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T, workout *domain.Workout, p Persister, flow Flow) (*Tracker, *manualTickers, *fakeClock) {
	t.Helper()
	tickers := &manualTickers{}
	clock := &fakeClock{now: start}
	ids := 0
	tr := NewTracker("user-1", workout, p, Options{
		Flow:    flow,
		Now:     clock.Now,
		Tickers: tickers.factory,
		NewID: func() string {
			ids++
			return strings.Repeat("x", ids)
		},
	})
	t.Cleanup(tr.Close)
	return tr, tickers, clock
}

func TestTracker_EndToEnd(t *testing.T) {
	p := newRecordingPersister()
	tr, tickers, clock := newTestTracker(t, benchWorkout(3, 60), p, FlowFreeForm)
	ctx := context.Background()

	assert.Equal(t, StateNotStarted, tr.State())
	require.NoError(t, tr.Start(ctx))
	assert.Equal(t, StateInProgress, tr.State())
	assert.True(t, tr.Saved())

	_, err := tr.LogSet(ctx, "we-bench", 1, Performance{Reps: intPtr(10), Weight: floatPtr(50)})
	require.NoError(t, err)
	res, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	assert.True(t, res.RestStarted)
	assert.Equal(t, StateResting, tr.State())
	assert.Equal(t, 60, tr.RestRemaining())

	require.True(t, tickers.tick())
	tr.SkipRest()
	assert.Equal(t, StateInProgress, tr.State())

	for set := 2; set <= 3; set++ {
		_, err = tr.LogSet(ctx, "we-bench", set, Performance{Reps: intPtr(10), Weight: floatPtr(50)})
		require.NoError(t, err)
		res, err = tr.CompleteSet(ctx, "we-bench", set)
		require.NoError(t, err)
	}
	assert.False(t, res.RestStarted, "last set does not start a rest")
	assert.True(t, res.AllSetsLogged)
	assert.Equal(t, 100.0, tr.Progress())
	assert.True(t, tr.IsComplete())

	clock.Advance(42*time.Minute + 31*time.Second)
	minutes, err := tr.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 43, minutes)
	assert.Equal(t, StateCompleted, tr.State())

	stored := p.sessions[tr.SessionID()]
	require.NotNil(t, stored.CompletedAt)
	require.NotNil(t, stored.TotalDurationMinutes)
	assert.GreaterOrEqual(t, *stored.TotalDurationMinutes, 0)

	rows := p.logRows()
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.False(t, row.IsExtraSet)
		assert.False(t, row.IsAddedExercise)
		assert.True(t, row.Completed)
		assert.Equal(t, "bench", row.ExerciseID)
		assert.Equal(t, 10, *row.ActualReps)
		assert.Equal(t, 50.0, *row.ActualWeight)
		assert.Equal(t, "8-12", row.PlannedReps)
	}

	_, err = tr.Complete(ctx)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestTracker_ExtraSetFlag(t *testing.T) {
	p := newRecordingPersister()
	tr, _, _ := newTestTracker(t, benchWorkout(2, 0), p, FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	_, err := tr.LogSet(ctx, "we-bench", 3, Performance{Reps: intPtr(5)})
	assert.ErrorIs(t, err, ErrInvalidSetNumber, "set beyond total needs an extra set first")

	total, err := tr.AddExtraSet("we-bench")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	for set := 1; set <= 3; set++ {
		_, err := tr.LogSet(ctx, "we-bench", set, Performance{Reps: intPtr(5)})
		require.NoError(t, err)
	}
	for _, row := range p.logRows() {
		assert.Equal(t, row.SetNumber > 2, row.IsExtraSet, "set %d", row.SetNumber)
	}
}

func TestTracker_ProgressCountsExtraAndAddedSets(t *testing.T) {
	tr, _, _ := newTestTracker(t, benchWorkout(2, 0), newRecordingPersister(), FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	_, err := tr.AddExtraSet("we-bench")
	require.NoError(t, err)
	added, err := tr.AddExercise(domain.Exercise{ID: "plank", Name: "Plank", ExerciseType: domain.ExerciseTypeTime})
	require.NoError(t, err)

	// 3 bench sets + 3 plank sets
	slots := []struct {
		id  string
		set int
	}{
		{"we-bench", 1}, {"we-bench", 2}, {"we-bench", 3},
		{added.ID, 1}, {added.ID, 2}, {added.ID, 3},
	}
	for k, s := range slots {
		assert.InDelta(t, 100*float64(k)/6, tr.Progress(), 1e-9)
		assert.False(t, tr.IsComplete())
		_, err := tr.CompleteSet(ctx, s.id, s.set)
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0, tr.Progress())
	assert.True(t, tr.IsComplete())
}

func TestTracker_AddExerciseDefaults(t *testing.T) {
	p := newRecordingPersister()
	tr, _, _ := newTestTracker(t, benchWorkout(3, 60), p, FlowFreeForm)
	ctx := context.Background()

	_, err := tr.AddExercise(domain.Exercise{ID: "x"})
	assert.ErrorIs(t, err, ErrNotStarted)
	require.NoError(t, tr.Start(ctx))

	timed, err := tr.AddExercise(domain.Exercise{ID: "plank", Name: "Plank", ExerciseType: domain.ExerciseTypeTime, MeasurementUnit: "seconds"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(timed.ID, "added-"))
	assert.Equal(t, 3, timed.Sets)
	assert.Equal(t, "30 sec", timed.RepsPerSet)
	assert.Equal(t, 60, timed.RestSeconds)
	assert.Equal(t, 1, timed.OrderIndex)
	assert.Equal(t, "Added during workout", timed.Notes)
	assert.True(t, timed.Added)

	plain, err := tr.AddExercise(domain.Exercise{ID: "curl", Name: "Curl"})
	require.NoError(t, err)
	assert.Equal(t, "8-12", plain.RepsPerSet)
	assert.Equal(t, 2, plain.OrderIndex)
	assert.Equal(t, domain.ExerciseTypeWeight, plain.Exercise.ExerciseType)
	assert.Equal(t, "lbs", plain.Exercise.MeasurementUnit)
	assert.NotEqual(t, timed.ID, plain.ID)

	_, err = tr.LogSet(ctx, plain.ID, 1, Performance{Reps: intPtr(12), Weight: floatPtr(20)})
	require.NoError(t, err)
	rows := p.logRows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsAddedExercise)
	assert.Equal(t, "curl", rows[0].ExerciseID)
}

func TestTracker_AddExerciseAlreadyInSession(t *testing.T) {
	p := newRecordingPersister()
	tr, _, _ := newTestTracker(t, benchWorkout(3, 60), p, FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	_, err := tr.LogSet(ctx, "we-bench", 1, Performance{Reps: intPtr(10), Weight: floatPtr(100)})
	require.NoError(t, err)

	_, err = tr.AddExercise(domain.Exercise{ID: "bench", Name: "Bench Press"})
	assert.ErrorIs(t, err, ErrDuplicateExercise)

	curl, err := tr.AddExercise(domain.Exercise{ID: "curl", Name: "Curl"})
	require.NoError(t, err)
	_, err = tr.AddExercise(domain.Exercise{ID: "curl", Name: "Curl"})
	assert.ErrorIs(t, err, ErrDuplicateExercise)

	_, err = tr.LogSet(ctx, curl.ID, 1, Performance{Reps: intPtr(5), Weight: floatPtr(60)})
	require.NoError(t, err)

	rows := p.logRows()
	require.Len(t, rows, 2)
	bench := p.logs[logKey{tr.SessionID(), "bench", 1}]
	require.NotNil(t, bench.ActualReps)
	assert.Equal(t, 10, *bench.ActualReps)
	assert.Equal(t, 100.0, *bench.ActualWeight)
	assert.False(t, bench.IsAddedExercise)
	assert.Len(t, tr.slots, 2, "bench and curl only")
}

func TestTracker_RepeatedPrescriptionIsMerged(t *testing.T) {
	workout := benchWorkout(3, 60)
	repeat := workout.Exercises[0]
	repeat.ID = "we-bench-2"
	repeat.Sets = 2
	repeat.OrderIndex = 1
	workout.Exercises = append(workout.Exercises, repeat)

	p := newRecordingPersister()
	tr, _, _ := newTestTracker(t, workout, p, FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	require.Len(t, tr.slots, 1)
	assert.Equal(t, 5, tr.slots[0].Sets)

	_, err := tr.LogSet(ctx, "we-bench-2", 1, Performance{Reps: intPtr(1)})
	assert.ErrorIs(t, err, ErrUnknownExercise)

	for set := 1; set <= 5; set++ {
		_, err := tr.CompleteSet(ctx, "we-bench", set)
		require.NoError(t, err)
	}
	assert.Len(t, p.logRows(), 5)
	assert.True(t, tr.IsComplete())
}

func TestTracker_LogSetKeepsOnlyTypeFields(t *testing.T) {
	workout := &domain.Workout{ID: "w", Exercises: []domain.WorkoutExercise{
		{ID: "a", ExerciseID: "bw", Sets: 1, Exercise: &domain.Exercise{ID: "bw", ExerciseType: domain.ExerciseTypeBodyweight}},
		{ID: "b", ExerciseID: "time", Sets: 1, Exercise: &domain.Exercise{ID: "time", ExerciseType: domain.ExerciseTypeTime}},
		{ID: "c", ExerciseID: "dist", Sets: 1, Exercise: &domain.Exercise{ID: "dist", ExerciseType: domain.ExerciseTypeDistance, MeasurementUnit: "km"}},
	}}
	tr, _, _ := newTestTracker(t, workout, newRecordingPersister(), FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	all := Performance{Reps: intPtr(10), Weight: floatPtr(40), DurationSeconds: intPtr(30), Distance: floatPtr(2.5), Notes: stringPtr("ok")}

	bw, err := tr.LogSet(ctx, "a", 1, all)
	require.NoError(t, err)
	assert.Equal(t, 10, *bw.Reps)
	assert.Nil(t, bw.Weight)
	assert.Nil(t, bw.DurationSeconds)
	assert.Equal(t, "ok", bw.Notes)

	timed, err := tr.LogSet(ctx, "b", 1, all)
	require.NoError(t, err)
	assert.Nil(t, timed.Reps)
	assert.Equal(t, 30, *timed.DurationSeconds)

	dist, err := tr.LogSet(ctx, "c", 1, all)
	require.NoError(t, err)
	assert.Nil(t, dist.Reps)
	assert.Equal(t, 2.5, *dist.Distance)
	assert.Equal(t, "km", dist.DistanceUnit)

	// a later partial edit keeps earlier values
	dist, err = tr.LogSet(ctx, "c", 1, Performance{DifficultyRating: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 2.5, *dist.Distance)
	assert.Equal(t, 4, *dist.DifficultyRating)
	assert.Equal(t, &SetRef{SlotID: "c", SetNumber: 1}, tr.Snapshot().Editing)
}

func TestTracker_RestOnlyWhenMoreSetsAndRestConfigured(t *testing.T) {
	tr, _, _ := newTestTracker(t, benchWorkout(2, 0), newRecordingPersister(), FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	res, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	assert.False(t, res.RestStarted)
	assert.Equal(t, StateInProgress, tr.State())
}

func TestTracker_RestCountdownReachesZero(t *testing.T) {
	tr, tickers, _ := newTestTracker(t, benchWorkout(3, 3), newRecordingPersister(), FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	_, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.GreaterOrEqual(t, tr.RestRemaining(), 0)
		require.True(t, tickers.tick())
	}
	require.Eventually(t, func() bool { return tr.State() == StateInProgress }, time.Second, time.Millisecond)
	assert.Equal(t, 0, tr.RestRemaining())
}

func TestTracker_GuidedFlowAdvancesCursor(t *testing.T) {
	workout := benchWorkout(2, 0)
	workout.Exercises = append(workout.Exercises, domain.WorkoutExercise{
		ID: "we-row", ExerciseID: "row", Sets: 1, OrderIndex: 1,
		Exercise: &domain.Exercise{ID: "row", ExerciseType: domain.ExerciseTypeWeight},
	})
	tr, _, _ := newTestTracker(t, workout, newRecordingPersister(), FlowGuided)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	assert.Equal(t, &Cursor{ExerciseIndex: 0, SetNumber: 1}, tr.Snapshot().Cursor)
	_, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	assert.Equal(t, &Cursor{ExerciseIndex: 0, SetNumber: 2}, tr.Snapshot().Cursor)
	_, err = tr.CompleteSet(ctx, "we-bench", 2)
	require.NoError(t, err)
	assert.Equal(t, &Cursor{ExerciseIndex: 1, SetNumber: 1}, tr.Snapshot().Cursor)
	_, err = tr.CompleteSet(ctx, "we-row", 1)
	require.NoError(t, err)
	assert.Equal(t, &Cursor{ExerciseIndex: 2, SetNumber: 1}, tr.Snapshot().Cursor)
}

func TestTracker_PrescriptionsOrderedByIndex(t *testing.T) {
	workout := &domain.Workout{ID: "w", Exercises: []domain.WorkoutExercise{
		{ID: "second", ExerciseID: "b", Sets: 1, OrderIndex: 1},
		{ID: "first", ExerciseID: "a", Sets: 1, OrderIndex: 0},
	}}
	tr, _, _ := newTestTracker(t, workout, newRecordingPersister(), FlowFreeForm)

	snap := tr.Snapshot()
	require.Len(t, snap.Exercises, 2)
	assert.Equal(t, "first", snap.Exercises[0].ID)
	assert.Equal(t, "a", snap.Exercises[0].Exercise.ID)
	assert.Equal(t, domain.ExerciseTypeWeight, snap.Exercises[0].Exercise.ExerciseType)
}

func TestTracker_PersistenceFailuresDoNotBlock(t *testing.T) {
	p := newRecordingPersister()
	p.upsertErr = errors.New("db down")
	p.completeErr = errors.New("db down")
	var failures []string

	tickers := &manualTickers{}
	tr := NewTracker("user-1", benchWorkout(1, 0), p, Options{
		Tickers:        tickers.factory,
		OnPersistError: func(op string, _ error) { failures = append(failures, op) },
	})
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx))
	_, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tr.Progress())

	_, err = tr.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, tr.State())
	assert.Equal(t, []string{"upsert_log", "complete_session"}, failures)
}

func TestTracker_UnsavedModeWhenCreateFails(t *testing.T) {
	p := newRecordingPersister()
	p.createErr = errors.New("db down")
	tr, _, _ := newTestTracker(t, benchWorkout(1, 0), p, FlowFreeForm)
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx))
	assert.False(t, tr.Saved())
	assert.True(t, strings.HasPrefix(tr.SessionID(), "unsaved-"))

	_, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	_, err = tr.Complete(ctx)
	require.NoError(t, err)

	assert.Zero(t, p.upserts, "no log writes without a session row")
	assert.Equal(t, StateCompleted, tr.State())
}

func TestTracker_Validation(t *testing.T) {
	tr, _, _ := newTestTracker(t, benchWorkout(3, 0), newRecordingPersister(), FlowFreeForm)
	ctx := context.Background()

	_, err := tr.LogSet(ctx, "we-bench", 1, Performance{})
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = tr.Complete(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, tr.Start(ctx))
	assert.ErrorIs(t, tr.Start(ctx), ErrAlreadyStarted)

	_, err = tr.LogSet(ctx, "nope", 1, Performance{})
	assert.ErrorIs(t, err, ErrUnknownExercise)
	_, err = tr.LogSet(ctx, "we-bench", 0, Performance{})
	assert.ErrorIs(t, err, ErrInvalidSetNumber)
	_, err = tr.AddExtraSet("nope")
	assert.ErrorIs(t, err, ErrUnknownExercise)
}

func TestTracker_CompleteStopsRest(t *testing.T) {
	tr, _, clock := newTestTracker(t, benchWorkout(3, 90), newRecordingPersister(), FlowFreeForm)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx))

	_, err := tr.CompleteSet(ctx, "we-bench", 1)
	require.NoError(t, err)
	require.Equal(t, StateResting, tr.State())

	clock.Advance(29 * time.Second)
	minutes, err := tr.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
	assert.Equal(t, 0, tr.RestRemaining())

	// logging after completion is allowed but never restarts the rest countdown
	res, err := tr.CompleteSet(ctx, "we-bench", 2)
	require.NoError(t, err)
	assert.False(t, res.RestStarted)
	assert.Equal(t, StateCompleted, tr.State())
}
