package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/generator"
	"fittrack/fitness-app/internal/repository"
	"fittrack/fitness-app/internal/repository/memory"
)

const (
	testUserID  = "3f2b8c1e-6a4d-4f1a-9b2e-7c5d8e9f0a1b"
	otherUserID = "7a1c2d3e-4b5f-4a6b-8c7d-9e0f1a2b3c4d"
)

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store := memory.NewStore()
	_, err := NewExerciseService(store.Exercises, nil, nil).SeedDefaults(context.Background())
	require.NoError(t, err)
	return store
}

func seedProfile(t *testing.T, store *repository.Store, userID string, days int) *domain.Profile {
	t.Helper()
	profile := &domain.Profile{
		ID:                  userID,
		Age:                 35,
		Sex:                 domain.SexFemale,
		TrainingDaysPerWeek: days,
		ExperienceLevel:     domain.ExperienceIntermediate,
		Goals:               []string{domain.GoalStrength},
	}
	require.NoError(t, store.Profiles.Insert(context.Background(), profile))
	return profile
}

// seedPlan creates a profile and a generated active plan for userID.
func seedPlan(t *testing.T, store *repository.Store, userID string, days int) string {
	t.Helper()
	seedProfile(t, store, userID, days)
	planID, err := NewPlanService(store, generator.NewMock(), nil).CreateAIPlan(context.Background(), userID)
	require.NoError(t, err)
	return planID
}

// seedWorkout creates a one-workout plan with the given prescriptions and returns the workout ID.
func seedWorkout(t *testing.T, store *repository.Store, userID string, day int, prescriptions ...domain.WorkoutExercise) string {
	t.Helper()
	ctx := context.Background()
	plan := &domain.WorkoutPlan{UserID: userID, Name: "Test Plan", DurationWeeks: 4, Active: true}
	require.NoError(t, store.Plans.Create(ctx, plan))
	workout := &domain.Workout{PlanID: plan.ID, Name: "Test Workout", DayOfWeek: day}
	require.NoError(t, store.Workouts.Create(ctx, workout))
	for i := range prescriptions {
		prescriptions[i].WorkoutID = workout.ID
		require.NoError(t, store.WorkoutExercises.Create(ctx, &prescriptions[i]))
	}
	return workout.ID
}

func exerciseByName(t *testing.T, store *repository.Store, name string) domain.Exercise {
	t.Helper()
	all, err := store.Exercises.List(context.Background(), repository.ExerciseFilter{})
	require.NoError(t, err)
	for _, e := range all {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("exercise %q not in catalog", name)
	return domain.Exercise{}
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
