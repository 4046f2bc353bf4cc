package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
)

const demoSessionCount = 3

// DemoService fills a fresh account with believable workout history.
type DemoService interface {
	// SeedHistory records completed sessions on each of the last three days,
	// cycling through the active plan's workouts. It returns how many were created.
	SeedHistory(ctx context.Context, userID string) (int, error)
}

type demoService struct {
	store *repository.Store
	now   Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDemoService(store *repository.Store, clock Clock, seed int64) DemoService {
	return &demoService{
		store: store,
		now:   clockOrDefault(clock),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *demoService) SeedHistory(ctx context.Context, userID string) (int, error) {
	if !IsValidUserID(userID) {
		return 0, ErrInvalidUserID
	}
	plan, err := s.store.Plans.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNoActivePlan
		}
		return 0, err
	}
	if err := loadPlanTree(ctx, s.store, plan); err != nil {
		return 0, err
	}
	if len(plan.Workouts) == 0 {
		return 0, fmt.Errorf("%w: active plan has no workouts", ErrWorkoutNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	now := s.now()
	for i := 0; i < demoSessionCount; i++ {
		day := now.AddDate(0, 0, -(i + 1))
		startedAt := time.Date(day.Year(), day.Month(), day.Day(), 18, 0, 0, 0, day.Location()).UTC()
		workout := plan.Workouts[i%len(plan.Workouts)]

		row := &domain.WorkoutSession{
			UserID:    userID,
			WorkoutID: workout.ID,
			StartedAt: startedAt,
		}
		if i == 0 {
			row.Notes = "Felt good today, increased weights on most exercises"
		}
		if err := s.store.Sessions.Create(ctx, row); err != nil {
			log.Warnf("demo session %d for user %s not created: %s", i+1, userID, err)
			continue
		}
		created++

		for j, we := range workout.Exercises {
			exerciseType := domain.ExerciseTypeWeight
			if we.Exercise != nil {
				exerciseType = we.Exercise.ExerciseType.OrDefault()
			}
			for set := 1; set <= we.Sets; set++ {
				entry := s.demoLog(exerciseType)
				entry.SessionID = row.ID
				entry.ExerciseID = we.ExerciseID
				entry.SetNumber = set
				entry.PlannedReps = we.RepsPerSet
				entry.RestSeconds = we.RestSeconds
				entry.LoggedAt = startedAt.Add(time.Duration(j*we.Sets+set) * 3 * time.Minute)
				if set == 1 && i == 0 {
					entry.Notes = "This felt challenging but doable"
				}
				s.upsert(ctx, entry)
			}
			if i == 0 && j == 0 {
				entry := s.extraLog(exerciseType)
				entry.SessionID = row.ID
				entry.ExerciseID = we.ExerciseID
				entry.SetNumber = we.Sets + 1
				entry.PlannedReps = we.RepsPerSet
				entry.RestSeconds = we.RestSeconds
				entry.LoggedAt = startedAt.Add(time.Duration(we.Sets)*3*time.Minute + time.Minute)
				s.upsert(ctx, entry)
			}
		}

		minutes := 45 + s.rng.Intn(30)
		completedAt := startedAt.Add(time.Duration(minutes) * time.Minute)
		if err := s.store.Sessions.Complete(ctx, row.ID, completedAt, minutes); err != nil {
			log.Warnf("demo session %s not completed: %s", row.ID, err)
		}
	}

	log.Infof("seeded %d demo sessions for user %s", created, userID)
	return created, nil
}

func (s *demoService) upsert(ctx context.Context, entry *domain.ExercisePerformanceLog) {
	if err := s.store.Logs.Upsert(ctx, entry); err != nil {
		log.Warnf("demo log for session %s not saved: %s", entry.SessionID, err)
	}
}

// demoLog returns a completed set with values typical for the exercise type.
func (s *demoService) demoLog(exerciseType domain.ExerciseType) *domain.ExercisePerformanceLog {
	entry := &domain.ExercisePerformanceLog{Completed: true}
	switch exerciseType {
	case domain.ExerciseTypeBodyweight:
		entry.ActualReps = intRef(10 + s.rng.Intn(10))
	case domain.ExerciseTypeTime:
		entry.DurationSeconds = intRef((5 + s.rng.Intn(6)) * 10)
	case domain.ExerciseTypeDistance:
		entry.Distance = floatRef(float64(500 + s.rng.Intn(500)))
		entry.DistanceUnit = "meters"
	default:
		entry.ActualReps = intRef(8 + s.rng.Intn(5))
		entry.ActualWeight = floatRef(float64((10 + s.rng.Intn(10)) * 5))
	}
	return entry
}

func (s *demoService) extraLog(exerciseType domain.ExerciseType) *domain.ExercisePerformanceLog {
	entry := &domain.ExercisePerformanceLog{
		Completed:  true,
		IsExtraSet: true,
		Notes:      "Added an extra set for more volume",
	}
	if exerciseType == domain.ExerciseTypeTime {
		entry.DurationSeconds = intRef((4 + s.rng.Intn(4)) * 10)
	} else {
		entry.ActualReps = intRef(6 + s.rng.Intn(5))
	}
	if exerciseType == domain.ExerciseTypeWeight {
		entry.ActualWeight = floatRef(float64((8 + s.rng.Intn(8)) * 5))
	}
	return entry
}

func intRef(v int) *int           { return &v }
func floatRef(v float64) *float64 { return &v }
