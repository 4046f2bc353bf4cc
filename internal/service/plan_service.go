package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/generator"
	"fittrack/fitness-app/internal/metrics"
	"fittrack/fitness-app/internal/repository"
)

var (
	ErrPlanNotFound    = errors.New("workout plan not found")
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrNoActivePlan    = errors.New("no active workout plan")
)

const recommendationSessions = 10

type PlanService interface {
	// CreateAIPlan generates a plan for the user, makes it the only active one and returns its ID.
	CreateAIPlan(ctx context.Context, userID string) (string, error)
	GetActivePlan(ctx context.Context, userID string) (*domain.WorkoutPlan, error)
	GetPlan(ctx context.Context, userID, planID string) (*domain.WorkoutPlan, error)
	ListPlans(ctx context.Context, userID string) ([]domain.WorkoutPlan, error)
	// GetRecommendations never fails; any problem yields an empty list.
	GetRecommendations(ctx context.Context, userID string) []string
}

type planService struct {
	store    *repository.Store
	strategy generator.Strategy
	metrics  *metrics.Manager
}

func NewPlanService(store *repository.Store, strategy generator.Strategy, metricsManager *metrics.Manager) PlanService {
	return &planService{
		store:    store,
		strategy: strategy,
		metrics:  metricsManager,
	}
}

func (s *planService) CreateAIPlan(ctx context.Context, userID string) (string, error) {
	if !IsValidUserID(userID) {
		return "", ErrInvalidUserID
	}

	profile, err := s.store.Profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("fetch profile: %w", err)
	}

	catalog, err := s.store.Exercises.List(ctx, repository.ExerciseFilter{})
	if err != nil {
		return "", fmt.Errorf("fetch exercise catalog: %w", err)
	}

	draft := s.strategy.GeneratePlan(ctx, profile, catalog)
	if s.metrics != nil {
		s.metrics.CounterPlansGenerated.WithLabelValues(s.strategy.Name()).Inc()
	}

	// Deactivation and insertion are separate writes. A failed deactivation
	// leaves older plans active; the newest active plan still wins on reads.
	if err := s.store.Plans.DeactivateAllForUser(ctx, userID); err != nil {
		log.Errorf("deactivate plans of user %s: %s", userID, err)
		if s.metrics != nil {
			s.metrics.CounterPersistenceErrors.WithLabelValues("deactivate_plans").Inc()
		}
	}

	plan := &domain.WorkoutPlan{
		UserID:        userID,
		Name:          draft.Name,
		Description:   draft.Description,
		DurationWeeks: draft.DurationWeeks,
		AIGenerated:   true,
		Active:        true,
	}
	if err := s.store.Plans.Create(ctx, plan); err != nil {
		return "", fmt.Errorf("create plan: %w", err)
	}

	for _, wd := range draft.Workouts {
		workout := &domain.Workout{
			PlanID:      plan.ID,
			Name:        wd.Name,
			Description: wd.Description,
			DayOfWeek:   wd.DayOfWeek,
		}
		if err := s.store.Workouts.Create(ctx, workout); err != nil {
			return "", fmt.Errorf("create workout %q: %w", wd.Name, err)
		}
		for i, ed := range wd.Exercises {
			sets := ed.Sets
			if sets < 1 {
				sets = 1
			}
			order := ed.OrderIndex
			if order < 0 {
				order = i
			}
			we := &domain.WorkoutExercise{
				WorkoutID:   workout.ID,
				ExerciseID:  ed.ExerciseID,
				Sets:        sets,
				RepsPerSet:  ed.RepsPerSet,
				RestSeconds: ed.RestSeconds,
				OrderIndex:  order,
				Notes:       ed.Notes,
			}
			if err := s.store.WorkoutExercises.Create(ctx, we); err != nil {
				return "", fmt.Errorf("create workout exercise: %w", err)
			}
		}
	}

	log.Infof("created %s plan %s for user %s with %d workouts", s.strategy.Name(), plan.ID, userID, len(draft.Workouts))
	return plan.ID, nil
}

func (s *planService) GetActivePlan(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	if !IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	plan, err := s.store.Plans.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	if err := loadPlanTree(ctx, s.store, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, userID, planID string) (*domain.WorkoutPlan, error) {
	plan, err := s.store.Plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	// another user's plan is reported as missing
	if plan.UserID != userID {
		return nil, ErrPlanNotFound
	}
	if err := loadPlanTree(ctx, s.store, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, userID string) ([]domain.WorkoutPlan, error) {
	if !IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	plans, err := s.store.Plans.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.WorkoutPlan{}
	}
	return plans, nil
}

func (s *planService) GetRecommendations(ctx context.Context, userID string) []string {
	if !IsValidUserID(userID) {
		return []string{}
	}
	profile, err := s.store.Profiles.GetByID(ctx, userID)
	if err != nil {
		log.Warnf("recommendations for %s: profile unavailable: %s", userID, err)
		return []string{}
	}
	sessions, err := s.store.Sessions.ListByUserID(ctx, userID, recommendationSessions)
	if err != nil {
		log.Warnf("recommendations for %s: sessions unavailable: %s", userID, err)
		return []string{}
	}
	recommendations := s.strategy.Recommendations(ctx, profile, sessions)
	if recommendations == nil {
		return []string{}
	}
	return recommendations
}

// loadPlanTree attaches workouts, their prescriptions and catalog entries to plan.
func loadPlanTree(ctx context.Context, store *repository.Store, plan *domain.WorkoutPlan) error {
	workouts, err := store.Workouts.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("fetch workouts of plan %s: %w", plan.ID, err)
	}
	for i := range workouts {
		if err := loadWorkoutExercises(ctx, store, &workouts[i]); err != nil {
			return err
		}
	}
	plan.Workouts = workouts
	return nil
}

func loadWorkoutExercises(ctx context.Context, store *repository.Store, workout *domain.Workout) error {
	prescriptions, err := store.WorkoutExercises.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return fmt.Errorf("fetch exercises of workout %s: %w", workout.ID, err)
	}
	ids := make([]string, 0, len(prescriptions))
	for _, we := range prescriptions {
		ids = append(ids, we.ExerciseID)
	}
	catalog, err := store.Exercises.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetch catalog entries of workout %s: %w", workout.ID, err)
	}
	for i := range prescriptions {
		if exercise, ok := catalog[prescriptions[i].ExerciseID]; ok {
			exercise := exercise
			prescriptions[i].Exercise = &exercise
		}
	}
	workout.Exercises = prescriptions
	return nil
}
