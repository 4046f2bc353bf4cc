package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
)

type WorkoutPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]domain.WorkoutPlan
	seq   int64

	// FailDeactivate makes DeactivateAllForUser return this error. Test hook.
	FailDeactivate error
}

func NewWorkoutPlanRepository() *WorkoutPlanRepository {
	return &WorkoutPlanRepository{plans: make(map[string]domain.WorkoutPlan)}
}

func (r *WorkoutPlanRepository) Create(_ context.Context, plan *domain.WorkoutPlan) error {
	if plan.UserID == "" || plan.Name == "" {
		return errors.New("plan user ID and name are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = newID()
	// A strictly increasing timestamp keeps "newest first" stable within one clock tick.
	r.seq++
	now := time.Now().UTC().Add(time.Duration(r.seq))
	plan.CreatedAt = now
	plan.UpdatedAt = now
	stored := *plan
	stored.Workouts = nil
	r.plans[plan.ID] = stored
	return nil
}

func (r *WorkoutPlanRepository) GetByID(_ context.Context, id string) (*domain.WorkoutPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *WorkoutPlanRepository) GetByUserID(_ context.Context, userID string) ([]domain.WorkoutPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.WorkoutPlan{}
	for _, p := range r.plans {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *WorkoutPlanRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	plans, _ := r.GetByUserID(ctx, userID)
	for _, p := range plans {
		if p.Active {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *WorkoutPlanRepository) DeactivateAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDeactivate != nil {
		return r.FailDeactivate
	}
	for id, p := range r.plans {
		if p.UserID == userID && p.Active {
			p.Active = false
			p.UpdatedAt = time.Now().UTC()
			r.plans[id] = p
		}
	}
	return nil
}

type WorkoutRepository struct {
	mu       sync.RWMutex
	workouts map[string]domain.Workout
}

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{workouts: make(map[string]domain.Workout)}
}

func (r *WorkoutRepository) Create(_ context.Context, workout *domain.Workout) error {
	if workout.PlanID == "" || workout.Name == "" {
		return errors.New("workout plan ID and name are required")
	}
	if workout.DayOfWeek < 0 || workout.DayOfWeek > 6 {
		return errors.New("workout day of week must be between 0 and 6")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = newID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	stored := *workout
	stored.Exercises = nil
	r.workouts[workout.ID] = stored
	return nil
}

func (r *WorkoutRepository) GetByID(_ context.Context, id string) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *WorkoutRepository) GetByPlanID(_ context.Context, planID string) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Workout{}
	for _, w := range r.workouts {
		if w.PlanID == planID {
			result = append(result, w)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type WorkoutExerciseRepository struct {
	mu    sync.RWMutex
	items map[string]domain.WorkoutExercise
}

func NewWorkoutExerciseRepository() *WorkoutExerciseRepository {
	return &WorkoutExerciseRepository{items: make(map[string]domain.WorkoutExercise)}
}

func (r *WorkoutExerciseRepository) Create(_ context.Context, we *domain.WorkoutExercise) error {
	if we.WorkoutID == "" || we.ExerciseID == "" {
		return errors.New("workout ID and exercise ID are required")
	}
	if we.Sets < 1 {
		return errors.New("sets must be at least 1")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	we.ID = newID()
	we.CreatedAt = time.Now().UTC()
	stored := *we
	stored.Exercise = nil
	r.items[we.ID] = stored
	return nil
}

func (r *WorkoutExerciseRepository) GetByWorkoutID(_ context.Context, workoutID string) ([]domain.WorkoutExercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.WorkoutExercise{}
	for _, we := range r.items {
		if we.WorkoutID == workoutID {
			result = append(result, we)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}
