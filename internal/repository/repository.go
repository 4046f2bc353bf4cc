package repository

import (
	"context" // Standard for request-scoped deadlines, cancellation signals, etc.
	"time"

	"fittrack/fitness-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetEmailVerified(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// ProfileRepository stores user_profiles. Update applies only the keys present in fields.
type ProfileRepository interface {
	Insert(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// ExerciseFilter narrows catalog listings. Empty fields match everything.
type ExerciseFilter struct {
	Query        string // case-insensitive match on name or category
	Category     string
	Difficulty   string
	ExerciseType domain.ExerciseType
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error) // ordered by name
	Count(ctx context.Context) (int64, error)
	SetVideoObjectKey(ctx context.Context, id, objectKey string) error
}

// WorkoutPlanRepository defines the interface for interacting with workout plan data.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) error
	GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.WorkoutPlan, error) // newest first
	GetActiveByUserID(ctx context.Context, userID string) (*domain.WorkoutPlan, error)
	DeactivateAllForUser(ctx context.Context, userID string) error
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) error
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	GetByPlanID(ctx context.Context, planID string) ([]domain.Workout, error) // sorted by day of week
}

// WorkoutExerciseRepository stores the per-workout exercise prescriptions.
type WorkoutExerciseRepository interface {
	Create(ctx context.Context, we *domain.WorkoutExercise) error
	GetByWorkoutID(ctx context.Context, workoutID string) ([]domain.WorkoutExercise, error) // sorted by order index
}

// WorkoutSessionRepository stores workout_sessions.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) error
	GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error)
	Complete(ctx context.Context, id string, completedAt time.Time, durationMinutes int) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]domain.WorkoutSession, error) // newest first
}

// PerformanceLogRepository stores exercise_performance_logs.
type PerformanceLogRepository interface {
	// Upsert inserts or replaces the row keyed by (session, exercise, set number).
	Upsert(ctx context.Context, log *domain.ExercisePerformanceLog) error
	GetBySessionIDs(ctx context.Context, sessionIDs []string) ([]domain.ExercisePerformanceLog, error)
	GetCompletedByExercise(ctx context.Context, sessionIDs []string, exerciseID string) ([]domain.ExercisePerformanceLog, error)
}

// Store bundles every repository the services need.
type Store struct {
	Users            UserRepository
	Profiles         ProfileRepository
	Exercises        ExerciseRepository
	Plans            WorkoutPlanRepository
	Workouts         WorkoutRepository
	WorkoutExercises WorkoutExerciseRepository
	Sessions         WorkoutSessionRepository
	Logs             PerformanceLogRepository
}
