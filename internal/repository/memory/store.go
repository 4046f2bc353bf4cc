// Package memory holds map-backed repositories. They back the "memory"
// database driver and the service tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
)

// NewStore returns a repository.Store whose repositories share nothing but the process.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:            NewUserRepository(),
		Profiles:         NewProfileRepository(),
		Exercises:        NewExerciseRepository(),
		Plans:            NewWorkoutPlanRepository(),
		Workouts:         NewWorkoutRepository(),
		WorkoutExercises: NewWorkoutExerciseRepository(),
		Sessions:         NewWorkoutSessionRepository(),
		Logs:             NewPerformanceLogRepository(),
	}
}

func newID() string {
	return uuid.NewString()
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" || user.Email == "" || user.PasswordHash == "" {
		return errors.New("user id, email and password hash are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	if _, ok := r.users[user.ID]; ok {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) SetEmailVerified(_ context.Context, id string) error {
	return r.update(id, func(u *domain.User) { u.EmailVerified = true })
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) update(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]domain.Profile)}
}

func (r *ProfileRepository) Insert(_ context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		return errors.New("profile id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; ok {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *ProfileRepository) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[id]
	return ok, nil
}

// Update applies fields keyed by their bson names, matching the MongoDB implementation.
func (r *ProfileRepository) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	for key, value := range fields {
		if err := applyProfileField(&p, key, value); err != nil {
			return err
		}
	}
	r.profiles[id] = p
	return nil
}

func applyProfileField(p *domain.Profile, key string, value interface{}) error {
	var ok bool
	switch key {
	case "email":
		p.Email, ok = value.(string)
	case "age":
		p.Age, ok = value.(int)
	case "sex":
		p.Sex, ok = value.(domain.Sex)
	case "heightCm":
		var v float64
		v, ok = value.(float64)
		p.HeightCm = &v
	case "weightKg":
		var v float64
		v, ok = value.(float64)
		p.WeightKg = &v
	case "dateOfBirth":
		var v time.Time
		v, ok = value.(time.Time)
		p.DateOfBirth = &v
	case "trainingDaysPerWeek":
		p.TrainingDaysPerWeek, ok = value.(int)
	case "experienceLevel":
		p.ExperienceLevel, ok = value.(domain.ExperienceLevel)
	case "goals":
		p.Goals, ok = value.([]string)
	case "rehabDetails":
		p.RehabDetails, ok = value.(string)
	case "sportDetails":
		p.SportDetails, ok = value.(string)
	case "healthConditions":
		p.HealthConditions, ok = value.([]string)
	case "medicalNotes":
		p.MedicalNotes, ok = value.(string)
	case "aiInstructions":
		p.AIInstructions, ok = value.(string)
	case "updatedAt":
		p.UpdatedAt, ok = value.(time.Time)
	default:
		return errors.New("unknown profile field: " + key)
	}
	if !ok {
		return errors.New("invalid value for profile field: " + key)
	}
	return nil
}

type ExerciseRepository struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
}

func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{exercises: make(map[string]domain.Exercise)}
}

func (r *ExerciseRepository) Create(_ context.Context, exercise *domain.Exercise) error {
	if exercise.Name == "" {
		return errors.New("exercise name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exercises {
		if e.Name == exercise.Name {
			return repository.ErrConflict
		}
	}
	if exercise.ID == "" {
		exercise.ID = newID()
	}
	exercise.ExerciseType = exercise.ExerciseType.OrDefault()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *ExerciseRepository) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *ExerciseRepository) GetByIDs(_ context.Context, ids []string) (map[string]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]domain.Exercise, len(ids))
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			result[id] = e
		}
	}
	return result, nil
}

func (r *ExerciseRepository) List(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	query := strings.ToLower(filter.Query)
	result := []domain.Exercise{}
	for _, e := range r.exercises {
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Name), query) &&
			!strings.Contains(strings.ToLower(e.Category), query) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && e.Difficulty != filter.Difficulty {
			continue
		}
		if filter.ExerciseType != "" && e.ExerciseType != filter.ExerciseType {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *ExerciseRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.exercises)), nil
}

func (r *ExerciseRepository) SetVideoObjectKey(_ context.Context, id, objectKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.VideoObjectKey = objectKey
	e.UpdatedAt = time.Now().UTC()
	r.exercises[id] = e
	return nil
}
