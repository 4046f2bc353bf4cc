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

type WorkoutSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.WorkoutSession
}

func NewWorkoutSessionRepository() *WorkoutSessionRepository {
	return &WorkoutSessionRepository{sessions: make(map[string]domain.WorkoutSession)}
}

func (r *WorkoutSessionRepository) Create(_ context.Context, session *domain.WorkoutSession) error {
	if session.UserID == "" {
		return errors.New("session user ID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = newID()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	stored := *session
	stored.Workout = nil
	stored.Logs = nil
	r.sessions[session.ID] = stored
	return nil
}

func (r *WorkoutSessionRepository) GetByID(_ context.Context, id string) (*domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *WorkoutSessionRepository) Complete(_ context.Context, id string, completedAt time.Time, durationMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	at := completedAt.UTC()
	s.CompletedAt = &at
	s.TotalDurationMinutes = &durationMinutes
	r.sessions[id] = s
	return nil
}

func (r *WorkoutSessionRepository) ListByUserID(_ context.Context, userID string, limit int) ([]domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt.After(result[j].StartedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type logKey struct {
	sessionID  string
	exerciseID string
	setNumber  int
}

type PerformanceLogRepository struct {
	mu   sync.RWMutex
	logs map[logKey]domain.ExercisePerformanceLog

	// FailUpsert makes Upsert return this error. Test hook.
	FailUpsert error
}

func NewPerformanceLogRepository() *PerformanceLogRepository {
	return &PerformanceLogRepository{logs: make(map[logKey]domain.ExercisePerformanceLog)}
}

func (r *PerformanceLogRepository) Upsert(_ context.Context, entry *domain.ExercisePerformanceLog) error {
	if entry.SessionID == "" || entry.ExerciseID == "" || entry.SetNumber < 1 {
		return errors.New("session ID, exercise ID and a positive set number are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpsert != nil {
		return r.FailUpsert
	}
	key := logKey{entry.SessionID, entry.ExerciseID, entry.SetNumber}
	if existing, ok := r.logs[key]; ok {
		entry.ID = existing.ID
	} else {
		entry.ID = newID()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}
	stored := *entry
	stored.Exercise = nil
	r.logs[key] = stored
	return nil
}

func (r *PerformanceLogRepository) GetBySessionIDs(_ context.Context, sessionIDs []string) ([]domain.ExercisePerformanceLog, error) {
	return r.filter(sessionIDs, func(domain.ExercisePerformanceLog) bool { return true }), nil
}

func (r *PerformanceLogRepository) GetCompletedByExercise(_ context.Context, sessionIDs []string, exerciseID string) ([]domain.ExercisePerformanceLog, error) {
	return r.filter(sessionIDs, func(l domain.ExercisePerformanceLog) bool {
		return l.Completed && l.ExerciseID == exerciseID
	}), nil
}

func (r *PerformanceLogRepository) filter(sessionIDs []string, keep func(domain.ExercisePerformanceLog) bool) []domain.ExercisePerformanceLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = struct{}{}
	}
	result := []domain.ExercisePerformanceLog{}
	for _, l := range r.logs {
		if _, ok := wanted[l.SessionID]; ok && keep(l) {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SessionID != result[j].SessionID {
			return result[i].SessionID < result[j].SessionID
		}
		if result[i].ExerciseID != result[j].ExerciseID {
			return result[i].ExerciseID < result[j].ExerciseID
		}
		return result[i].SetNumber < result[j].SetNumber
	})
	return result
}
