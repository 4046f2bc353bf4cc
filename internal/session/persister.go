package session

import (
	"context"
	"time"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
)

// Persister stores what the tracker does. Every call is best-effort: the
// tracker logs a failure and keeps going.
type Persister interface {
	CreateSession(ctx context.Context, session *domain.WorkoutSession) error
	UpsertLog(ctx context.Context, log *domain.ExercisePerformanceLog) error
	CompleteSession(ctx context.Context, sessionID string, completedAt time.Time, durationMinutes int) error
}

type repositoryPersister struct {
	sessions repository.WorkoutSessionRepository
	logs     repository.PerformanceLogRepository
}

// NewRepositoryPersister writes through the session and performance log repositories.
func NewRepositoryPersister(sessions repository.WorkoutSessionRepository, logs repository.PerformanceLogRepository) Persister {
	return &repositoryPersister{sessions: sessions, logs: logs}
}

func (p *repositoryPersister) CreateSession(ctx context.Context, session *domain.WorkoutSession) error {
	return p.sessions.Create(ctx, session)
}

func (p *repositoryPersister) UpsertLog(ctx context.Context, log *domain.ExercisePerformanceLog) error {
	return p.logs.Upsert(ctx, log)
}

func (p *repositoryPersister) CompleteSession(ctx context.Context, sessionID string, completedAt time.Time, durationMinutes int) error {
	return p.sessions.Complete(ctx, sessionID, completedAt, durationMinutes)
}
