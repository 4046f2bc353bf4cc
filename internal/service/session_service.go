package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/metrics"
	"fittrack/fitness-app/internal/repository"
	"fittrack/fitness-app/internal/session"
)

var ErrSessionNotFound = errors.New("workout session not found")

type StartSessionRequest struct {
	WorkoutID string       // empty picks today's workout of the active plan
	Flow      session.Flow // free_form when empty
}

// SessionService runs live workout sessions. Trackers are held in memory per
// session ID and only their owner may use them.
type SessionService interface {
	StartSession(ctx context.Context, userID string, req StartSessionRequest) (*session.Snapshot, error)
	GetSession(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	LogSet(ctx context.Context, userID, sessionID, slotID string, setNumber int, perf session.Performance) (session.SetLog, error)
	CompleteSet(ctx context.Context, userID, sessionID, slotID string, setNumber int) (session.CompleteResult, error)
	AddExtraSet(ctx context.Context, userID, sessionID, slotID string) (int, error)
	AddExercise(ctx context.Context, userID, sessionID, exerciseID string) (session.Slot, error)
	SkipRest(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	CompleteSession(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	// EvictIdle drops trackers untouched for longer than maxIdle and returns how many went.
	EvictIdle(maxIdle time.Duration) int
	Close()
}

type SessionOptions struct {
	Clock   Clock
	Tickers session.TickerFactory
}

type liveSession struct {
	tracker    *session.Tracker
	lastActive time.Time
}

type sessionService struct {
	store     *repository.Store
	persister session.Persister
	metrics   *metrics.Manager
	opts      SessionOptions
	now       Clock

	mu   sync.Mutex
	live map[string]*liveSession
}

func NewSessionService(store *repository.Store, metricsManager *metrics.Manager, opts SessionOptions) SessionService {
	return &sessionService{
		store:     store,
		persister: session.NewRepositoryPersister(store.Sessions, store.Logs),
		metrics:   metricsManager,
		opts:      opts,
		now:       clockOrDefault(opts.Clock),
		live:      make(map[string]*liveSession),
	}
}

func (s *sessionService) StartSession(ctx context.Context, userID string, req StartSessionRequest) (*session.Snapshot, error) {
	if !IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	if req.Flow != "" && req.Flow != session.FlowFreeForm && req.Flow != session.FlowGuided {
		return nil, fmt.Errorf("%w: unknown flow %q", ErrValidationFailed, req.Flow)
	}

	workout, err := s.resolveWorkout(ctx, userID, req.WorkoutID)
	if err != nil {
		return nil, err
	}

	tracker := session.NewTracker(userID, workout, s.persister, session.Options{
		Flow:           req.Flow,
		Now:            s.now,
		Tickers:        s.opts.Tickers,
		OnPersistError: s.persistFailed,
	})
	if err := tracker.Start(ctx); err != nil {
		tracker.Close()
		return nil, err
	}

	s.mu.Lock()
	s.live[tracker.SessionID()] = &liveSession{tracker: tracker, lastActive: s.now()}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.CounterSessionsStarted.Inc()
		s.metrics.GaugeActiveSessions.Inc()
	}
	log.Infof("user %s started session %s for workout %s (saved: %t)", userID, tracker.SessionID(), workout.ID, tracker.Saved())

	snap := tracker.Snapshot()
	return &snap, nil
}

// resolveWorkout picks the explicit workout, else the active plan's workout for
// today's weekday, else the plan's first workout.
func (s *sessionService) resolveWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	if workoutID != "" {
		workout, err := s.store.Workouts.GetByID(ctx, workoutID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrWorkoutNotFound
			}
			return nil, err
		}
		plan, err := s.store.Plans.GetByID(ctx, workout.PlanID)
		if err != nil || plan.UserID != userID {
			return nil, ErrWorkoutNotFound
		}
		if err := loadWorkoutExercises(ctx, s.store, workout); err != nil {
			return nil, err
		}
		return workout, nil
	}

	plan, err := s.store.Plans.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	workouts, err := s.store.Workouts.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrWorkoutNotFound
	}

	today := int(s.now().Weekday())
	chosen := workouts[0]
	for _, w := range workouts {
		if w.DayOfWeek == today {
			chosen = w
			break
		}
	}
	if err := loadWorkoutExercises(ctx, s.store, &chosen); err != nil {
		return nil, err
	}
	return &chosen, nil
}

func (s *sessionService) GetSession(_ context.Context, userID, sessionID string) (*session.Snapshot, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return nil, err
	}
	snap := tracker.Snapshot()
	return &snap, nil
}

func (s *sessionService) LogSet(ctx context.Context, userID, sessionID, slotID string, setNumber int, perf session.Performance) (session.SetLog, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return session.SetLog{}, err
	}
	entry, err := tracker.LogSet(ctx, slotID, setNumber, perf)
	if err != nil {
		return session.SetLog{}, err
	}
	s.countSet("logged")
	return entry, nil
}

func (s *sessionService) CompleteSet(ctx context.Context, userID, sessionID, slotID string, setNumber int) (session.CompleteResult, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return session.CompleteResult{}, err
	}
	result, err := tracker.CompleteSet(ctx, slotID, setNumber)
	if err != nil {
		return session.CompleteResult{}, err
	}
	s.countSet("completed")
	return result, nil
}

func (s *sessionService) AddExtraSet(_ context.Context, userID, sessionID, slotID string) (int, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return 0, err
	}
	total, err := tracker.AddExtraSet(slotID)
	if err != nil {
		return 0, err
	}
	s.countSet("extra")
	return total, nil
}

func (s *sessionService) AddExercise(ctx context.Context, userID, sessionID, exerciseID string) (session.Slot, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return session.Slot{}, err
	}
	exercise, err := s.store.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Slot{}, ErrExerciseNotFound
		}
		return session.Slot{}, err
	}
	return tracker.AddExercise(*exercise)
}

func (s *sessionService) SkipRest(_ context.Context, userID, sessionID string) (*session.Snapshot, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return nil, err
	}
	tracker.SkipRest()
	snap := tracker.Snapshot()
	return &snap, nil
}

func (s *sessionService) CompleteSession(ctx context.Context, userID, sessionID string) (*session.Snapshot, error) {
	tracker, err := s.tracker(userID, sessionID)
	if err != nil {
		return nil, err
	}
	minutes, err := tracker.Complete(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterSessionsCompleted.Inc()
	}
	log.Infof("user %s completed session %s in %d minutes", userID, sessionID, minutes)

	snap := tracker.Snapshot()
	return &snap, nil
}

func (s *sessionService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var evicted []*session.Tracker
	for id, ls := range s.live {
		if ls.lastActive.Before(cutoff) {
			evicted = append(evicted, ls.tracker)
			delete(s.live, id)
		}
	}
	s.mu.Unlock()

	for _, tracker := range evicted {
		tracker.Close()
		if s.metrics != nil {
			s.metrics.GaugeActiveSessions.Dec()
		}
	}
	if len(evicted) > 0 {
		log.Debugf("evicted %d idle sessions", len(evicted))
	}
	return len(evicted)
}

func (s *sessionService) Close() {
	s.mu.Lock()
	live := s.live
	s.live = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range live {
		ls.tracker.Close()
		if s.metrics != nil {
			s.metrics.GaugeActiveSessions.Dec()
		}
	}
}

// tracker returns the live tracker of sessionID if userID owns it, and marks it active.
func (s *sessionService) tracker(userID, sessionID string) (*session.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.live[sessionID]
	if !ok || ls.tracker.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	ls.lastActive = s.now()
	return ls.tracker, nil
}

func (s *sessionService) countSet(kind string) {
	if s.metrics != nil {
		s.metrics.CounterSetsLogged.WithLabelValues(kind).Inc()
	}
}

func (s *sessionService) persistFailed(operation string, _ error) {
	if s.metrics != nil {
		s.metrics.CounterPersistenceErrors.WithLabelValues(operation).Inc()
	}
}
