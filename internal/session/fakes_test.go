package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fittrack/fitness-app/internal/domain"
)

// manualTicker only fires when the test calls tick.
type manualTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

type manualTickers struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *manualTickers) factory(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *manualTickers) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

// tick delivers one tick to the latest ticker. It returns false if the timer goroutine is gone.
func (f *manualTickers) tick() bool {
	t := f.last()
	if t == nil {
		return false
	}
	select {
	case t.c <- time.Now():
		return true
	case <-t.stopped:
		return false
	case <-time.After(time.Second):
		return false
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type logKey struct {
	session, exercise string
	set               int
}

type recordingPersister struct {
	mu          sync.Mutex
	sessions    map[string]*domain.WorkoutSession
	logs        map[logKey]domain.ExercisePerformanceLog
	createErr   error
	upsertErr   error
	completeErr error
	upserts     int
	seq         int
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{
		sessions: map[string]*domain.WorkoutSession{},
		logs:     map[logKey]domain.ExercisePerformanceLog{},
	}
}

func (p *recordingPersister) CreateSession(_ context.Context, s *domain.WorkoutSession) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return p.createErr
	}
	p.seq++
	s.ID = fmt.Sprintf("session-%d", p.seq)
	cp := *s
	p.sessions[s.ID] = &cp
	return nil
}

func (p *recordingPersister) UpsertLog(_ context.Context, l *domain.ExercisePerformanceLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.upserts++
	if p.upsertErr != nil {
		return p.upsertErr
	}
	p.logs[logKey{l.SessionID, l.ExerciseID, l.SetNumber}] = *l
	return nil
}

func (p *recordingPersister) CompleteSession(_ context.Context, id string, at time.Time, minutes int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completeErr != nil {
		return p.completeErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return errors.New("no such session")
	}
	s.CompletedAt = &at
	s.TotalDurationMinutes = &minutes
	return nil
}

func (p *recordingPersister) logRows() []domain.ExercisePerformanceLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows := make([]domain.ExercisePerformanceLog, 0, len(p.logs))
	for _, l := range p.logs {
		rows = append(rows, l)
	}
	return rows
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func benchWorkout(sets, rest int) *domain.Workout {
	return &domain.Workout{
		ID:   "w1",
		Name: "Push Day",
		Exercises: []domain.WorkoutExercise{{
			ID:          "we-bench",
			ExerciseID:  "bench",
			Sets:        sets,
			RepsPerSet:  "8-12",
			RestSeconds: rest,
			OrderIndex:  0,
			Exercise:    &domain.Exercise{ID: "bench", Name: "Bench Press", ExerciseType: domain.ExerciseTypeWeight, MeasurementUnit: "lbs"},
		}},
	}
}
