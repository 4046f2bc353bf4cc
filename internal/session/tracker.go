// Package session tracks one in-progress workout: set logging, extra sets,
// added exercises, the rest countdown and progress.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
)

var (
	ErrNotStarted       = errors.New("session has not been started")
	ErrAlreadyStarted   = errors.New("session has already been started")
	ErrCompleted        = errors.New("session is already completed")
	ErrUnknownExercise  = errors.New("exercise is not part of this session")
	ErrInvalidSetNumber = errors.New("invalid set number")
	// ErrDuplicateExercise rejects a second slot for an exercise; logs are keyed per exercise.
	ErrDuplicateExercise = errors.New("exercise is already part of this session")
)

const (
	addedExerciseSets   = 3
	addedExerciseRest   = 60
	addedExerciseNotes  = "Added during workout"
	defaultRepsPerSet   = "8-12"
	timedRepsPerSet     = "30 sec"
	addedExerciseIDBase = "added-"
	unsavedIDPrefix     = "unsaved-"
)

// State is the lifecycle position of a session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateResting    State = "resting"
	StateCompleted  State = "completed"
)

// Flow decides what completing the last set of an exercise does.
type Flow string

const (
	// FlowFreeForm leaves every set available for out-of-order logging.
	FlowFreeForm Flow = "free_form"
	// FlowGuided walks a cursor through the exercises set by set.
	FlowGuided Flow = "guided"
)

// Slot is one exercise of the session: a prescription from the workout or an exercise added mid-session.
type Slot struct {
	ID          string          `json:"id"`
	Exercise    domain.Exercise `json:"exercise"`
	Sets        int             `json:"sets"`
	RepsPerSet  string          `json:"repsPerSet"`
	RestSeconds int             `json:"restSeconds"`
	OrderIndex  int             `json:"orderIndex"`
	Notes       string          `json:"notes,omitempty"`
	Added       bool            `json:"added"`
}

// SetLog is the in-memory record of one set.
type SetLog struct {
	SetNumber        int      `json:"setNumber"`
	Reps             *int     `json:"reps,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	DurationSeconds  *int     `json:"durationSeconds,omitempty"`
	Distance         *float64 `json:"distance,omitempty"`
	DistanceUnit     string   `json:"distanceUnit,omitempty"`
	DifficultyRating *int     `json:"difficultyRating,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	Completed        bool     `json:"completed"`
}

// Performance carries the values entered for a set. Nil fields keep what was logged before.
type Performance struct {
	Reps             *int
	Weight           *float64
	DurationSeconds  *int
	Distance         *float64
	DistanceUnit     string
	DifficultyRating *int
	Notes            *string
}

// SetRef points at one set of one slot.
type SetRef struct {
	SlotID    string `json:"slotId"`
	SetNumber int    `json:"setNumber"`
}

// Options tune a tracker. Zero values pick the free-form flow, wall clock,
// real tickers and uuid ids.
type Options struct {
	Flow    Flow
	Now     func() time.Time
	Tickers TickerFactory
	NewID   func() string
	// OnPersistError is told about every failed best-effort write.
	OnPersistError func(operation string, err error)
}

// Tracker is the state machine of one session:
// NotStarted -> InProgress <-> Resting -> Completed.
type Tracker struct {
	mu sync.Mutex

	userID    string
	workoutID string
	name      string
	persister Persister
	opts      Options

	state           State
	sessionID       string
	saved           bool
	startedAt       time.Time
	completedAt     *time.Time
	durationMinutes *int

	slots   []Slot
	logs    map[string][]SetLog
	extra   map[string]int
	editing *SetRef

	currentIndex int
	currentSet   int

	timer *RestTimer
}

// NewTracker prepares a session for workout. Prescriptions are ordered by order
// index. A repeated exercise is folded into its first slot so set numbers stay
// unique per exercise.
func NewTracker(userID string, workout *domain.Workout, persister Persister, opts Options) *Tracker {
	if opts.Flow == "" {
		opts.Flow = FlowFreeForm
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	t := &Tracker{
		userID:     userID,
		persister:  persister,
		opts:       opts,
		state:      StateNotStarted,
		logs:       make(map[string][]SetLog),
		extra:      make(map[string]int),
		currentSet: 1,
		timer:      NewRestTimer(opts.Tickers, nil),
	}
	if workout != nil {
		t.workoutID = workout.ID
		t.name = workout.Name
		prescribed := append([]domain.WorkoutExercise(nil), workout.Exercises...)
		sort.SliceStable(prescribed, func(i, j int) bool { return prescribed[i].OrderIndex < prescribed[j].OrderIndex })
		seen := make(map[string]int, len(prescribed))
		for _, we := range prescribed {
			slot := Slot{
				ID:          we.ID,
				Sets:        we.Sets,
				RepsPerSet:  we.RepsPerSet,
				RestSeconds: we.RestSeconds,
				OrderIndex:  we.OrderIndex,
				Notes:       we.Notes,
			}
			if we.Exercise != nil {
				slot.Exercise = *we.Exercise
			}
			if slot.Exercise.ID == "" {
				slot.Exercise.ID = we.ExerciseID
			}
			slot.Exercise.ExerciseType = slot.Exercise.ExerciseType.OrDefault()
			if i, ok := seen[slot.Exercise.ID]; ok {
				log.Warnf("workout %s lists exercise %s twice, merging %d sets into the first slot", t.workoutID, slot.Exercise.ID, slot.Sets)
				t.slots[i].Sets += slot.Sets
				continue
			}
			seen[slot.Exercise.ID] = len(t.slots)
			t.slots = append(t.slots, slot)
		}
	}
	return t
}

// Start stamps the start time and creates the session row. When the row
// cannot be created the tracker keeps working unsaved and skips later writes.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateNotStarted {
		return ErrAlreadyStarted
	}
	t.startedAt = t.opts.Now().UTC()
	t.state = StateInProgress

	row := &domain.WorkoutSession{
		UserID:    t.userID,
		WorkoutID: t.workoutID,
		StartedAt: t.startedAt,
	}
	if err := t.persister.CreateSession(ctx, row); err != nil {
		t.persistFailed("create_session", err)
		t.sessionID = unsavedIDPrefix + t.opts.NewID()
		return nil
	}
	t.sessionID = row.ID
	t.saved = true
	return nil
}

// SessionID is the stored row id, or an unsaved- id when the row could not be created.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// UserID is the owner of the session.
func (t *Tracker) UserID() string {
	return t.userID
}

// Saved reports whether the session row exists in storage.
func (t *Tracker) Saved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved
}

// StartedAt is zero until Start.
func (t *Tracker) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// State reports Resting while a rest countdown runs in an in-progress session.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	if t.state == StateInProgress && t.timer.Active() {
		return StateResting
	}
	return t.state
}

// LogSet records performance for one set and persists it. Only the fields
// that apply to the exercise type are kept.
func (t *Tracker) LogSet(ctx context.Context, slotID string, setNumber int, perf Performance) (SetLog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, err := t.checkSetLocked(slotID, setNumber)
	if err != nil {
		return SetLog{}, err
	}

	entry := t.upsertLocked(slot, setNumber, func(l *SetLog) { applyPerformance(l, slot, perf) })
	t.editing = &SetRef{SlotID: slotID, SetNumber: setNumber}
	t.persistLocked(ctx, slot, entry)
	return entry, nil
}

// AddExtraSet raises the set count of an exercise by one and returns the new total.
func (t *Tracker) AddExtraSet(slotID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateNotStarted {
		return 0, ErrNotStarted
	}
	slot, ok := t.slotLocked(slotID)
	if !ok {
		return 0, ErrUnknownExercise
	}
	t.extra[slotID]++
	return t.totalSetsLocked(slot), nil
}

// AddExercise appends an exercise that was not in the workout. An exercise that
// already has a slot is rejected with ErrDuplicateExercise; use AddExtraSet for more sets.
func (t *Tracker) AddExercise(exercise domain.Exercise) (Slot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateNotStarted {
		return Slot{}, ErrNotStarted
	}
	if exercise.ID == "" {
		return Slot{}, fmt.Errorf("%w: exercise id is required", ErrUnknownExercise)
	}
	for _, existing := range t.slots {
		if existing.Exercise.ID == exercise.ID {
			return Slot{}, fmt.Errorf("%w: %s (slot %s)", ErrDuplicateExercise, exercise.ID, existing.ID)
		}
	}

	exercise.ExerciseType = exercise.ExerciseType.OrDefault()
	exercise.MeasurementUnit = exercise.UnitOrDefault()
	reps := defaultRepsPerSet
	if exercise.ExerciseType == domain.ExerciseTypeTime {
		reps = timedRepsPerSet
	}

	slot := Slot{
		ID:          addedExerciseIDBase + t.opts.NewID(),
		Exercise:    exercise,
		Sets:        addedExerciseSets,
		RepsPerSet:  reps,
		RestSeconds: addedExerciseRest,
		OrderIndex:  len(t.slots),
		Notes:       addedExerciseNotes,
		Added:       true,
	}
	t.slots = append(t.slots, slot)
	return slot, nil
}

// CompleteResult tells the caller what completing a set triggered.
type CompleteResult struct {
	Set           SetLog  `json:"set"`
	RestStarted   bool    `json:"restStarted"`
	RestSeconds   int     `json:"restSeconds"`
	Progress      float64 `json:"progress"`
	AllSetsLogged bool    `json:"allSetsCompleted"`
}

// CompleteSet marks a set done and persists it. If the exercise has more sets
// and a rest duration, the rest countdown starts. In the guided flow the
// cursor moves to the next set, or to the next exercise after the last set.
func (t *Tracker) CompleteSet(ctx context.Context, slotID string, setNumber int) (CompleteResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, err := t.checkSetLocked(slotID, setNumber)
	if err != nil {
		return CompleteResult{}, err
	}

	entry := t.upsertLocked(slot, setNumber, func(l *SetLog) { l.Completed = true })
	t.editing = nil
	t.persistLocked(ctx, slot, entry)

	result := CompleteResult{Set: entry}
	total := t.totalSetsLocked(slot)
	moreSets := setNumber < total

	if moreSets && slot.RestSeconds > 0 && t.state != StateCompleted {
		t.timer.Start(slot.RestSeconds)
		result.RestStarted = true
		result.RestSeconds = slot.RestSeconds
	}

	if t.opts.Flow == FlowGuided && t.currentIndex < len(t.slots) && t.slots[t.currentIndex].ID == slotID {
		if moreSets {
			t.currentSet = setNumber + 1
		} else {
			t.currentIndex++
			t.currentSet = 1
		}
	}

	completed, all := t.countsLocked()
	result.Progress = percent(completed, all)
	result.AllSetsLogged = all > 0 && completed == all
	return result, nil
}

// SkipRest clears the rest countdown immediately.
func (t *Tracker) SkipRest() {
	t.timer.Stop()
}

func (t *Tracker) RestRemaining() int {
	return t.timer.Remaining()
}

// Progress is completed sets over all sets, prescribed plus extra, as a percentage.
func (t *Tracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	completed, total := t.countsLocked()
	return percent(completed, total)
}

// IsComplete reports whether every set of every exercise is completed.
func (t *Tracker) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	completed, total := t.countsLocked()
	return total > 0 && completed == total
}

// Complete closes the session and returns its duration in whole minutes,
// rounded. Completed is terminal.
func (t *Tracker) Complete(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateNotStarted:
		return 0, ErrNotStarted
	case StateCompleted:
		return 0, ErrCompleted
	}

	t.timer.Stop()
	now := t.opts.Now().UTC()
	minutes := int(math.Round(float64(now.Sub(t.startedAt).Milliseconds()) / 60000))
	if minutes < 0 {
		minutes = 0
	}
	t.state = StateCompleted
	t.completedAt = &now
	t.durationMinutes = &minutes
	t.editing = nil

	if t.saved {
		if err := t.persister.CompleteSession(ctx, t.sessionID, now, minutes); err != nil {
			t.persistFailed("complete_session", err)
		}
	}
	return minutes, nil
}

// Close stops the rest countdown. The tracker must not be used afterwards.
func (t *Tracker) Close() {
	t.timer.Stop()
}

func (t *Tracker) slotLocked(slotID string) (Slot, bool) {
	for _, s := range t.slots {
		if s.ID == slotID {
			return s, true
		}
	}
	return Slot{}, false
}

func (t *Tracker) checkSetLocked(slotID string, setNumber int) (Slot, error) {
	if t.state == StateNotStarted {
		return Slot{}, ErrNotStarted
	}
	slot, ok := t.slotLocked(slotID)
	if !ok {
		return Slot{}, ErrUnknownExercise
	}
	if setNumber < 1 || setNumber > t.totalSetsLocked(slot) {
		return Slot{}, fmt.Errorf("%w: %d (exercise has %d sets)", ErrInvalidSetNumber, setNumber, t.totalSetsLocked(slot))
	}
	return slot, nil
}

func (t *Tracker) totalSetsLocked(slot Slot) int {
	return slot.Sets + t.extra[slot.ID]
}

// upsertLocked finds or inserts the log of setNumber, keeping the slice ordered, then applies fn.
func (t *Tracker) upsertLocked(slot Slot, setNumber int, fn func(*SetLog)) SetLog {
	logs := t.logs[slot.ID]
	i := sort.Search(len(logs), func(i int) bool { return logs[i].SetNumber >= setNumber })
	if i == len(logs) || logs[i].SetNumber != setNumber {
		logs = append(logs, SetLog{})
		copy(logs[i+1:], logs[i:])
		logs[i] = SetLog{SetNumber: setNumber}
	}
	fn(&logs[i])
	t.logs[slot.ID] = logs
	return logs[i]
}

func (t *Tracker) countsLocked() (completed, total int) {
	for _, slot := range t.slots {
		sets := t.totalSetsLocked(slot)
		total += sets
		for _, l := range t.logs[slot.ID] {
			if l.Completed && l.SetNumber <= sets {
				completed++
			}
		}
	}
	return completed, total
}

func (t *Tracker) persistLocked(ctx context.Context, slot Slot, entry SetLog) {
	if !t.saved {
		return
	}
	row := &domain.ExercisePerformanceLog{
		SessionID:        t.sessionID,
		ExerciseID:       slot.Exercise.ID,
		SetNumber:        entry.SetNumber,
		PlannedReps:      slot.RepsPerSet,
		ActualReps:       entry.Reps,
		ActualWeight:     entry.Weight,
		DurationSeconds:  entry.DurationSeconds,
		Distance:         entry.Distance,
		DistanceUnit:     entry.DistanceUnit,
		RestSeconds:      slot.RestSeconds,
		Completed:        entry.Completed,
		DifficultyRating: entry.DifficultyRating,
		Notes:            entry.Notes,
		IsExtraSet:       entry.SetNumber > slot.Sets,
		IsAddedExercise:  slot.Added,
		LoggedAt:         t.opts.Now().UTC(),
	}
	if err := t.persister.UpsertLog(ctx, row); err != nil {
		t.persistFailed("upsert_log", err)
	}
}

func (t *Tracker) persistFailed(operation string, err error) {
	log.Errorf("session %s: %s failed, continuing unsaved: %s", t.sessionID, operation, err)
	if t.opts.OnPersistError != nil {
		t.opts.OnPersistError(operation, err)
	}
}

// applyPerformance copies the fields that apply to the slot's exercise type.
func applyPerformance(l *SetLog, slot Slot, perf Performance) {
	switch slot.Exercise.ExerciseType.OrDefault() {
	case domain.ExerciseTypeWeight:
		if perf.Reps != nil {
			l.Reps = perf.Reps
		}
		if perf.Weight != nil {
			l.Weight = perf.Weight
		}
	case domain.ExerciseTypeBodyweight:
		if perf.Reps != nil {
			l.Reps = perf.Reps
		}
	case domain.ExerciseTypeTime:
		if perf.DurationSeconds != nil {
			l.DurationSeconds = perf.DurationSeconds
		}
	case domain.ExerciseTypeDistance:
		if perf.Distance != nil {
			l.Distance = perf.Distance
			if perf.DistanceUnit != "" {
				l.DistanceUnit = perf.DistanceUnit
			} else if l.DistanceUnit == "" {
				l.DistanceUnit = slot.Exercise.UnitOrDefault()
			}
		}
	}
	if perf.DifficultyRating != nil {
		l.DifficultyRating = perf.DifficultyRating
	}
	if perf.Notes != nil {
		l.Notes = *perf.Notes
	}
}

func percent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
