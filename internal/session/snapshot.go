package session

import "time"

type SlotSnapshot struct {
	Slot
	ExtraSets int      `json:"extraSets"`
	TotalSets int      `json:"totalSets"`
	Logs      []SetLog `json:"logs"`
}

type RestSnapshot struct {
	Active           bool `json:"active"`
	RemainingSeconds int  `json:"remainingSeconds"`
}

// Cursor is the guided-flow position. ExerciseIndex equal to the number of exercises means done.
type Cursor struct {
	ExerciseIndex int `json:"exerciseIndex"`
	SetNumber     int `json:"setNumber"`
}

// Snapshot is a point-in-time copy of a tracker, safe to render.
type Snapshot struct {
	SessionID       string         `json:"sessionId"`
	Saved           bool           `json:"saved"`
	WorkoutID       string         `json:"workoutId,omitempty"`
	WorkoutName     string         `json:"workoutName,omitempty"`
	Flow            Flow           `json:"flow"`
	State           State          `json:"state"`
	StartedAt       time.Time      `json:"startedAt"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
	DurationMinutes *int           `json:"totalDurationMinutes,omitempty"`
	Progress        float64        `json:"progress"`
	CompletedSets   int            `json:"completedSets"`
	TotalSets       int            `json:"totalSets"`
	Exercises       []SlotSnapshot `json:"exercises"`
	Editing         *SetRef        `json:"editing,omitempty"`
	Rest            RestSnapshot   `json:"rest"`
	Cursor          *Cursor        `json:"cursor,omitempty"`
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	completed, total := t.countsLocked()
	snap := Snapshot{
		SessionID:     t.sessionID,
		Saved:         t.saved,
		WorkoutID:     t.workoutID,
		WorkoutName:   t.name,
		Flow:          t.opts.Flow,
		State:         t.stateLocked(),
		StartedAt:     t.startedAt,
		Progress:      percent(completed, total),
		CompletedSets: completed,
		TotalSets:     total,
		Exercises:     make([]SlotSnapshot, 0, len(t.slots)),
		Rest: RestSnapshot{
			Active:           t.timer.Active(),
			RemainingSeconds: t.timer.Remaining(),
		},
	}
	if t.completedAt != nil {
		at := *t.completedAt
		snap.CompletedAt = &at
	}
	if t.durationMinutes != nil {
		minutes := *t.durationMinutes
		snap.DurationMinutes = &minutes
	}
	if t.editing != nil {
		ref := *t.editing
		snap.Editing = &ref
	}
	if t.opts.Flow == FlowGuided {
		snap.Cursor = &Cursor{ExerciseIndex: t.currentIndex, SetNumber: t.currentSet}
	}
	for _, slot := range t.slots {
		snap.Exercises = append(snap.Exercises, SlotSnapshot{
			Slot:      slot,
			ExtraSets: t.extra[slot.ID],
			TotalSets: t.totalSetsLocked(slot),
			Logs:      append([]SetLog{}, t.logs[slot.ID]...),
		})
	}
	return snap
}
