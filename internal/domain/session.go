package domain

import (
	"time"
)

// WorkoutSession is one performed instance of a Workout.
type WorkoutSession struct {
	ID                   string     `bson:"_id" json:"id"`
	UserID               string     `bson:"userId" json:"userId"`
	WorkoutID            string     `bson:"workoutId,omitempty" json:"workoutId,omitempty"`
	StartedAt            time.Time  `bson:"startedAt" json:"startedAt"`
	CompletedAt          *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	TotalDurationMinutes *int       `bson:"totalDurationMinutes,omitempty" json:"totalDurationMinutes,omitempty"`
	Notes                string     `bson:"notes,omitempty" json:"notes,omitempty"`

	Workout *Workout                 `bson:"-" json:"workout,omitempty"`
	Logs    []ExercisePerformanceLog `bson:"-" json:"logs,omitempty"`
}

// ExercisePerformanceLog records one set of one exercise within a session.
// (SessionID, ExerciseID, SetNumber) is unique.
type ExercisePerformanceLog struct {
	ID               string    `bson:"_id" json:"id"`
	SessionID        string    `bson:"sessionId" json:"sessionId"`
	ExerciseID       string    `bson:"exerciseId" json:"exerciseId"`
	SetNumber        int       `bson:"setNumber" json:"setNumber"`
	PlannedReps      string    `bson:"plannedReps,omitempty" json:"plannedReps,omitempty"`
	ActualReps       *int      `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	PlannedWeight    *float64  `bson:"plannedWeight,omitempty" json:"plannedWeight,omitempty"`
	ActualWeight     *float64  `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	DurationSeconds  *int      `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	Distance         *float64  `bson:"distance,omitempty" json:"distance,omitempty"`
	DistanceUnit     string    `bson:"distanceUnit,omitempty" json:"distanceUnit,omitempty"`
	RestSeconds      int       `bson:"restSeconds" json:"restSeconds"`
	Completed        bool      `bson:"completed" json:"completed"`
	DifficultyRating *int      `bson:"difficultyRating,omitempty" json:"difficultyRating,omitempty"`
	Notes            string    `bson:"notes,omitempty" json:"notes,omitempty"`
	IsExtraSet       bool      `bson:"isExtraSet" json:"isExtraSet"`
	IsAddedExercise  bool      `bson:"isAddedExercise" json:"isAddedExercise"`
	LoggedAt         time.Time `bson:"loggedAt" json:"loggedAt"`

	Exercise         *Exercise `bson:"-" json:"exercise,omitempty"`
	SessionStartedAt time.Time `bson:"-" json:"sessionStartedAt,omitempty"`
}
