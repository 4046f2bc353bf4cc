package domain

import (
	"time"
)

// Workout is a single day's prescribed exercise sequence within a WorkoutPlan.
type Workout struct {
	ID          string    `bson:"_id" json:"id"`
	PlanID      string    `bson:"planId" json:"planId"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	DayOfWeek   int       `bson:"dayOfWeek" json:"dayOfWeek"` // 0 (Sunday) - 6 (Saturday)
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`

	Exercises []WorkoutExercise `bson:"-" json:"exercises,omitempty"`
}

// WorkoutExercise prescribes one exercise inside a workout.
type WorkoutExercise struct {
	ID          string    `bson:"_id" json:"id"`
	WorkoutID   string    `bson:"workoutId" json:"workoutId"`
	ExerciseID  string    `bson:"exerciseId" json:"exerciseId"`
	Sets        int       `bson:"sets" json:"sets"`
	RepsPerSet  string    `bson:"repsPerSet" json:"repsPerSet"` // may be a range like "8-12"
	RestSeconds int       `bson:"restSeconds" json:"restSeconds"`
	OrderIndex  int       `bson:"orderIndex" json:"orderIndex"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`

	Exercise *Exercise `bson:"-" json:"exercise,omitempty"`
}
