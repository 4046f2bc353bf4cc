// internal/domain/training_plan.go
package domain

import (
	"time"
)

// WorkoutPlan is a named, multi-week container of Workouts owned by a user.
// At most one plan per user is expected to be active.
type WorkoutPlan struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"userId" json:"userId"`
	Name          string    `bson:"name" json:"name"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	DurationWeeks int       `bson:"durationWeeks" json:"durationWeeks"`
	AIGenerated   bool      `bson:"aiGenerated" json:"aiGenerated"`
	Active        bool      `bson:"active" json:"active"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`

	Workouts []Workout `bson:"-" json:"workouts,omitempty"`
}
