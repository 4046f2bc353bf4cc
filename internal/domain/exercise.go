// internal/domain/exercise.go
package domain

import (
	"time"
)

// ExerciseType determines which performance fields apply to a logged set.
type ExerciseType string

const (
	ExerciseTypeWeight     ExerciseType = "weight"
	ExerciseTypeBodyweight ExerciseType = "bodyweight"
	ExerciseTypeTime       ExerciseType = "time"
	ExerciseTypeDistance   ExerciseType = "distance"
)

func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseTypeWeight, ExerciseTypeBodyweight, ExerciseTypeTime, ExerciseTypeDistance:
		return true
	}
	return false
}

// OrDefault returns the type, falling back to weight when unset.
func (t ExerciseType) OrDefault() ExerciseType {
	if t == "" {
		return ExerciseTypeWeight
	}
	return t
}

// Exercise represents a single exercise definition in the catalog.
type Exercise struct {
	ID              string       `bson:"_id" json:"id"`
	Name            string       `bson:"name" json:"name"`
	Category        string       `bson:"category" json:"category"`
	Difficulty      string       `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Description     string       `bson:"description,omitempty" json:"description,omitempty"`
	TargetMuscles   []string     `bson:"targetMuscles,omitempty" json:"targetMuscles"`
	Equipment       []string     `bson:"equipment,omitempty" json:"equipment"`
	Instructions    []string     `bson:"instructions,omitempty" json:"instructions,omitempty"`
	ExerciseType    ExerciseType `bson:"exerciseType" json:"exerciseType"`
	MeasurementUnit string       `bson:"measurementUnit,omitempty" json:"measurementUnit,omitempty"`
	VideoObjectKey  string       `bson:"videoObjectKey,omitempty" json:"-"` // demo video in object storage
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// UnitOrDefault mirrors the display fallback used for logged sets.
func (e *Exercise) UnitOrDefault() string {
	if e.MeasurementUnit == "" {
		return "lbs"
	}
	return e.MeasurementUnit
}
