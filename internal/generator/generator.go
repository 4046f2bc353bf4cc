// Package generator produces workout plans, progress insights and
// recommendations from a user profile.
package generator

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/config"
	"fittrack/fitness-app/internal/domain"
)

const (
	StrategyMock     = "mock"
	StrategyExternal = "external"
)

// Strategy is one way of generating plans and advice. Implementations never
// return an error for generation problems; they degrade instead.
type Strategy interface {
	Name() string
	GeneratePlan(ctx context.Context, profile *domain.Profile, catalog []domain.Exercise) *PlanDraft
	Insights(ctx context.Context, profile *domain.Profile, logs []domain.ExercisePerformanceLog) []string
	Recommendations(ctx context.Context, profile *domain.Profile, sessions []domain.WorkoutSession) []string
}

// PlanDraft is a generated plan before it is persisted.
type PlanDraft struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	DurationWeeks int            `json:"duration_weeks"`
	Workouts      []WorkoutDraft `json:"workouts"`
}

type WorkoutDraft struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	DayOfWeek   int             `json:"day_of_week"`
	Exercises   []ExerciseDraft `json:"exercises"`
}

type ExerciseDraft struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name,omitempty"`
	Sets         int    `json:"sets"`
	RepsPerSet   string `json:"reps_per_set"`
	RestSeconds  int    `json:"rest_seconds"`
	OrderIndex   int    `json:"order_index"`
	Notes        string `json:"notes,omitempty"`
}

// New selects the strategy once, from configuration. Without an API key the
// mock strategy is used everywhere.
func New(cfg config.CompletionConfig, onFallback func(operation string, err error)) Strategy {
	mock := NewMock()
	if cfg.APIKey == "" {
		log.Infoln("no completion API key configured, using mock generation strategy")
		return mock
	}

	log.Infof("using external generation strategy with model %s", cfg.Model)
	external := NewExternal(ExternalConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     45 * time.Second,
	}, mock)
	external.OnFallback = onFallback
	return external
}
