package generator

import (
	"context"
	"fmt"
	"strings"

	"fittrack/fitness-app/internal/domain"
)

const (
	mockSets                = 3
	mockReps                = "8-12"
	mockRestSeconds         = 60
	mockExercisesPerWorkout = 4
	mockDurationWeeks       = 4
)

var encouragements = []string{
	"Keep up the great work with your fitness journey!",
	"Consistency is key - you're building great habits.",
	"Consider tracking your progress to see improvements.",
}

var rotation = []string{
	"Your training volume is building steadily. Keep it going!",
	"Try adding a little weight or one more rep where a set felt easy.",
	"Recovery matters: keep at least one rest day between hard sessions.",
	"Logging every set makes your progress easy to spot.",
	"Mix in some mobility work to keep your joints happy.",
	"Great consistency this week. Small steps add up.",
}

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Mock builds plans and advice deterministically, without any external call.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Name() string {
	return StrategyMock
}

// GeneratePlan builds one workout per training day, cycling through catalog.
func (m *Mock) GeneratePlan(_ context.Context, profile *domain.Profile, catalog []domain.Exercise) *PlanDraft {
	days := clampDays(profile.TrainingDaysPerWeek)
	level := string(profile.ExperienceLevel)
	if level == "" {
		level = string(domain.ExperienceBeginner)
	}

	plan := &PlanDraft{
		Name:          fmt.Sprintf("%d-Day %s Plan", days, titleWord(level)),
		Description:   fmt.Sprintf("A %d-day per week plan focused on %s.", days, goalsText(profile.Goals)),
		DurationWeeks: mockDurationWeeks,
		Workouts:      make([]WorkoutDraft, 0, days),
	}

	next := 0
	for i, day := range spreadDays(days) {
		workout := WorkoutDraft{
			Name:        fmt.Sprintf("Workout %d - %s", i+1, dayNames[day]),
			Description: "Full body session",
			DayOfWeek:   day,
		}
		if len(catalog) > 0 {
			perWorkout := mockExercisesPerWorkout
			if perWorkout > len(catalog) {
				perWorkout = len(catalog)
			}
			for j := 0; j < perWorkout; j++ {
				exercise := catalog[next%len(catalog)]
				next++
				workout.Exercises = append(workout.Exercises, ExerciseDraft{
					ExerciseID:   exercise.ID,
					ExerciseName: exercise.Name,
					Sets:         mockSets,
					RepsPerSet:   mockReps,
					RestSeconds:  mockRestSeconds,
					OrderIndex:   j,
				})
			}
		}
		plan.Workouts = append(plan.Workouts, workout)
	}
	return plan
}

// Insights returns fixed encouragement with no logs, else a rotation keyed on the log count.
func (m *Mock) Insights(_ context.Context, _ *domain.Profile, logs []domain.ExercisePerformanceLog) []string {
	if len(logs) == 0 {
		return append([]string(nil), encouragements...)
	}

	completed := 0
	for _, l := range logs {
		if l.Completed {
			completed++
		}
	}
	insights := []string{fmt.Sprintf("You have completed %d sets recently.", completed)}
	for i := 0; i < 2; i++ {
		insights = append(insights, rotation[(len(logs)+i)%len(rotation)])
	}
	return insights
}

func (m *Mock) Recommendations(_ context.Context, profile *domain.Profile, sessions []domain.WorkoutSession) []string {
	var recs []string
	switch profile.ExperienceLevel {
	case domain.ExperiencePro:
		recs = append(recs, "Use periodization: alternate heavy and light weeks.")
	case domain.ExperienceIntermediate:
		recs = append(recs, "Add a fourth set to your main compound lift.")
	default:
		recs = append(recs, "Focus on form before adding weight.")
	}
	if profile.HasGoal(domain.GoalRehab) {
		recs = append(recs, "Keep rehab movements slow and pain-free.")
	}
	if profile.HasGoal(domain.GoalSportSpecific) {
		recs = append(recs, "Add one explosive movement that matches your sport.")
	}
	if len(sessions) == 0 {
		recs = append(recs, "Start your first workout to get tailored advice.")
	} else {
		recs = append(recs, fmt.Sprintf("You trained %d times recently. Aim for %d sessions a week.", len(sessions), clampDays(profile.TrainingDaysPerWeek)))
	}
	return recs
}

func clampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > 7 {
		return 7
	}
	return days
}

// spreadDays spaces n workouts across the week starting on Monday. Days are distinct for n <= 7.
func spreadDays(n int) []int {
	days := make([]int, n)
	for i := 0; i < n; i++ {
		days[i] = (1 + i*7/n) % 7
	}
	return days
}

func goalsText(goals []string) string {
	if len(goals) == 0 {
		return "general fitness"
	}
	return strings.Join(goals, ", ")
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
