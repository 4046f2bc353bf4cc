package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/generator"
	"fittrack/fitness-app/internal/repository"
)

const (
	DefaultHistoryLimit   = 10
	exerciseProgressLimit = 20
	insightLogLimit       = 20
	// sessions scanned for one exercise's progress
	progressSessionWindow = 200
)

const ProfileMissingInsight = "Complete your profile to get personalized insights!"

// FallbackInsights are shown when insights cannot be computed.
var FallbackInsights = []string{
	"Keep up the great work with your fitness journey!",
	"Consistency is key - you're building great habits.",
	"Consider tracking your progress to see improvements.",
}

// LoggedSet is one performance log ready for display.
type LoggedSet struct {
	domain.ExercisePerformanceLog
	Performance string `json:"performance"`
}

// ExerciseGroup is every logged set of one exercise within a session, ordered by set number.
type ExerciseGroup struct {
	ExerciseID   string              `json:"exerciseId"`
	Name         string              `json:"name"`
	Category     string              `json:"category,omitempty"`
	ExerciseType domain.ExerciseType `json:"exerciseType"`
	Sets         []LoggedSet         `json:"sets"`
}

type SessionHistory struct {
	domain.WorkoutSession
	WorkoutName string          `json:"workoutName,omitempty"`
	Duration    string          `json:"duration"`
	Exercises   []ExerciseGroup `json:"exercises"`
}

type HistoryService interface {
	GetHistory(ctx context.Context, userID string, limit int) ([]SessionHistory, error)
	GetExerciseProgress(ctx context.Context, userID, exerciseID string) ([]domain.ExercisePerformanceLog, error)
	// GetInsights never fails: a missing profile or any error yields fixed lines.
	GetInsights(ctx context.Context, userID string) []string
}

type historyService struct {
	store    *repository.Store
	strategy generator.Strategy
}

func NewHistoryService(store *repository.Store, strategy generator.Strategy) HistoryService {
	return &historyService{store: store, strategy: strategy}
}

func (s *historyService) GetHistory(ctx context.Context, userID string, limit int) ([]SessionHistory, error) {
	if !IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	sessions, err := s.store.Sessions.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}
	if len(sessions) == 0 {
		return []SessionHistory{}, nil
	}

	sessionIDs := make([]string, 0, len(sessions))
	for _, ws := range sessions {
		sessionIDs = append(sessionIDs, ws.ID)
	}
	logs, err := s.store.Logs.GetBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch performance logs: %w", err)
	}
	exercises, err := s.exercisesOf(ctx, logs)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if !logs[i].LoggedAt.Equal(logs[j].LoggedAt) {
			return logs[i].LoggedAt.Before(logs[j].LoggedAt)
		}
		return logs[i].SetNumber < logs[j].SetNumber
	})
	logsBySession := map[string][]domain.ExercisePerformanceLog{}
	for _, l := range logs {
		if exercise, ok := exercises[l.ExerciseID]; ok {
			exercise := exercise
			l.Exercise = &exercise
		}
		logsBySession[l.SessionID] = append(logsBySession[l.SessionID], l)
	}

	workoutNames := map[string]string{}
	history := make([]SessionHistory, 0, len(sessions))
	for _, ws := range sessions {
		entry := SessionHistory{
			WorkoutSession: ws,
			Duration:       FormatDuration(ws.TotalDurationMinutes),
		}
		if ws.WorkoutID != "" {
			name, seen := workoutNames[ws.WorkoutID]
			if !seen {
				if workout, err := s.store.Workouts.GetByID(ctx, ws.WorkoutID); err == nil {
					name = workout.Name
				} else {
					log.Debugf("workout %s of session %s: %s", ws.WorkoutID, ws.ID, err)
				}
				workoutNames[ws.WorkoutID] = name
			}
			entry.WorkoutName = name
		}
		entry.Logs = logsBySession[ws.ID]
		entry.Exercises = GroupByExercise(entry.Logs)
		history = append(history, entry)
	}
	return history, nil
}

func (s *historyService) GetExerciseProgress(ctx context.Context, userID, exerciseID string) ([]domain.ExercisePerformanceLog, error) {
	if !IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	sessions, err := s.store.Sessions.ListByUserID(ctx, userID, progressSessionWindow)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}
	startedAt := make(map[string]int, len(sessions))
	sessionIDs := make([]string, 0, len(sessions))
	for i, ws := range sessions {
		startedAt[ws.ID] = i
		sessionIDs = append(sessionIDs, ws.ID)
	}

	logs, err := s.store.Logs.GetCompletedByExercise(ctx, sessionIDs, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("fetch exercise logs: %w", err)
	}
	// sessions come newest first, so a lower index is a later session
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := startedAt[logs[i].SessionID], startedAt[logs[j].SessionID]
		if a != b {
			return a < b
		}
		return logs[i].SetNumber < logs[j].SetNumber
	})
	if len(logs) > exerciseProgressLimit {
		logs = logs[:exerciseProgressLimit]
	}
	for i := range logs {
		logs[i].SessionStartedAt = sessions[startedAt[logs[i].SessionID]].StartedAt
	}
	return logs, nil
}

func (s *historyService) GetInsights(ctx context.Context, userID string) []string {
	if !IsValidUserID(userID) {
		return []string{ProfileMissingInsight}
	}
	profile, err := s.store.Profiles.GetByID(ctx, userID)
	if err != nil {
		return []string{ProfileMissingInsight}
	}

	sessions, err := s.store.Sessions.ListByUserID(ctx, userID, DefaultHistoryLimit)
	if err != nil {
		log.Errorf("insights for %s: %s", userID, err)
		return fallbackInsights()
	}
	sessionIDs := make([]string, 0, len(sessions))
	for _, ws := range sessions {
		sessionIDs = append(sessionIDs, ws.ID)
	}
	logs, err := s.store.Logs.GetBySessionIDs(ctx, sessionIDs)
	if err != nil {
		log.Errorf("insights for %s: %s", userID, err)
		return fallbackInsights()
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].LoggedAt.After(logs[j].LoggedAt) })
	if len(logs) > insightLogLimit {
		logs = logs[:insightLogLimit]
	}
	exercises, err := s.exercisesOf(ctx, logs)
	if err == nil {
		for i := range logs {
			if exercise, ok := exercises[logs[i].ExerciseID]; ok {
				exercise := exercise
				logs[i].Exercise = &exercise
			}
		}
	}

	insights := s.strategy.Insights(ctx, profile, logs)
	if len(insights) == 0 {
		return fallbackInsights()
	}
	return insights
}

func (s *historyService) exercisesOf(ctx context.Context, logs []domain.ExercisePerformanceLog) (map[string]domain.Exercise, error) {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, l := range logs {
		if _, ok := seen[l.ExerciseID]; !ok {
			seen[l.ExerciseID] = struct{}{}
			ids = append(ids, l.ExerciseID)
		}
	}
	if len(ids) == 0 {
		return map[string]domain.Exercise{}, nil
	}
	exercises, err := s.store.Exercises.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch exercises: %w", err)
	}
	return exercises, nil
}

func fallbackInsights() []string {
	return append([]string(nil), FallbackInsights...)
}

// GroupByExercise groups logs by exercise in order of first appearance, sets ascending.
func GroupByExercise(logs []domain.ExercisePerformanceLog) []ExerciseGroup {
	groups := []ExerciseGroup{}
	index := map[string]int{}
	for _, l := range logs {
		i, ok := index[l.ExerciseID]
		if !ok {
			group := ExerciseGroup{ExerciseID: l.ExerciseID, Name: l.ExerciseID, ExerciseType: domain.ExerciseTypeWeight}
			if l.Exercise != nil {
				group.Name = l.Exercise.Name
				group.Category = l.Exercise.Category
				group.ExerciseType = l.Exercise.ExerciseType.OrDefault()
			}
			i = len(groups)
			index[l.ExerciseID] = i
			groups = append(groups, group)
		}
		groups[i].Sets = append(groups[i].Sets, LoggedSet{ExercisePerformanceLog: l, Performance: FormatPerformance(l)})
	}
	for i := range groups {
		sets := groups[i].Sets
		sort.SliceStable(sets, func(a, b int) bool { return sets[a].SetNumber < sets[b].SetNumber })
	}
	return groups
}

// FormatPerformance renders the values of a set according to its exercise type.
func FormatPerformance(l domain.ExercisePerformanceLog) string {
	exerciseType := domain.ExerciseTypeWeight
	unit := ""
	if l.Exercise != nil {
		exerciseType = l.Exercise.ExerciseType.OrDefault()
		unit = l.Exercise.MeasurementUnit
	}
	reps := 0
	if l.ActualReps != nil {
		reps = *l.ActualReps
	}

	switch exerciseType {
	case domain.ExerciseTypeWeight:
		if l.ActualWeight != nil && *l.ActualWeight != 0 {
			return strings.TrimSpace(fmt.Sprintf("%d reps × %s %s", reps, formatNumber(*l.ActualWeight), unit))
		}
		return fmt.Sprintf("%d reps", reps)
	case domain.ExerciseTypeBodyweight:
		return fmt.Sprintf("%d reps", reps)
	case domain.ExerciseTypeTime:
		if l.DurationSeconds != nil && *l.DurationSeconds != 0 {
			return strings.TrimSpace(fmt.Sprintf("%d %s", *l.DurationSeconds, unit))
		}
		return "N/A"
	case domain.ExerciseTypeDistance:
		if l.Distance != nil && *l.Distance != 0 {
			distanceUnit := l.DistanceUnit
			if distanceUnit == "" {
				distanceUnit = unit
			}
			return strings.TrimSpace(fmt.Sprintf("%s %s", formatNumber(*l.Distance), distanceUnit))
		}
		return "N/A"
	}
	return "N/A"
}

// FormatDuration renders minutes as "45 min" or "1h 5m"; unknown or zero is "N/A".
func FormatDuration(minutes *int) string {
	if minutes == nil || *minutes == 0 {
		return "N/A"
	}
	hours, mins := *minutes/60, *minutes%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%d min", mins)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
