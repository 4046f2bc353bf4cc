package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
)

var (
	ErrEmptyCompletion = errors.New("completion endpoint returned no choices")
	ErrInvalidPlan     = errors.New("generated plan is invalid")
)

type ExternalConfig struct {
	APIKey      string
	BaseURL     string // empty means the OpenAI default
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// External asks a chat completion endpoint and degrades to fallback on any error.
type External struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	fallback    Strategy

	// OnFallback, when set, is called every time fallback output is used.
	OnFallback func(operation string, err error)
}

func NewExternal(cfg ExternalConfig, fallback Strategy) *External {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &External{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		fallback:    fallback,
	}
}

func (e *External) Name() string {
	return StrategyExternal
}

func (e *External) GeneratePlan(ctx context.Context, profile *domain.Profile, catalog []domain.Exercise) *PlanDraft {
	reply, err := e.complete(ctx, planSystemPrompt, planPrompt(profile, catalog))
	if err == nil {
		var plan *PlanDraft
		plan, err = parsePlan(reply, catalog)
		if err == nil {
			return plan
		}
	}
	e.degrade("plan", err)
	return e.fallback.GeneratePlan(ctx, profile, catalog)
}

func (e *External) Insights(ctx context.Context, profile *domain.Profile, logs []domain.ExercisePerformanceLog) []string {
	reply, err := e.complete(ctx, insightsSystemPrompt, insightsPrompt(profile, logs))
	if err == nil {
		if lines := splitLines(reply); len(lines) > 0 {
			return lines
		}
		err = ErrEmptyCompletion
	}
	e.degrade("insights", err)
	return e.fallback.Insights(ctx, profile, logs)
}

func (e *External) Recommendations(ctx context.Context, profile *domain.Profile, sessions []domain.WorkoutSession) []string {
	reply, err := e.complete(ctx, recommendationsSystemPrompt, recommendationsPrompt(profile, sessions))
	if err == nil {
		if lines := splitLines(reply); len(lines) > 0 {
			return lines
		}
		err = ErrEmptyCompletion
	}
	e.degrade("recommendations", err)
	return e.fallback.Recommendations(ctx, profile, sessions)
}

func (e *External) complete(ctx context.Context, system, user string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: e.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (e *External) degrade(operation string, err error) {
	log.Warnf("external %s generation failed, using mock: %s", operation, err)
	if e.OnFallback != nil {
		e.OnFallback(operation, err)
	}
}

// parsePlan decodes a plan reply and resolves exercises against catalog.
// Exercises that cannot be resolved are dropped; a plan left without any
// exercise is rejected.
func parsePlan(reply string, catalog []domain.Exercise) (*PlanDraft, error) {
	var plan PlanDraft
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &plan); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlan, err)
	}
	if plan.Name == "" || len(plan.Workouts) == 0 {
		return nil, fmt.Errorf("%w: missing name or workouts", ErrInvalidPlan)
	}

	byID := make(map[string]domain.Exercise, len(catalog))
	byName := make(map[string]domain.Exercise, len(catalog))
	for _, ex := range catalog {
		byID[ex.ID] = ex
		byName[strings.ToLower(ex.Name)] = ex
	}

	total := 0
	for i := range plan.Workouts {
		w := &plan.Workouts[i]
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			w.DayOfWeek = ((w.DayOfWeek % 7) + 7) % 7
		}
		if w.Name == "" {
			w.Name = fmt.Sprintf("Workout %d", i+1)
		}
		resolved := w.Exercises[:0]
		seen := make(map[string]bool, len(w.Exercises))
		for _, ex := range w.Exercises {
			match, ok := byID[ex.ExerciseID]
			if !ok {
				match, ok = byName[strings.ToLower(ex.ExerciseName)]
			}
			if !ok || seen[match.ID] {
				continue
			}
			seen[match.ID] = true
			ex.ExerciseID = match.ID
			ex.ExerciseName = match.Name
			if ex.Sets < 1 {
				ex.Sets = mockSets
			}
			if ex.RepsPerSet == "" {
				ex.RepsPerSet = mockReps
			}
			if ex.RestSeconds < 0 {
				ex.RestSeconds = 0
			}
			resolved = append(resolved, ex)
		}
		w.Exercises = resolved
		total += len(resolved)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no known exercises", ErrInvalidPlan)
	}
	if plan.DurationWeeks < 1 {
		plan.DurationWeeks = mockDurationWeeks
	}
	return &plan, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// splitLines turns a free-text reply into bullet lines with leading markers trimmed.
func splitLines(reply string) []string {
	var lines []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•· \t")
		line = trimNumbering(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// trimNumbering drops a leading "1." or "2)" marker.
func trimNumbering(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
