package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
)

const planSystemPrompt = `You are a certified personal trainer. Reply with JSON only, no prose, using this shape:
{"name": string, "description": string, "duration_weeks": number,
 "workouts": [{"name": string, "description": string, "day_of_week": 0-6,
   "exercises": [{"exercise_id": string, "sets": number, "reps_per_set": string,
     "rest_seconds": number, "order_index": number, "notes": string}]}]}`

const insightsSystemPrompt = `You are a supportive fitness coach. Reply with 3 to 5 short insights, one per line.`

const recommendationsSystemPrompt = `You are a fitness coach. Reply with 3 to 5 short exercise recommendations, one per line.`

// profilePrompt describes the profile the way every prompt starts.
func profilePrompt(profile *domain.Profile) string {
	var b strings.Builder
	goals := "Not specified"
	if len(profile.Goals) > 0 {
		goals = strings.Join(profile.Goals, ", ")
	}

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %d\n", profile.Age)
	fmt.Fprintf(&b, "- Sex: %s\n", profile.Sex)
	fmt.Fprintf(&b, "- Experience Level: %s\n", profile.ExperienceLevel)
	fmt.Fprintf(&b, "- Training Days Per Week: %d\n", profile.TrainingDaysPerWeek)
	fmt.Fprintf(&b, "- Goals: %s\n", goals)
	if profile.HasGoal(domain.GoalRehab) && profile.RehabDetails != "" {
		fmt.Fprintf(&b, "- Rehab Details: %s\n", profile.RehabDetails)
	}
	if profile.HasGoal(domain.GoalSportSpecific) && profile.SportDetails != "" {
		fmt.Fprintf(&b, "- Sport Details: %s\n", profile.SportDetails)
	}

	if health := healthText(profile); health != "" {
		b.WriteString("\n")
		b.WriteString(health)
	}
	if profile.AIInstructions != "" {
		fmt.Fprintf(&b, "\nAdditional Instructions: %s\n", profile.AIInstructions)
	}
	return b.String()
}

func planPrompt(profile *domain.Profile, catalog []domain.Exercise) string {
	var b strings.Builder
	b.WriteString(profilePrompt(profile))
	b.WriteString("\nAvailable exercises (use these ids only):\n")
	for _, e := range catalog {
		fmt.Fprintf(&b, "- %s: %s (%s, %s)\n", e.ID, e.Name, e.Category, e.ExerciseType.OrDefault())
	}
	fmt.Fprintf(&b, "\nBased on this profile, create a personalized workout plan with exactly %d workouts.\n",
		clampDays(profile.TrainingDaysPerWeek))
	return b.String()
}

// healthText flattens health conditions and the medical notes, either the
// questionnaire map or free text.
func healthText(profile *domain.Profile) string {
	notes := strings.TrimSpace(profile.MedicalNotes)
	if len(profile.HealthConditions) == 0 && notes == "" {
		return ""
	}
	var b strings.Builder
	if len(profile.HealthConditions) > 0 {
		b.WriteString("Health conditions: ")
		b.WriteString(strings.Join(profile.HealthConditions, ", "))
		b.WriteString("\n")
	}
	if notes == "" {
		return b.String()
	}

	// questionnaire answers are a JSON object, hand-typed notes are kept verbatim
	parsed, err := parseMedicalNotes(notes)
	if err != nil {
		log.Debugf("medical notes of profile %s are free text: %s", profile.ID, err)
		fmt.Fprintf(&b, "Medical notes: %s\n", notes)
		return b.String()
	}
	if len(parsed) == 0 {
		return b.String()
	}
	b.WriteString("\nDetailed health information:\n")
	for _, note := range parsed {
		fmt.Fprintf(&b, "- %s: %s\n", displayName(note.condition), note.details)
	}
	return b.String()
}

type medicalNote struct {
	condition string
	details   string
}

// parseMedicalNotes decodes a JSON object keeping key order. Empty details are skipped.
func parseMedicalNotes(raw string) ([]medicalNote, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("medical notes are not a JSON object")
	}

	var notes []medicalNote
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if details := detailsText(value); details != "" {
			notes = append(notes, medicalNote{condition: key, details: details})
		}
	}
	return notes, nil
}

func detailsText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%v", v)
	default:
		encoded, _ := json.Marshal(v)
		return string(encoded)
	}
}

// displayName turns snake_case into Title Case, upper-casing only the first letter of each word.
func displayName(condition string) string {
	words := strings.Split(condition, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func insightsPrompt(profile *domain.Profile, logs []domain.ExercisePerformanceLog) string {
	var b strings.Builder
	b.WriteString(profilePrompt(profile))
	fmt.Fprintf(&b, "\nRecent sets (%d):\n", len(logs))
	for _, l := range logs {
		name := l.ExerciseID
		if l.Exercise != nil {
			name = l.Exercise.Name
		}
		fmt.Fprintf(&b, "- %s set %d: %s\n", name, l.SetNumber, logSummary(l))
	}
	b.WriteString("\nGive short progress insights for this user.\n")
	return b.String()
}

func recommendationsPrompt(profile *domain.Profile, sessions []domain.WorkoutSession) string {
	var b strings.Builder
	b.WriteString(profilePrompt(profile))
	fmt.Fprintf(&b, "\nRecent sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		name := "Workout"
		if s.Workout != nil {
			name = s.Workout.Name
		}
		status := "in progress"
		if s.CompletedAt != nil {
			status = "completed"
		}
		fmt.Fprintf(&b, "- %s on %s (%s)\n", name, s.StartedAt.Format("2006-01-02"), status)
	}
	b.WriteString("\nRecommend exercises or adjustments for this user.\n")
	return b.String()
}

func logSummary(l domain.ExercisePerformanceLog) string {
	var parts []string
	if l.ActualReps != nil {
		parts = append(parts, fmt.Sprintf("%d reps", *l.ActualReps))
	}
	if l.ActualWeight != nil {
		parts = append(parts, fmt.Sprintf("%g weight", *l.ActualWeight))
	}
	if l.DurationSeconds != nil {
		parts = append(parts, fmt.Sprintf("%d sec", *l.DurationSeconds))
	}
	if l.Distance != nil {
		parts = append(parts, fmt.Sprintf("%g %s", *l.Distance, l.DistanceUnit))
	}
	if !l.Completed {
		parts = append(parts, "not completed")
	}
	if len(parts) == 0 {
		return "no data"
	}
	return strings.Join(parts, ", ")
}
