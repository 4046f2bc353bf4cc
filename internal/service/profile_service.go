package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileValidation = errors.New("profile validation failed")
)

// Defaults applied when a profile is created without the field.
const (
	DefaultAge                 = 30
	DefaultSex                 = domain.SexMale
	DefaultTrainingDaysPerWeek = 3
	DefaultExperienceLevel     = domain.ExperienceBeginner
)

var DefaultGoals = []string{domain.GoalStrength}

type ProfileService interface {
	// CreateProfile inserts a profile, or updates it when one already exists for the ID.
	CreateProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error)
	// UpdateProfile writes only the supplied fields and stamps updatedAt.
	UpdateProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	ProfileExists(ctx context.Context, userID string) (bool, error)
}

type profileService struct {
	profiles    repository.ProfileRepository
	setupStatus SetupStatusService
	now         Clock
}

func NewProfileService(profiles repository.ProfileRepository, setupStatus SetupStatusService, clock Clock) ProfileService {
	return &profileService{
		profiles:    profiles,
		setupStatus: setupStatus,
		now:         clockOrDefault(clock),
	}
}

func (s *profileService) CreateProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error) {
	if !IsValidUserID(draft.ID) {
		return nil, ErrInvalidUserID
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	exists, err := s.profiles.Exists(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Infof("profile %s already exists, updating instead", draft.ID)
		return s.UpdateProfile(ctx, draft)
	}

	profile := s.baseProfile(draft)
	if err := s.profiles.Insert(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// created concurrently
			return s.UpdateProfile(ctx, draft)
		}
		return nil, err
	}

	// The extended fields are written separately; the profile is usable without them.
	if extended := extendedFields(draft); len(extended) > 0 {
		if err := s.profiles.Update(ctx, draft.ID, extended); err != nil {
			log.Warnf("profile %s created but extended fields were not saved: %s", draft.ID, err)
		}
	}

	if s.setupStatus != nil {
		s.setupStatus.MarkComplete(draft.ID)
	}
	return s.GetProfile(ctx, draft.ID)
}

func (s *profileService) UpdateProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error) {
	if !IsValidUserID(draft.ID) {
		return nil, ErrInvalidUserID
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if draft.Email != nil {
		fields["email"] = *draft.Email
	}
	if draft.Age != nil {
		fields["age"] = *draft.Age
	}
	if draft.Sex != nil {
		fields["sex"] = *draft.Sex
	}
	if draft.TrainingDaysPerWeek != nil {
		fields["trainingDaysPerWeek"] = *draft.TrainingDaysPerWeek
	}
	if draft.ExperienceLevel != nil {
		fields["experienceLevel"] = *draft.ExperienceLevel
	}
	if draft.Goals != nil {
		fields["goals"] = draft.Goals
	}
	if draft.RehabDetails != nil {
		fields["rehabDetails"] = *draft.RehabDetails
	}
	if draft.SportDetails != nil {
		fields["sportDetails"] = *draft.SportDetails
	}
	for k, v := range extendedFields(draft) {
		fields[k] = v
	}
	if draft.DateOfBirth != nil {
		fields["age"] = AgeOn(*draft.DateOfBirth, s.now())
	}
	fields["updatedAt"] = s.now().UTC()

	if err := s.profiles.Update(ctx, draft.ID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, draft.ID)
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if !IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) ProfileExists(ctx context.Context, userID string) (bool, error) {
	if !IsValidUserID(userID) {
		return false, ErrInvalidUserID
	}
	return s.profiles.Exists(ctx, userID)
}

func (s *profileService) baseProfile(draft domain.ProfileDraft) *domain.Profile {
	profile := &domain.Profile{
		ID:                  draft.ID,
		Age:                 DefaultAge,
		Sex:                 DefaultSex,
		TrainingDaysPerWeek: DefaultTrainingDaysPerWeek,
		ExperienceLevel:     DefaultExperienceLevel,
		Goals:               append([]string(nil), DefaultGoals...),
	}
	if draft.Email != nil {
		profile.Email = *draft.Email
	}
	if draft.Age != nil && *draft.Age > 0 {
		profile.Age = *draft.Age
	}
	if draft.DateOfBirth != nil {
		profile.Age = AgeOn(*draft.DateOfBirth, s.now())
	}
	if draft.Sex != nil && *draft.Sex != "" {
		profile.Sex = *draft.Sex
	}
	if draft.TrainingDaysPerWeek != nil && *draft.TrainingDaysPerWeek > 0 {
		profile.TrainingDaysPerWeek = *draft.TrainingDaysPerWeek
	}
	if draft.ExperienceLevel != nil && *draft.ExperienceLevel != "" {
		profile.ExperienceLevel = *draft.ExperienceLevel
	}
	if len(draft.Goals) > 0 {
		profile.Goals = append([]string(nil), draft.Goals...)
	}
	if draft.RehabDetails != nil && profile.HasGoal(domain.GoalRehab) {
		profile.RehabDetails = *draft.RehabDetails
	}
	if draft.SportDetails != nil && profile.HasGoal(domain.GoalSportSpecific) {
		profile.SportDetails = *draft.SportDetails
	}
	return profile
}

// extendedFields are the health and body fields added after the first profile schema.
func extendedFields(draft domain.ProfileDraft) map[string]interface{} {
	fields := map[string]interface{}{}
	if draft.HeightCm != nil {
		fields["heightCm"] = *draft.HeightCm
	}
	if draft.WeightKg != nil {
		fields["weightKg"] = *draft.WeightKg
	}
	if draft.DateOfBirth != nil {
		fields["dateOfBirth"] = draft.DateOfBirth.UTC()
	}
	if draft.HealthConditions != nil {
		fields["healthConditions"] = draft.HealthConditions
	}
	if draft.MedicalNotes != nil {
		fields["medicalNotes"] = *draft.MedicalNotes
	}
	if draft.AIInstructions != nil {
		fields["aiInstructions"] = *draft.AIInstructions
	}
	return fields
}

func validateDraft(draft domain.ProfileDraft) error {
	var problems []string
	if draft.Age != nil && (*draft.Age < 0 || *draft.Age > 120) {
		problems = append(problems, "age must be between 0 and 120")
	}
	if draft.Sex != nil && *draft.Sex != "" {
		switch *draft.Sex {
		case domain.SexMale, domain.SexFemale, domain.SexOther:
		default:
			problems = append(problems, fmt.Sprintf("unknown sex %q", *draft.Sex))
		}
	}
	if draft.TrainingDaysPerWeek != nil && (*draft.TrainingDaysPerWeek < 0 || *draft.TrainingDaysPerWeek > 7) {
		problems = append(problems, "training days per week must be between 0 and 7")
	}
	if draft.ExperienceLevel != nil && *draft.ExperienceLevel != "" {
		switch *draft.ExperienceLevel {
		case domain.ExperienceBeginner, domain.ExperienceIntermediate, domain.ExperiencePro:
		default:
			problems = append(problems, fmt.Sprintf("unknown experience level %q", *draft.ExperienceLevel))
		}
	}
	if draft.HeightCm != nil && *draft.HeightCm < 0 {
		problems = append(problems, "height cannot be negative")
	}
	if draft.WeightKg != nil && *draft.WeightKg < 0 {
		problems = append(problems, "weight cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrProfileValidation, strings.Join(problems, "; "))
	}
	return nil
}

// AgeOn returns the age in whole years on the given day.
func AgeOn(dateOfBirth, today time.Time) int {
	dob := dateOfBirth.UTC()
	today = today.UTC()
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BuildHealthDetails turns the setup questionnaire into the health conditions
// list and the medical notes JSON object (condition -> details).
func BuildHealthDetails(q domain.HealthQuestionnaire) ([]string, string) {
	conditions := []string{}
	notes := map[string]string{}

	add := func(checked bool, condition, noteKey, details string) {
		if !checked {
			return
		}
		conditions = append(conditions, condition)
		if details != "" {
			notes[noteKey] = details
		}
	}
	add(q.HasHeartCondition, "Heart condition", "Heart condition", q.HeartConditionDetails)
	add(q.HasChestPain, "Chest pain", "Chest pain", q.ChestPainDetails)
	add(q.HasJointProblems, "Joint problems", "Joint problems", q.JointProblemsDetails)
	add(q.TakesMedication, "Takes medication", "Medication", q.MedicationDetails)
	add(q.HasOtherConditions, "Other conditions", "Other conditions", q.OtherConditionsDetails)

	raw, err := json.Marshal(notes)
	if err != nil {
		// map[string]string always marshals
		return conditions, "{}"
	}
	return conditions, string(raw)
}
