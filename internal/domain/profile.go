package domain

import (
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ExperienceLevel of the trainee, used by plan generation.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperiencePro          ExperienceLevel = "pro"
)

const (
	GoalStrength      = "strength"
	GoalRehab         = "rehab"
	GoalSportSpecific = "sport-specific"
)

// Profile holds demographic, health and goal data for one user.
// ID equals the owning User's ID.
type Profile struct {
	ID                  string          `bson:"_id" json:"id"`
	Email               string          `bson:"email,omitempty" json:"email,omitempty"`
	Age                 int             `bson:"age" json:"age"`
	Sex                 Sex             `bson:"sex" json:"sex"`
	HeightCm            *float64        `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg            *float64        `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	DateOfBirth         *time.Time      `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	TrainingDaysPerWeek int             `bson:"trainingDaysPerWeek" json:"trainingDaysPerWeek"`
	ExperienceLevel     ExperienceLevel `bson:"experienceLevel" json:"experienceLevel"`
	Goals               []string        `bson:"goals" json:"goals"`
	RehabDetails        string          `bson:"rehabDetails,omitempty" json:"rehabDetails,omitempty"` // only meaningful with the "rehab" goal
	SportDetails        string          `bson:"sportDetails,omitempty" json:"sportDetails,omitempty"` // only meaningful with "sport-specific"
	HealthConditions    []string        `bson:"healthConditions,omitempty" json:"healthConditions,omitempty"`
	MedicalNotes        string          `bson:"medicalNotes,omitempty" json:"medicalNotes,omitempty"` // JSON object condition -> detail
	AIInstructions      string          `bson:"aiInstructions,omitempty" json:"aiInstructions,omitempty"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (p *Profile) HasGoal(goal string) bool {
	for _, g := range p.Goals {
		if g == goal {
			return true
		}
	}
	return false
}

// ProfileDraft is a partial profile: nil fields are "not supplied".
type ProfileDraft struct {
	ID                  string
	Email               *string
	Age                 *int
	Sex                 *Sex
	HeightCm            *float64
	WeightKg            *float64
	DateOfBirth         *time.Time
	TrainingDaysPerWeek *int
	ExperienceLevel     *ExperienceLevel
	Goals               []string
	RehabDetails        *string
	SportDetails        *string
	HealthConditions    []string
	MedicalNotes        *string
	AIInstructions      *string
}

// HealthQuestionnaire is the yes/no health screen filled in during profile setup.
type HealthQuestionnaire struct {
	HasHeartCondition      bool   `json:"hasHeartCondition"`
	HeartConditionDetails  string `json:"heartConditionDetails,omitempty"`
	HasChestPain           bool   `json:"hasChestPain"`
	ChestPainDetails       string `json:"chestPainDetails,omitempty"`
	HasJointProblems       bool   `json:"hasJointProblems"`
	JointProblemsDetails   string `json:"jointProblemsDetails,omitempty"`
	TakesMedication        bool   `json:"takesMedication"`
	MedicationDetails      string `json:"medicationDetails,omitempty"`
	HasOtherConditions     bool   `json:"hasOtherConditions"`
	OtherConditionsDetails string `json:"otherConditionsDetails,omitempty"`
}
