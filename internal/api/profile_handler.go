package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/service"
)

const dateOfBirthLayout = "2006-01-02"

type ProfileHandler struct {
	profileService service.ProfileService
	setupStatus    service.SetupStatusService
}

func NewProfileHandler(profileService service.ProfileService, setupStatus service.SetupStatusService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, setupStatus: setupStatus}
}

// ProfileRequest is the body of profile create and update. Omitted fields are left untouched.
type ProfileRequest struct {
	Age                 *int                        `json:"age"`
	Sex                 *domain.Sex                 `json:"sex"`
	HeightCm            *float64                    `json:"heightCm"`
	WeightKg            *float64                    `json:"weightKg"`
	DateOfBirth         *string                     `json:"dateOfBirth"` // YYYY-MM-DD
	TrainingDaysPerWeek *int                        `json:"trainingDaysPerWeek"`
	ExperienceLevel     *domain.ExperienceLevel     `json:"experienceLevel"`
	Goals               []string                    `json:"goals"`
	RehabDetails        *string                     `json:"rehabDetails"`
	SportDetails        *string                     `json:"sportDetails"`
	AIInstructions      *string                     `json:"aiInstructions"`
	Health              *domain.HealthQuestionnaire `json:"health"`
}

// ProfileResult is the outcome of a profile write.
type ProfileResult struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

func (r ProfileRequest) draft(userID, email string) (domain.ProfileDraft, error) {
	draft := domain.ProfileDraft{
		ID:                  userID,
		Age:                 r.Age,
		Sex:                 r.Sex,
		HeightCm:            r.HeightCm,
		WeightKg:            r.WeightKg,
		TrainingDaysPerWeek: r.TrainingDaysPerWeek,
		ExperienceLevel:     r.ExperienceLevel,
		Goals:               r.Goals,
		RehabDetails:        r.RehabDetails,
		SportDetails:        r.SportDetails,
		AIInstructions:      r.AIInstructions,
	}
	if email != "" {
		draft.Email = &email
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, *r.DateOfBirth)
		if err != nil {
			return draft, fmt.Errorf("%w: date of birth must be YYYY-MM-DD", service.ErrProfileValidation)
		}
		draft.DateOfBirth = &dob
	}
	if r.Health != nil {
		conditions, notes := service.BuildHealthDetails(*r.Health)
		draft.HealthConditions = conditions
		draft.MedicalNotes = &notes
	}
	return draft, nil
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidUserID):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			log.Errorf("get profile %s: %s", userID, err)
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile.")
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	h.writeProfile(c, h.profileService.CreateProfile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	h.writeProfile(c, h.profileService.UpdateProfile)
}

func (h *ProfileHandler) writeProfile(c *gin.Context, write func(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error)) {
	identity, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ProfileResult{Error: fmt.Sprintf("Validation error: %v", err)})
		return
	}
	draft, err := req.draft(identity.UserID, identity.Email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ProfileResult{Error: err.Error()})
		return
	}

	profile, err := write(c.Request.Context(), draft)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to save profile."
		switch {
		case errors.Is(err, service.ErrProfileValidation), errors.Is(err, service.ErrInvalidUserID):
			status, message = http.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrProfileNotFound):
			status, message = http.StatusNotFound, err.Error()
		default:
			log.Errorf("save profile %s: %s", identity.UserID, err)
		}
		c.AbortWithStatusJSON(status, ProfileResult{Error: message})
		return
	}
	c.JSON(http.StatusOK, ProfileResult{Success: true, Profile: profile})
}

func (h *ProfileHandler) GetSetupStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	complete, err := h.setupStatus.IsComplete(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUserID) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Errorf("setup status of %s: %s", userID, err)
		abortWithError(c, http.StatusInternalServerError, "Failed to check profile setup.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"complete": complete})
}

// ResetSetupStatus drops the cached flag so the next check reads storage again.
func (h *ProfileHandler) ResetSetupStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	h.setupStatus.Invalidate(userID)
	c.Status(http.StatusNoContent)
}
