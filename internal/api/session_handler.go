package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/service"
	"fittrack/fitness-app/internal/session"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type StartSessionRequest struct {
	WorkoutID string       `json:"workoutId"`
	Flow      session.Flow `json:"flow" binding:"omitempty,oneof=free_form guided"`
}

type SetRequest struct {
	SlotID    string `json:"slotId" binding:"required"`
	SetNumber int    `json:"setNumber" binding:"required,min=1"`
}

type LogSetRequest struct {
	SetRequest
	Reps             *int     `json:"reps" binding:"omitempty,min=0"`
	Weight           *float64 `json:"weight" binding:"omitempty,min=0"`
	DurationSeconds  *int     `json:"durationSeconds" binding:"omitempty,min=0"`
	Distance         *float64 `json:"distance" binding:"omitempty,min=0"`
	DistanceUnit     string   `json:"distanceUnit"`
	DifficultyRating *int     `json:"difficultyRating" binding:"omitempty,min=1,max=10"`
	Notes            *string  `json:"notes"`
}

type ExtraSetRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

type AddExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

// StartSession godoc
// @Summary Start a workout session
// @Description Starts the given workout, or today's workout of the active plan when none is given.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartSessionRequest false "Workout and flow"
// @Success 201 {object} session.Snapshot
// @Failure 404 {object} gin.H "Workout or active plan not found"
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req StartSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	snap, err := h.sessionService.StartSession(c.Request.Context(), userID, service.StartSessionRequest{
		WorkoutID: req.WorkoutID,
		Flow:      req.Flow,
	})
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	snap, err := h.sessionService.GetSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) LogSet(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req LogSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, err := h.sessionService.LogSet(c.Request.Context(), userID, c.Param("id"), req.SlotID, req.SetNumber, session.Performance{
		Reps:             req.Reps,
		Weight:           req.Weight,
		DurationSeconds:  req.DurationSeconds,
		Distance:         req.Distance,
		DistanceUnit:     req.DistanceUnit,
		DifficultyRating: req.DifficultyRating,
		Notes:            req.Notes,
	})
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *SessionHandler) CompleteSet(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.sessionService.CompleteSet(c.Request.Context(), userID, c.Param("id"), req.SlotID, req.SetNumber)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) AddExtraSet(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req ExtraSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	total, err := h.sessionService.AddExtraSet(c.Request.Context(), userID, c.Param("id"), req.SlotID)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slotId": req.SlotID, "totalSets": total})
}

func (h *SessionHandler) AddExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	slot, err := h.sessionService.AddExercise(c.Request.Context(), userID, c.Param("id"), req.ExerciseID)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func (h *SessionHandler) SkipRest(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	snap, err := h.sessionService.SkipRest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	snap, err := h.sessionService.CompleteSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, session.ErrInvalidSetNumber):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrNoActivePlan),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, session.ErrUnknownExercise):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrCompleted),
		errors.Is(err, session.ErrNotStarted),
		errors.Is(err, session.ErrAlreadyStarted),
		errors.Is(err, session.ErrDuplicateExercise):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		log.Errorf("session request %s: %s", c.Request.URL.Path, err)
		abortWithError(c, http.StatusInternalServerError, "Failed to process workout session.")
	}
}
