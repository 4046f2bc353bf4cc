package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
	"fittrack/fitness-app/internal/service"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name            string              `json:"name" binding:"required"`
	Category        string              `json:"category" binding:"required"`
	Difficulty      string              `json:"difficulty"`
	Description     string              `json:"description"`
	TargetMuscles   []string            `json:"targetMuscles"`
	Equipment       []string            `json:"equipment"`
	Instructions    []string            `json:"instructions"`
	ExerciseType    domain.ExerciseType `json:"exerciseType" binding:"omitempty,oneof=weight bodyweight time distance"`
	MeasurementUnit string              `json:"measurementUnit"`
}

type VideoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type VideoConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary List or search the exercise catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param q query string false "Matches name or category"
// @Param category query string false "Category filter"
// @Param difficulty query string false "Difficulty filter"
// @Param type query string false "Exercise type filter"
// @Success 200 {array} domain.Exercise "Exercises ordered by name"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := repository.ExerciseFilter{
		Query:        c.Query("q"),
		Category:     c.Query("category"),
		Difficulty:   c.Query("difficulty"),
		ExerciseType: domain.ExerciseType(c.Query("type")),
	}
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			log.Errorf("list exercises: %s", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		}
		return
	}
	c.JSON(http.StatusOK, exercises)
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			log.Errorf("get exercise %s: %s", c.Param("id"), err)
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercise.")
		}
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// CreateExercise godoc
// @Summary Add an exercise to the catalog
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), domain.Exercise{
		Name:            req.Name,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		Description:     req.Description,
		TargetMuscles:   req.TargetMuscles,
		Equipment:       req.Equipment,
		Instructions:    req.Instructions,
		ExerciseType:    req.ExerciseType,
		MeasurementUnit: req.MeasurementUnit,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			log.Errorf("create exercise %q: %s", req.Name, err)
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

// RequestVideoUploadURL godoc
// @Summary Get a presigned URL to upload an exercise demo video
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param request body VideoUploadURLRequest true "Video content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 503 {object} gin.H "Object storage disabled"
// @Router /exercises/{id}/video-upload-url [post]
func (h *ExerciseHandler) RequestVideoUploadURL(c *gin.Context) {
	var req VideoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.exerciseService.RequestVideoUploadURL(c.Request.Context(), c.Param("id"), req.ContentType)
	if err != nil {
		h.videoError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	var req VideoConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.ConfirmVideoUpload(c.Request.Context(), c.Param("id"), req.ObjectKey)
	if err != nil {
		h.videoError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) videoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrUnsupportedVideo),
		errors.Is(err, service.ErrObjectKeyMismatch),
		errors.Is(err, service.ErrVideoNotUploaded):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("exercise video %s: %s", c.Param("id"), err)
		abortWithError(c, http.StatusInternalServerError, "Failed to process exercise video.")
	}
}
