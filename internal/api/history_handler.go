package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/service"
)

const maxHistoryLimit = 100

type HistoryHandler struct {
	historyService service.HistoryService
	demoService    service.DemoService
}

func NewHistoryHandler(historyService service.HistoryService, demoService service.DemoService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, demoService: demoService}
}

// GetHistory godoc
// @Summary Recent workout sessions with their logged sets grouped by exercise
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Sessions to return (default 10)"
// @Success 200 {array} service.SessionHistory
// @Router /history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	limit := service.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxHistoryLimit {
			abortWithError(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
	}

	history, err := h.historyService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *HistoryHandler) GetExerciseProgress(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	progress, err := h.historyService.GetExerciseProgress(c.Request.Context(), userID, c.Param("exerciseId"))
	if err != nil {
		historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetInsights always answers 200.
func (h *HistoryHandler) GetInsights(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": h.historyService.GetInsights(c.Request.Context(), userID)})
}

// SeedDemoHistory records a few past sessions for the active plan.
func (h *HistoryHandler) SeedDemoHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	created, err := h.demoService.SeedHistory(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActivePlan), errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			historyError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sessionsCreated": created})
}

func historyError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidUserID) {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	log.Errorf("history request %s: %s", c.Request.URL.Path, err)
	abortWithError(c, http.StatusInternalServerError, "Failed to load workout history.")
}
