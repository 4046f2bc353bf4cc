package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// GeneratePlan godoc
// @Summary Generate a new active workout plan from the user's profile
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 201 {object} domain.WorkoutPlan "The generated plan"
// @Failure 404 {object} gin.H "Profile not found"
// @Router /plans [post]
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	ctx := c.Request.Context()

	planID, err := h.planService.CreateAIPlan(ctx, userID)
	if err != nil {
		h.planError(c, err)
		return
	}
	plan, err := h.planService.GetPlan(ctx, userID, planID)
	if err != nil {
		h.planError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		h.planError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) GetActivePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	plan, err := h.planService.GetActivePlan(c.Request.Context(), userID)
	if err != nil {
		h.planError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), userID, c.Param("planId"))
	if err != nil {
		h.planError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetRecommendations always answers 200; an empty list means no advice is available.
func (h *PlanHandler) GetRecommendations(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": h.planService.GetRecommendations(c.Request.Context(), userID)})
}

func (h *PlanHandler) planError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUserID):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrNoActivePlan):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		log.Errorf("plan request %s: %s", c.Request.URL.Path, err)
		abortWithError(c, http.StatusInternalServerError, "Failed to process workout plan.")
	}
}
