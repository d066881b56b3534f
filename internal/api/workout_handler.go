package api

import (
	"errors"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves saved workouts and the two generators.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type SaveWorkoutRequest struct {
	WorkoutData string `json:"workoutData" binding:"required"`
}

type PlanRequest struct {
	Goal      domain.Goal      `json:"goal"`
	Equipment domain.Equipment `json:"equipment"`
	Time      string           `json:"time"`
	Save      bool             `json:"save"`
}

type PlanResponse struct {
	Plan    domain.WorkoutPlan `json:"plan"`
	Workout *domain.Workout    `json:"workout,omitempty"`
}

type GenerateWorkoutRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// --- Handler Methods ---

// GeneratePlan godoc
// @Summary Build a workout plan from goal, equipment and time
// @Description Rule-based and offline. Unknown goal or equipment yields only the cool-down and summary.
// @Tags Workouts
// @Accept json
// @Produce json
// @Param request body PlanRequest true "Plan form"
// @Success 200 {object} PlanResponse
// @Router /workouts/plan [post]
func (h *WorkoutHandler) GeneratePlan(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	wr := domain.WorkoutRequest{Goal: req.Goal, Equipment: req.Equipment, Time: req.Time}
	plan, saved, err := h.workoutService.GeneratePlan(c.Request.Context(), ownerID, wr, req.Save)
	if err != nil {
		abortWithDomainError(c, err, "Failed to save plan")
		return
	}
	status := http.StatusOK
	if saved != nil {
		status = http.StatusCreated
	}
	c.JSON(status, PlanResponse{Plan: plan, Workout: saved})
}

// GenerateWorkout godoc
// @Summary Generate a workout from a free-text prompt
// @Tags Workouts
// @Accept json
// @Produce json
// @Param request body GenerateWorkoutRequest true "Prompt"
// @Success 201 {object} domain.Workout
// @Failure 403 {object} gin.H "Subscription required"
// @Failure 422 {object} gin.H "No workout generated"
// @Failure 502 {object} gin.H "Provider failure"
// @Router /workouts/generate [post]
func (h *WorkoutHandler) GenerateWorkout(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req GenerateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.GenerateWithAI(c.Request.Context(), ownerID, req.Prompt)
	if err != nil {
		if errors.Is(err, service.ErrGenerationFailed) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		abortWithDomainError(c, err, "Failed to generate workout")
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// SaveWorkout godoc
// @Summary Save a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param workout body SaveWorkoutRequest true "Workout text"
// @Success 201 {object} domain.Workout
// @Router /workouts [post]
func (h *WorkoutHandler) SaveWorkout(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.SaveWorkout(c.Request.Context(), ownerID, req.WorkoutData)
	if err != nil {
		h.abortWorkoutError(c, err, "Failed to save workout")
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// ListWorkouts godoc
// @Summary List the caller's saved workouts, newest first
// @Tags Workouts
// @Produce json
// @Success 200 {array} domain.Workout
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), ownerID)
	if err != nil {
		h.abortWorkoutError(c, err, "Failed to retrieve workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// GetWorkout godoc
// @Summary Get one saved workout
// @Tags Workouts
// @Produce json
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} domain.Workout
// @Failure 404 {object} gin.H "Not found or not owned by caller"
// @Router /workouts/{workoutId} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), ownerID, workoutID)
	if err != nil {
		h.abortWorkoutError(c, err, "Failed to retrieve workout")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// UpdateWorkout godoc
// @Summary Replace the text of a saved workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param workoutId path string true "Workout ID"
// @Param workout body SaveWorkoutRequest true "New workout text"
// @Success 200 {object} domain.Workout
// @Router /workouts/{workoutId} [put]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	var req SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), ownerID, workoutID, req.WorkoutData)
	if err != nil {
		h.abortWorkoutError(c, err, "Failed to update workout")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout godoc
// @Summary Delete a saved workout
// @Tags Workouts
// @Param workoutId path string true "Workout ID"
// @Success 204
// @Router /workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), ownerID, workoutID); err != nil {
		h.abortWorkoutError(c, err, "Failed to delete workout")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) abortWorkoutError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyWorkout):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithDomainError(c, err, fallback)
	}
}
