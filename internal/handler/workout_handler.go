package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/middleware"
)

type WorkoutHandler struct {
	workoutRepo domain.WorkoutRepository
}

func NewWorkoutHandler(workoutRepo domain.WorkoutRepository) *WorkoutHandler {
	return &WorkoutHandler{workoutRepo: workoutRepo}
}

// GetMyWorkout GET /v1/me/workouts/:id
func (h *WorkoutHandler) GetMyWorkout(c *fiber.Ctx) error {
	workout, err := h.workoutRepo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return guidedError(c, err)
	}
	if workout.AthleteID != middleware.UserID(c) {
		return guidedError(c, domain.ErrForbidden)
	}
	return c.JSON(workout)
}

