package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/repflow/internal/domain"
)

type ExerciseHandler struct {
	exerciseRepo domain.ExerciseRepository
}

func NewExerciseHandler(exerciseRepo domain.ExerciseRepository) *ExerciseHandler {
	return &ExerciseHandler{exerciseRepo: exerciseRepo}
}

// ListExercises GET /v1/exercises?name=&type=&muscle_group=
func (h *ExerciseHandler) ListExercises(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if name := c.Query("name"); name != "" {
		filter["name"] = name
	}
	if t := c.Query("type"); t != "" {
		if !domain.ExerciseType(t).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exercise type"})
		}
		filter["type"] = t
	}
	if mg := c.Query("muscle_group"); mg != "" {
		filter["muscle_group"] = mg
	}

	exs, err := h.exerciseRepo.List(c.UserContext(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if exs == nil {
		exs = []*domain.Exercise{}
	}
	return c.JSON(exs)
}

// GetExercise GET /v1/exercises/:id
func (h *ExerciseHandler) GetExercise(c *fiber.Ctx) error {
	ex, err := h.exerciseRepo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return guidedError(c, err)
	}
	return c.JSON(ex)
}
