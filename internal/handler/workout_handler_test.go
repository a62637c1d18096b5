package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/middleware"
	"github.com/stretchr/testify/assert"
)

type stubWorkoutRepo struct {
	workouts map[string]*domain.WorkoutInProgress
}

func (r *stubWorkoutRepo) Create(_ context.Context, w *domain.WorkoutInProgress) error {
	r.workouts[w.ID] = w
	return nil
}

func (r *stubWorkoutRepo) GetByID(_ context.Context, id string) (*domain.WorkoutInProgress, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	return w, nil
}

func (r *stubWorkoutRepo) Update(_ context.Context, w *domain.WorkoutInProgress) error {
	r.workouts[w.ID] = w
	return nil
}

func newWorkoutApp(repo domain.WorkoutRepository) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, "athlete-1")
		return c.Next()
	})
	h := NewWorkoutHandler(repo)
	app.Get("/v1/me/workouts/:id", h.GetMyWorkout)
	return app
}

func TestGetMyWorkout(t *testing.T) {
	repo := &stubWorkoutRepo{workouts: map[string]*domain.WorkoutInProgress{
		"mine":   {ID: "mine", AthleteID: "athlete-1"},
		"theirs": {ID: "theirs", AthleteID: "athlete-2"},
	}}
	app := newWorkoutApp(repo)

	status, _ := doJSON(t, app, http.MethodGet, "/v1/me/workouts/mine", "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/v1/me/workouts/theirs", "")
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodGet, "/v1/me/workouts/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
