package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExerciseRepo struct {
	exercises []*domain.Exercise
	filter    map[string]interface{}
}

func (r *stubExerciseRepo) Create(_ context.Context, ex *domain.Exercise) error {
	r.exercises = append(r.exercises, ex)
	return nil
}

func (r *stubExerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	for _, ex := range r.exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, domain.ErrExerciseNotFound
}

func (r *stubExerciseRepo) List(_ context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	r.filter = filter
	return r.exercises, nil
}

func newExerciseApp(repo domain.ExerciseRepository) *fiber.App {
	app := fiber.New()
	h := NewExerciseHandler(repo)
	app.Get("/v1/exercises", h.ListExercises)
	app.Get("/v1/exercises/:id", h.GetExercise)
	return app
}

func TestListExercisesFilters(t *testing.T) {
	repo := &stubExerciseRepo{exercises: []*domain.Exercise{
		{ID: "plank", Name: "Plank", Type: domain.ExerciseTypeDuration, MuscleGroup: "Core"},
	}}
	app := newExerciseApp(repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/exercises?name=pla&type=duration&muscle_group=Core", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out []domain.Exercise
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, domain.ExerciseTypeDuration, out[0].Type)
	assert.Equal(t, map[string]interface{}{"name": "pla", "type": "duration", "muscle_group": "Core"}, repo.filter)
}

func TestListExercisesRejectsUnknownType(t *testing.T) {
	app := newExerciseApp(&stubExerciseRepo{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/exercises?type=cardio", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetExercise(t *testing.T) {
	app := newExerciseApp(&stubExerciseRepo{exercises: []*domain.Exercise{{ID: "bench", Name: "Bench Press"}}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/exercises/bench", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/v1/exercises/missing", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
