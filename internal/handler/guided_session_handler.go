package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/repflow/internal/carousel"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/formstate"
	"github.com/mansoorceksport/repflow/internal/middleware"
	"github.com/mansoorceksport/repflow/internal/service"
	"github.com/mansoorceksport/repflow/internal/session"
	log "github.com/sirupsen/logrus"
)

// GuidedWorkoutService is what the handler needs from service.GuidedWorkoutService.
type GuidedWorkoutService interface {
	Start(ctx context.Context, athleteID string, req service.StartRequest) (*service.StartResult, error)
	Get(ctx context.Context, athleteID, sessionID string) (session.Result, error)
	Forward(ctx context.Context, athleteID, sessionID string) (session.Result, error)
	Backward(ctx context.Context, athleteID, sessionID string) (session.Result, error)
	JumpTo(ctx context.Context, athleteID, sessionID string, index int) (session.Result, error)
	Select(ctx context.Context, athleteID, sessionID string, index int) (session.Result, error)
	UpdateSet(ctx context.Context, athleteID, sessionID string, exerciseIndex, setIndex int, u session.SetUpdate) (session.Result, error)
	Reopen(ctx context.Context, athleteID, sessionID string, exerciseIndex, setIndex int) (session.Result, error)
	ToggleTimer(ctx context.Context, athleteID, sessionID string) (session.Result, error)
	SkipRest(ctx context.Context, athleteID, sessionID string) (session.Result, error)
	Finish(ctx context.Context, athleteID, sessionID string) (*domain.WorkoutLog, error)
	Discard(ctx context.Context, athleteID, sessionID string) error
	History(ctx context.Context, athleteID string, limit int64) ([]*domain.WorkoutLog, error)
}

type GuidedSessionHandler struct {
	guidedService GuidedWorkoutService
}

func NewGuidedSessionHandler(guidedService GuidedWorkoutService) *GuidedSessionHandler {
	return &GuidedSessionHandler{guidedService: guidedService}
}

// StartSession POST /v1/me/guided-sessions
func (h *GuidedSessionHandler) StartSession(c *fiber.Ctx) error {
	var req service.StartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	res, err := h.guidedService.Start(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return guidedError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// GetSession GET /v1/me/guided-sessions/:id
func (h *GuidedSessionHandler) GetSession(c *fiber.Ctx) error {
	return h.respond(c, func(ctx context.Context, athleteID, id string) (session.Result, error) {
		return h.guidedService.Get(ctx, athleteID, id)
	})
}

// Forward POST /v1/me/guided-sessions/:id/forward
// A forward blocked by validation is still a 200; the view carries the error.
func (h *GuidedSessionHandler) Forward(c *fiber.Ctx) error {
	return h.respond(c, h.guidedService.Forward)
}

// Backward POST /v1/me/guided-sessions/:id/backward
func (h *GuidedSessionHandler) Backward(c *fiber.Ctx) error {
	return h.respond(c, h.guidedService.Backward)
}

type indexRequest struct {
	Index *int `json:"index"`
}

// JumpTo POST /v1/me/guided-sessions/:id/jump
func (h *GuidedSessionHandler) JumpTo(c *fiber.Ctx) error {
	index, err := parseIndexBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.respond(c, func(ctx context.Context, athleteID, id string) (session.Result, error) {
		return h.guidedService.JumpTo(ctx, athleteID, id, index)
	})
}

// Select POST /v1/me/guided-sessions/:id/select
func (h *GuidedSessionHandler) Select(c *fiber.Ctx) error {
	index, err := parseIndexBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.respond(c, func(ctx context.Context, athleteID, id string) (session.Result, error) {
		return h.guidedService.Select(ctx, athleteID, id, index)
	})
}

// UpdateSet PATCH /v1/me/guided-sessions/:id/sets/:exercise_index/:set_index
// Body fields: reps, weight, duration. An explicit null clears the value.
func (h *GuidedSessionHandler) UpdateSet(c *fiber.Ctx) error {
	ei, si, err := parseSetParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	update, err := parseSetUpdate(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.respond(c, func(ctx context.Context, athleteID, id string) (session.Result, error) {
		return h.guidedService.UpdateSet(ctx, athleteID, id, ei, si, update)
	})
}

// ReopenSet POST /v1/me/guided-sessions/:id/sets/:exercise_index/:set_index/reopen
func (h *GuidedSessionHandler) ReopenSet(c *fiber.Ctx) error {
	ei, si, err := parseSetParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.respond(c, func(ctx context.Context, athleteID, id string) (session.Result, error) {
		return h.guidedService.Reopen(ctx, athleteID, id, ei, si)
	})
}

// ToggleTimer POST /v1/me/guided-sessions/:id/timer/toggle
func (h *GuidedSessionHandler) ToggleTimer(c *fiber.Ctx) error {
	return h.respond(c, h.guidedService.ToggleTimer)
}

// SkipRest POST /v1/me/guided-sessions/:id/timer/skip
func (h *GuidedSessionHandler) SkipRest(c *fiber.Ctx) error {
	return h.respond(c, h.guidedService.SkipRest)
}

// FinishSession POST /v1/me/guided-sessions/:id/finish
func (h *GuidedSessionHandler) FinishSession(c *fiber.Ctx) error {
	entry, err := h.guidedService.Finish(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return guidedError(c, err)
	}
	return c.JSON(entry)
}

// DiscardSession DELETE /v1/me/guided-sessions/:id
func (h *GuidedSessionHandler) DiscardSession(c *fiber.Ctx) error {
	if err := h.guidedService.Discard(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return guidedError(c, err)
	}
	return c.JSON(fiber.Map{"message": "discarded"})
}

// ListWorkoutLogs GET /v1/me/workout-logs?limit=20
func (h *GuidedSessionHandler) ListWorkoutLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	logs, err := h.guidedService.History(c.UserContext(), middleware.UserID(c), int64(limit))
	if err != nil {
		return guidedError(c, err)
	}
	if logs == nil {
		logs = []*domain.WorkoutLog{}
	}
	return c.JSON(logs)
}

func (h *GuidedSessionHandler) respond(c *fiber.Ctx, fn func(ctx context.Context, athleteID, sessionID string) (session.Result, error)) error {
	res, err := fn(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return guidedError(c, err)
	}
	return c.JSON(res)
}

func parseIndexBody(c *fiber.Ctx) (int, error) {
	var req indexRequest
	if err := c.BodyParser(&req); err != nil {
		return 0, errors.New("Invalid body")
	}
	if req.Index == nil {
		return 0, errors.New("index is required")
	}
	return *req.Index, nil
}

func parseSetParams(c *fiber.Ctx) (int, int, error) {
	ei, err := strconv.Atoi(c.Params("exercise_index"))
	if err != nil || ei < 0 {
		return 0, 0, errors.New("invalid exercise_index")
	}
	si, err := strconv.Atoi(c.Params("set_index"))
	if err != nil || si < 0 {
		return 0, 0, errors.New("invalid set_index")
	}
	return ei, si, nil
}

func parseSetUpdate(body []byte) (session.SetUpdate, error) {
	var update session.SetUpdate
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return update, errors.New("Invalid body")
	}
	if len(fields) == 0 {
		return update, errors.New("no fields to update")
	}

	for name, raw := range fields {
		isNull := string(raw) == "null"
		var err error
		switch name {
		case "reps":
			update.ClearReps = isNull
			if !isNull {
				err = json.Unmarshal(raw, &update.Reps)
			}
		case "weight":
			update.ClearWeight = isNull
			if !isNull {
				err = json.Unmarshal(raw, &update.Weight)
			}
		case "duration":
			update.ClearDuration = isNull
			if !isNull {
				err = json.Unmarshal(raw, &update.Duration)
			}
		default:
			return update, fmt.Errorf("unknown field %q", name)
		}
		if err != nil {
			return update, fmt.Errorf("invalid value for %s", name)
		}
	}
	return update, nil
}

// guidedError maps service errors to HTTP responses.
func guidedError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrWorkoutNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, service.ErrInvalidStartRequest),
		errors.Is(err, carousel.ErrSlideOutOfRange),
		errors.Is(err, carousel.ErrSetNotFound),
		errors.Is(err, carousel.ErrNoActiveTimer),
		errors.Is(err, formstate.ErrInvalidValue),
		errors.Is(err, formstate.ErrPathNotFound):
		status = fiber.StatusBadRequest
	case errors.Is(err, carousel.ErrSetCompleted),
		errors.Is(err, domain.ErrWorkoutAlreadyLogged),
		errors.Is(err, session.ErrClosed):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrServiceClosed):
		status = fiber.StatusServiceUnavailable
	}

	if status == fiber.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("guided session request failed")
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
