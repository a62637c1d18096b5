package service

import (
	"context"
	"sync"

	"github.com/mansoorceksport/repflow/internal/domain"
)

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[string]*domain.WorkoutInProgress
	updates  int
}

func newFakeWorkoutRepo(workouts ...*domain.WorkoutInProgress) *fakeWorkoutRepo {
	r := &fakeWorkoutRepo{workouts: make(map[string]*domain.WorkoutInProgress)}
	for _, w := range workouts {
		r.workouts[w.ID] = w.Clone()
	}
	return r
}

func (r *fakeWorkoutRepo) Create(_ context.Context, w *domain.WorkoutInProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workouts[w.ID] = w.Clone()
	return nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id string) (*domain.WorkoutInProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	return w.Clone(), nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, w *domain.WorkoutInProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[w.ID]; !ok {
		return domain.ErrWorkoutNotFound
	}
	r.workouts[w.ID] = w.Clone()
	r.updates++
	return nil
}

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[string]*domain.Exercise
}

func newFakeExerciseRepo(exercises ...*domain.Exercise) *fakeExerciseRepo {
	r := &fakeExerciseRepo{exercises: make(map[string]*domain.Exercise)}
	for _, ex := range exercises {
		r.exercises[ex.ID] = ex
	}
	return r
}

func (r *fakeExerciseRepo) Create(_ context.Context, ex *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises[ex.ID] = ex
	return nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	c := *ex
	return &c, nil
}

func (r *fakeExerciseRepo) List(_ context.Context, _ map[string]interface{}) ([]*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Exercise, 0, len(r.exercises))
	for _, ex := range r.exercises {
		out = append(out, ex)
	}
	return out, nil
}

type fakeLogRepo struct {
	mu        sync.Mutex
	logs      []*domain.WorkoutLog
	lastLimit int64
}

func (r *fakeLogRepo) Create(_ context.Context, l *domain.WorkoutLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.logs {
		if existing.SessionID == l.SessionID {
			return domain.ErrWorkoutAlreadyLogged
		}
	}
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeLogRepo) ListByAthlete(_ context.Context, athleteID string, limit int64) ([]*domain.WorkoutLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []*domain.WorkoutLog
	for _, l := range r.logs {
		if l.AthleteID == athleteID {
			out = append(out, l)
		}
	}
	return out, nil
}
