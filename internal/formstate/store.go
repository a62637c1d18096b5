// Package formstate holds a workout-in-progress as observable structured state.
//
// Values are addressed with dotted paths in the same shape the client form uses:
//
//	exerciseSeries.0.sets.1.reps
//
// A Store is not safe for concurrent use. It is owned by a single session loop.
package formstate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mansoorceksport/repflow/internal/domain"
)

const rootField = "exerciseSeries"

// Set fields writable through Set.
const (
	FieldReps      = "reps"
	FieldWeight    = "weight"
	FieldDuration  = "duration"
	FieldCompleted = "completed"
)

var (
	ErrInvalidPath  = errors.New("invalid form path")
	ErrPathNotFound = errors.New("form path does not exist")
	ErrInvalidValue = errors.New("invalid value for form path")
)

// SetPath builds the path of a field on a single set.
func SetPath(exerciseIndex, setIndex int, field string) string {
	return fmt.Sprintf("%s.%d.sets.%d.%s", rootField, exerciseIndex, setIndex, field)
}

// Store wraps a WorkoutInProgress and notifies subscribers on every write.
type Store struct {
	workout     *domain.WorkoutInProgress
	subscribers map[int]func(path string)
	nextSubID   int
}

// New creates a store over workout. The store takes ownership of it.
func New(workout *domain.WorkoutInProgress) *Store {
	if workout == nil {
		workout = &domain.WorkoutInProgress{}
	}
	return &Store{
		workout:     workout,
		subscribers: make(map[int]func(path string)),
	}
}

// Workout returns the live workout. Callers must not retain it across loop turns.
func (s *Store) Workout() *domain.WorkoutInProgress {
	return s.workout
}

// Series returns the live exercise series.
func (s *Store) Series() []*domain.ExerciseEntry {
	return s.workout.ExerciseSeries
}

// Subscribe registers fn to be called with the written path after every Set.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(path string)) (unsubscribe func()) {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		delete(s.subscribers, id)
	}
}

// Get reads the value at path. Set fields come back as their pointer types
// (*int, *float64) or bool for completed.
func (s *Store) Get(path string) (interface{}, error) {
	p, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	if p.exercise < 0 {
		return s.workout.ExerciseSeries, nil
	}
	ex, err := s.exercise(p.exercise)
	if err != nil {
		return nil, err
	}
	if !p.hasSets {
		return ex, nil
	}
	if p.set < 0 {
		return ex.Sets, nil
	}
	set, err := s.set(ex, p.set)
	if err != nil {
		return nil, err
	}

	switch p.field {
	case "":
		return set, nil
	case FieldReps:
		return set.Reps, nil
	case FieldWeight:
		return set.Weight, nil
	case FieldDuration:
		return set.Duration, nil
	case FieldCompleted:
		return set.Completed, nil
	case "restTimeSeconds":
		return set.RestTimeSeconds, nil
	case "type":
		return set.Type, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
}

// Set writes value at path and notifies subscribers. Only the actual-value
// fields and the completed flag of a set are writable.
func (s *Store) Set(path string, value interface{}) error {
	p, err := parsePath(path)
	if err != nil {
		return err
	}
	if p.exercise < 0 || p.set < 0 || p.field == "" {
		return fmt.Errorf("%w: %s is not a writable field", ErrInvalidPath, path)
	}

	ex, err := s.exercise(p.exercise)
	if err != nil {
		return err
	}
	set, err := s.set(ex, p.set)
	if err != nil {
		return err
	}

	switch p.field {
	case FieldReps:
		v, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		set.Reps = v
	case FieldDuration:
		v, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		set.Duration = v
	case FieldWeight:
		v, err := toFloatPtr(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		set.Weight = v
	case FieldCompleted:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: %w: want bool, got %T", path, ErrInvalidValue, value)
		}
		set.Completed = v
	default:
		return fmt.Errorf("%w: %s is not a writable field", ErrInvalidPath, path)
	}

	s.notify(path)
	return nil
}

// notify calls subscribers in the order they subscribed.
func (s *Store) notify(path string) {
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.subscribers[id]; ok {
			fn(path)
		}
	}
}

func (s *Store) exercise(i int) (*domain.ExerciseEntry, error) {
	if i >= len(s.workout.ExerciseSeries) || s.workout.ExerciseSeries[i] == nil {
		return nil, fmt.Errorf("%w: exercise %d", ErrPathNotFound, i)
	}
	return s.workout.ExerciseSeries[i], nil
}

func (s *Store) set(ex *domain.ExerciseEntry, i int) (*domain.SetEntry, error) {
	if i >= len(ex.Sets) || ex.Sets[i] == nil {
		return nil, fmt.Errorf("%w: set %d", ErrPathNotFound, i)
	}
	return ex.Sets[i], nil
}

type fieldPath struct {
	exercise int
	hasSets  bool
	set      int
	field    string
}

func parsePath(raw string) (fieldPath, error) {
	p := fieldPath{exercise: -1, set: -1}
	parts := strings.Split(raw, ".")
	if len(parts) == 0 || parts[0] != rootField {
		return p, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}
	if len(parts) > 5 {
		return p, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}

	if len(parts) >= 2 {
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 {
			return p, fmt.Errorf("%w: bad exercise index in %q", ErrInvalidPath, raw)
		}
		p.exercise = i
	}
	if len(parts) >= 3 {
		if parts[2] != "sets" {
			return p, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		p.hasSets = true
	}
	if len(parts) >= 4 {
		i, err := strconv.Atoi(parts[3])
		if err != nil || i < 0 {
			return p, fmt.Errorf("%w: bad set index in %q", ErrInvalidPath, raw)
		}
		p.set = i
	}
	if len(parts) == 5 {
		p.field = parts[4]
	}
	return p, nil
}

func toIntPtr(value interface{}) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return &v, nil
	case *int:
		if v == nil {
			return nil, nil
		}
		c := *v
		return &c, nil
	case int64:
		c := int(v)
		return &c, nil
	case float64:
		if math.IsNaN(v) || v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %v is not a whole number", ErrInvalidValue, v)
		}
		c := int(v)
		return &c, nil
	}
	return nil, fmt.Errorf("%w: want int, got %T", ErrInvalidValue, value)
}

func toFloatPtr(value interface{}) (*float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case *float64:
		if v == nil {
			return nil, nil
		}
		c := *v
		return &c, nil
	case int:
		c := float64(v)
		return &c, nil
	}
	return nil, fmt.Errorf("%w: want float64, got %T", ErrInvalidValue, value)
}
