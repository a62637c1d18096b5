package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrDuplicateExercise = errors.New("exercise name already exists")
)

// ExerciseType decides which set fields are meaningful and how a set is validated.
type ExerciseType string

const (
	ExerciseTypeWeight   ExerciseType = "weight"
	ExerciseTypeReps     ExerciseType = "reps"
	ExerciseTypeDuration ExerciseType = "duration"
)

// DefaultExerciseType applies whenever a catalog entry cannot be resolved,
// either because the catalog is still loading or the exercise was deleted
// after the plan was written.
const DefaultExerciseType = ExerciseTypeWeight

// Valid reports whether t is one of the known exercise types.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseTypeWeight, ExerciseTypeReps, ExerciseTypeDuration:
		return true
	}
	return false
}

// Exercise represents a move in the global library
type Exercise struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Name        string       `json:"name" bson:"name"` // Unique Index
	Type        ExerciseType `json:"type" bson:"type"`
	MuscleGroup string       `json:"muscle_group" bson:"muscle_group"` // e.g., "Legs", "Chest"
	Equipment   string       `json:"equipment" bson:"equipment"`       // e.g., "Barbell", "Dumbbell"
	VideoURL    string       `json:"video_url" bson:"video_url"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	List(ctx context.Context, filter map[string]interface{}) ([]*Exercise, error)
}

// ExerciseCatalog is the read-only view of the exercise library a guided
// session works against. Loading is true until the library has been fetched.
type ExerciseCatalog struct {
	Exercises []*Exercise `json:"exercises"`
	Loading   bool        `json:"loading"`
}

// LoadingCatalog returns an empty catalog flagged as still loading.
func LoadingCatalog() ExerciseCatalog {
	return ExerciseCatalog{Loading: true}
}

// Lookup finds an exercise by id.
func (c ExerciseCatalog) Lookup(id string) (*Exercise, bool) {
	for _, ex := range c.Exercises {
		if ex != nil && ex.ID == id {
			return ex, true
		}
	}
	return nil, false
}

// TypeOf resolves the exercise type for id, falling back to DefaultExerciseType
// for unknown ids and for entries stored without a recognised type.
func (c ExerciseCatalog) TypeOf(id string) ExerciseType {
	ex, ok := c.Lookup(id)
	if !ok || !ex.Type.Valid() {
		return DefaultExerciseType
	}
	return ex.Type
}

// DisplayName returns the exercise name, or fallback when it cannot be resolved.
// While loading, the loading placeholder wins over fallback.
func (c ExerciseCatalog) DisplayName(id, fallback string) string {
	if ex, ok := c.Lookup(id); ok && ex.Name != "" {
		return ex.Name
	}
	if c.Loading {
		return ExerciseNameLoading
	}
	return fallback
}

const (
	ExerciseNameLoading = "Loading..."
	ExerciseNameUnknown = "Unknown exercise"
)
