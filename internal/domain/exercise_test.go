package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExerciseCatalogTypeOf(t *testing.T) {
	catalog := ExerciseCatalog{Exercises: []*Exercise{
		{ID: "plank", Name: "Plank", Type: ExerciseTypeDuration},
		{ID: "pullup", Name: "Pull-up", Type: ExerciseTypeReps},
		{ID: "legacy", Name: "Legacy Row"},
	}}

	tests := []struct {
		name string
		id   string
		want ExerciseType
	}{
		{name: "known duration", id: "plank", want: ExerciseTypeDuration},
		{name: "known reps", id: "pullup", want: ExerciseTypeReps},
		{name: "stored without type", id: "legacy", want: ExerciseTypeWeight},
		{name: "missing id", id: "deleted", want: ExerciseTypeWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.TypeOf(tt.id))
		})
	}
}

func TestExerciseCatalogDisplayName(t *testing.T) {
	loaded := ExerciseCatalog{Exercises: []*Exercise{{ID: "squat", Name: "Back Squat"}}}
	assert.Equal(t, "Back Squat", loaded.DisplayName("squat", ExerciseNameUnknown))
	assert.Equal(t, ExerciseNameUnknown, loaded.DisplayName("gone", ExerciseNameUnknown))

	loading := LoadingCatalog()
	assert.Equal(t, ExerciseNameLoading, loading.DisplayName("squat", ExerciseNameUnknown))
	assert.Equal(t, ExerciseTypeWeight, loading.TypeOf("squat"))
}
