package carousel

import "github.com/mansoorceksport/repflow/internal/domain"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sets(n, rest int) []*domain.SetEntry {
	out := make([]*domain.SetEntry, n)
	for i := range out {
		out[i] = &domain.SetEntry{Type: domain.SetTypeWorking, RestTimeSeconds: rest}
	}
	return out
}

var testCatalog = domain.ExerciseCatalog{Exercises: []*domain.Exercise{
	{ID: "bench", Name: "Bench Press", Type: domain.ExerciseTypeWeight},
	{ID: "pullup", Name: "Pull-up", Type: domain.ExerciseTypeReps},
	{ID: "plank", Name: "Plank", Type: domain.ExerciseTypeDuration},
}}

// scenarioWorkout is a weight exercise with two sets followed by a duration
// exercise with one set.
func scenarioWorkout() *domain.WorkoutInProgress {
	return &domain.WorkoutInProgress{
		ID:   "w1",
		Name: "Push day",
		ExerciseSeries: []*domain.ExerciseEntry{
			{ExerciseID: "bench", Sets: sets(2, 90), Tempo: "3-1-1", Tip: "Retract shoulder blades"},
			{ExerciseID: "plank", Sets: sets(1, 45)},
		},
	}
}
