package carousel

import (
	"testing"

	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildDeckShape(t *testing.T) {
	tests := []struct {
		name     string
		setCount []int
	}{
		{name: "single set", setCount: []int{1}},
		{name: "two exercises", setCount: []int{2, 1}},
		{name: "uneven", setCount: []int{3, 1, 4}},
		{name: "empty exercise in the middle", setCount: []int{2, 0, 2}},
		{name: "nothing", setCount: []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var series []*domain.ExerciseEntry
			total := 0
			for i, n := range tt.setCount {
				series = append(series, &domain.ExerciseEntry{ExerciseID: string(rune('a' + i)), Sets: sets(n, 60)})
				total += n
			}

			deck := BuildDeck(series)
			assert.Len(t, deck, 2*total)
			assert.Equal(t, total, TotalSets(series))

			global := 0
			lastExercise := -1
			for i := 0; i < len(deck); i += 2 {
				set, rest := deck[i], deck[i+1]
				assert.Equal(t, SlideSetInfo, set.Kind)
				assert.Equal(t, SlideRestTimer, rest.Kind)
				assert.Equal(t, set.ExerciseIndex, rest.ExerciseIndex)
				assert.Equal(t, set.SetIndex, rest.SetIndex)
				assert.Equal(t, global, set.GlobalSetIndex)
				assert.Equal(t, global, rest.GlobalSetIndex)
				assert.GreaterOrEqual(t, set.ExerciseIndex, lastExercise)
				assert.NotZero(t, tt.setCount[set.ExerciseIndex])
				lastExercise = set.ExerciseIndex
				global++
			}
		})
	}
}

func TestBuildDeckSkipsNilSets(t *testing.T) {
	series := []*domain.ExerciseEntry{
		nil,
		{ExerciseID: "a", Sets: []*domain.SetEntry{nil, {RestTimeSeconds: 60}}},
		{ExerciseID: "b", Sets: []*domain.SetEntry{nil}},
	}

	want := []Slide{
		{Kind: SlideSetInfo, ExerciseIndex: 1, SetIndex: 1, GlobalSetIndex: 0},
		{Kind: SlideRestTimer, ExerciseIndex: 1, SetIndex: 1, GlobalSetIndex: 0},
	}
	assert.Equal(t, want, BuildDeck(series))
	assert.Equal(t, 1, TotalSets(series))
	assert.Equal(t, 0, CompletedSets(series))
}

func TestBuildDeckScenario(t *testing.T) {
	deck := BuildDeck(scenarioWorkout().ExerciseSeries)

	want := []Slide{
		{Kind: SlideSetInfo, ExerciseIndex: 0, SetIndex: 0, GlobalSetIndex: 0},
		{Kind: SlideRestTimer, ExerciseIndex: 0, SetIndex: 0, GlobalSetIndex: 0},
		{Kind: SlideSetInfo, ExerciseIndex: 0, SetIndex: 1, GlobalSetIndex: 1},
		{Kind: SlideRestTimer, ExerciseIndex: 0, SetIndex: 1, GlobalSetIndex: 1},
		{Kind: SlideSetInfo, ExerciseIndex: 1, SetIndex: 0, GlobalSetIndex: 2},
		{Kind: SlideRestTimer, ExerciseIndex: 1, SetIndex: 0, GlobalSetIndex: 2},
	}
	assert.Equal(t, want, deck)
}

func TestCompletedSets(t *testing.T) {
	w := scenarioWorkout()
	assert.Equal(t, 0, CompletedSets(w.ExerciseSeries))

	w.ExerciseSeries[0].Sets[1].Completed = true
	w.ExerciseSeries[1].Sets[0].Completed = true
	assert.Equal(t, 2, CompletedSets(w.ExerciseSeries))
}
