// Package carousel walks an in-progress workout one slide at a time.
//
// The deck is derived from the exercise series on every use: each set becomes a
// set-info slide followed by a rest-timer slide. A Controller moves through the
// deck, gating the step out of a set-info slide on validation and marking the
// set complete when it passes.
package carousel

import "github.com/mansoorceksport/repflow/internal/domain"

// SlideKind is the screen type of a slide.
type SlideKind string

const (
	SlideSetInfo   SlideKind = "set-info"
	SlideRestTimer SlideKind = "rest-timer"
)

// Slide points into the exercise series. GlobalSetIndex is the 0-based rank of
// the set across the whole workout and is shared by the set's two slides.
type Slide struct {
	Kind           SlideKind `json:"kind"`
	ExerciseIndex  int       `json:"exercise_index"`
	SetIndex       int       `json:"set_index"`
	GlobalSetIndex int       `json:"global_set_index"`
}

// BuildDeck linearizes series into alternating set-info / rest-timer slides.
// Exercises without sets contribute nothing, and nil sets are skipped.
func BuildDeck(series []*domain.ExerciseEntry) []Slide {
	deck := make([]Slide, 0, 2*TotalSets(series))
	global := 0
	for ei, ex := range series {
		if ex == nil {
			continue
		}
		for si, set := range ex.Sets {
			if set == nil {
				continue
			}
			deck = append(deck,
				Slide{Kind: SlideSetInfo, ExerciseIndex: ei, SetIndex: si, GlobalSetIndex: global},
				Slide{Kind: SlideRestTimer, ExerciseIndex: ei, SetIndex: si, GlobalSetIndex: global},
			)
			global++
		}
	}
	return deck
}

// TotalSets counts the non-nil sets in series.
func TotalSets(series []*domain.ExerciseEntry) int {
	total := 0
	for _, ex := range series {
		if ex == nil {
			continue
		}
		for _, set := range ex.Sets {
			if set != nil {
				total++
			}
		}
	}
	return total
}

// CompletedSets counts the sets flagged completed.
func CompletedSets(series []*domain.ExerciseEntry) int {
	done := 0
	for _, ex := range series {
		if ex == nil {
			continue
		}
		for _, set := range ex.Sets {
			if set != nil && set.Completed {
				done++
			}
		}
	}
	return done
}

// lookupSet returns the set at (ei, si) or nil when the coordinates are stale.
func lookupSet(series []*domain.ExerciseEntry, ei, si int) (*domain.ExerciseEntry, *domain.SetEntry) {
	if ei < 0 || ei >= len(series) || series[ei] == nil {
		return nil, nil
	}
	ex := series[ei]
	if si < 0 || si >= len(ex.Sets) {
		return ex, nil
	}
	return ex, ex.Sets[si]
}
