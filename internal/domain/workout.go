package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
)

// SetType tags a set for display. The guided logger never branches on it.
type SetType string

const (
	SetTypeWarmUp  SetType = "warmup"
	SetTypeWorking SetType = "working"
	SetTypeBackOff SetType = "backoff"
	SetTypeDropSet SetType = "dropset"
	SetTypeFailure SetType = "failure"
)

// DefaultRestSeconds is used when a set carries no rest time.
const DefaultRestSeconds = 60

// SetEntry is one planned set. Target* values are what the plan prescribes,
// Reps/Weight/Duration are what the athlete actually logged (nil = not entered).
// Weight is in kg, durations in seconds.
type SetEntry struct {
	Type            SetType  `json:"type" bson:"type"`
	TargetReps      *int     `json:"target_reps,omitempty" bson:"target_reps,omitempty"`
	TargetWeight    *float64 `json:"target_weight,omitempty" bson:"target_weight,omitempty"`
	TargetDuration  *int     `json:"target_duration,omitempty" bson:"target_duration,omitempty"`
	Reps            *int     `json:"reps,omitempty" bson:"reps,omitempty"`
	Weight          *float64 `json:"weight,omitempty" bson:"weight,omitempty"`
	Duration        *int     `json:"duration,omitempty" bson:"duration,omitempty"`
	RestTimeSeconds int      `json:"rest_time_seconds" bson:"rest_time_seconds"`
	Completed       bool     `json:"completed" bson:"completed"`
}

// RestSeconds returns the configured rest, or DefaultRestSeconds when unset.
func (s *SetEntry) RestSeconds() int {
	if s.RestTimeSeconds <= 0 {
		return DefaultRestSeconds
	}
	return s.RestTimeSeconds
}

// ExerciseEntry is one exercise of a workout, performed in slice order.
type ExerciseEntry struct {
	ExerciseID string      `json:"exercise_id" bson:"exercise_id"`
	Sets       []*SetEntry `json:"sets" bson:"sets"`
	Tempo      string      `json:"tempo,omitempty" bson:"tempo,omitempty"`
	Tip        string      `json:"tip,omitempty" bson:"tip,omitempty"`
}

// WorkoutInProgress is an assigned workout the athlete is currently logging.
type WorkoutInProgress struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	AthleteID      string           `json:"athlete_id" bson:"athlete_id"`
	Name           string           `json:"name" bson:"name"`
	Level          string           `json:"level,omitempty" bson:"level,omitempty"`
	ExerciseSeries []*ExerciseEntry `json:"exercise_series" bson:"exercise_series"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" bson:"updated_at"`
}

// ExerciseIDs returns the distinct exercise ids in performance order.
func (w *WorkoutInProgress) ExerciseIDs() []string {
	seen := make(map[string]bool, len(w.ExerciseSeries))
	var ids []string
	for _, ex := range w.ExerciseSeries {
		if ex == nil || seen[ex.ExerciseID] {
			continue
		}
		seen[ex.ExerciseID] = true
		ids = append(ids, ex.ExerciseID)
	}
	return ids
}

// Compact drops nil exercises and nil sets in place and reports how many
// entries it removed.
func (w *WorkoutInProgress) Compact() int {
	removed := 0
	series := w.ExerciseSeries[:0]
	for _, ex := range w.ExerciseSeries {
		if ex == nil {
			removed++
			continue
		}
		sets := ex.Sets[:0]
		for _, set := range ex.Sets {
			if set == nil {
				removed++
				continue
			}
			sets = append(sets, set)
		}
		clear(ex.Sets[len(sets):])
		ex.Sets = sets
		series = append(series, ex)
	}
	clear(w.ExerciseSeries[len(series):])
	w.ExerciseSeries = series
	return removed
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (w *WorkoutInProgress) Clone() *WorkoutInProgress {
	if w == nil {
		return nil
	}
	out := *w
	out.ExerciseSeries = make([]*ExerciseEntry, len(w.ExerciseSeries))
	for i, ex := range w.ExerciseSeries {
		if ex == nil {
			continue
		}
		exCopy := *ex
		exCopy.Sets = make([]*SetEntry, len(ex.Sets))
		for j, set := range ex.Sets {
			if set == nil {
				continue
			}
			setCopy := *set
			setCopy.TargetReps = cloneInt(set.TargetReps)
			setCopy.TargetWeight = cloneFloat(set.TargetWeight)
			setCopy.TargetDuration = cloneInt(set.TargetDuration)
			setCopy.Reps = cloneInt(set.Reps)
			setCopy.Weight = cloneFloat(set.Weight)
			setCopy.Duration = cloneInt(set.Duration)
			exCopy.Sets[j] = &setCopy
		}
		out.ExerciseSeries[i] = &exCopy
	}
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *WorkoutInProgress) error
	GetByID(ctx context.Context, id string) (*WorkoutInProgress, error)
	Update(ctx context.Context, workout *WorkoutInProgress) error
}
