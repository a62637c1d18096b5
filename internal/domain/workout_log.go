package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutAlreadyLogged = errors.New("workout session already logged")
)

// WorkoutLog is the record written once a guided session is finished.
type WorkoutLog struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	SessionID      string           `json:"session_id" bson:"session_id"`
	WorkoutID      string           `json:"workout_id,omitempty" bson:"workout_id,omitempty"`
	AthleteID      string           `json:"athlete_id" bson:"athlete_id"`
	Name           string           `json:"name" bson:"name"`
	ExerciseSeries []*ExerciseEntry `json:"exercise_series" bson:"exercise_series"`
	CompletedSets  int              `json:"completed_sets" bson:"completed_sets"`
	TotalSets      int              `json:"total_sets" bson:"total_sets"`
	StartedAt      time.Time        `json:"started_at" bson:"started_at"`
	FinishedAt     time.Time        `json:"finished_at" bson:"finished_at"`
}

type WorkoutLogRepository interface {
	Create(ctx context.Context, log *WorkoutLog) error
	ListByAthlete(ctx context.Context, athleteID string, limit int64) ([]*WorkoutLog, error)
}
