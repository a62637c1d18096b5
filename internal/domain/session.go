package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("guided session not found")
)

// SessionSnapshot is what survives a process restart for a guided session.
// Timer state is not kept; a resumed rest slide starts a fresh countdown.
type SessionSnapshot struct {
	ID         string             `json:"id"`
	AthleteID  string             `json:"athlete_id"`
	Workout    *WorkoutInProgress `json:"workout"`
	SlideIndex int                `json:"slide_index"`
	StartedAt  time.Time          `json:"started_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// SnapshotStore keeps resumable session state with a TTL.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *SessionSnapshot, ttl time.Duration) error
	GetSnapshot(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error
}
