package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mansoorceksport/repflow/internal/carousel"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

var benchCatalog = domain.ExerciseCatalog{Exercises: []*domain.Exercise{
	{ID: "bench", Name: "Bench Press", Type: domain.ExerciseTypeWeight},
}}

func benchWorkout(restSeconds int) *domain.WorkoutInProgress {
	return &domain.WorkoutInProgress{
		ID:        "w1",
		AthleteID: "athlete-1",
		ExerciseSeries: []*domain.ExerciseEntry{{
			ExerciseID: "bench",
			Sets: []*domain.SetEntry{
				{Type: domain.SetTypeWorking, RestTimeSeconds: restSeconds},
				{Type: domain.SetTypeWorking, RestTimeSeconds: restSeconds},
			},
		}},
	}
}

type recorder struct {
	mu        sync.Mutex
	completed int
	blocked   int
	snapshots []*domain.SessionSnapshot
}

func (r *recorder) options() Options {
	return Options{
		AutoAdvanceDelay: 10 * time.Millisecond,
		OnSetComplete: func(*GuidedSession, int, int) {
			r.mu.Lock()
			r.completed++
			r.mu.Unlock()
		},
		OnBlocked: func(*GuidedSession, int, int, carousel.ValidationResult) {
			r.mu.Lock()
			r.blocked++
			r.mu.Unlock()
		},
		OnChange: func(snap *domain.SessionSnapshot) {
			r.mu.Lock()
			r.snapshots = append(r.snapshots, snap)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) last() *domain.SessionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

func TestGuidedSessionFlow(t *testing.T) {
	rec := &recorder{}
	s := New(Params{ID: "s1", AthleteID: "athlete-1", Workout: benchWorkout(1), Catalog: benchCatalog}, rec.options())
	defer s.Close()
	ctx := context.Background()

	res, err := s.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, carousel.TransitionBlocked, res.Transition)
	require.NotNil(t, res.View.Blocked)
	assert.Equal(t, carousel.MsgRepsRequired, res.View.Blocked.Message)

	res, err = s.UpdateSet(ctx, 0, 0, SetUpdate{Reps: intPtr(10), Weight: floatPtr(40)})
	require.NoError(t, err)
	assert.Nil(t, res.View.Blocked)

	res, err = s.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, carousel.TransitionAdvanced, res.Transition)
	assert.Equal(t, 1, res.View.Index)
	require.NotNil(t, res.View.RestTimer)
	assert.Equal(t, "00:01", res.View.RestTimer.Clock)

	// The one second rest runs out and the deck moves on by itself.
	assert.Eventually(t, func() bool {
		v, err := s.View(ctx)
		return err == nil && v.Index == 2
	}, 3*time.Second, 10*time.Millisecond)

	snap := rec.last()
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.SlideIndex)
	assert.Equal(t, "s1", snap.ID)
	assert.True(t, snap.Workout.ExerciseSeries[0].Sets[0].Completed)

	rec.mu.Lock()
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, 1, rec.blocked)
	rec.mu.Unlock()

	done, total, err := s.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)
}

func TestGuidedSessionSnapshotIsACopy(t *testing.T) {
	s := New(Params{ID: "s1", Workout: benchWorkout(60), Catalog: benchCatalog}, Options{})
	defer s.Close()
	ctx := context.Background()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap.Workout.ExerciseSeries[0].Sets[0].Reps = intPtr(99)

	res, err := s.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, carousel.TransitionBlocked, res.Transition)
}

func TestGuidedSessionUpdateSetErrors(t *testing.T) {
	s := New(Params{ID: "s1", Workout: benchWorkout(60), Catalog: benchCatalog}, Options{})
	defer s.Close()
	ctx := context.Background()

	_, err := s.UpdateSet(ctx, 3, 0, SetUpdate{Reps: intPtr(1)})
	assert.ErrorIs(t, err, carousel.ErrSetNotFound)

	_, err = s.UpdateSet(ctx, 0, 0, SetUpdate{Reps: intPtr(8), Weight: floatPtr(50)})
	require.NoError(t, err)
	_, err = s.Forward(ctx)
	require.NoError(t, err)

	res, err := s.UpdateSet(ctx, 0, 0, SetUpdate{Reps: intPtr(9)})
	assert.ErrorIs(t, err, carousel.ErrSetCompleted)
	assert.Equal(t, 1, res.View.Index, "failed intents still return the current view")

	_, err = s.Reopen(ctx, 0, 0)
	require.NoError(t, err)
	_, err = s.UpdateSet(ctx, 0, 0, SetUpdate{ClearWeight: true})
	require.NoError(t, err)

	v, err := s.JumpTo(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, v.View.SetInfo)
	assert.Nil(t, v.View.SetInfo.Fields[1].Actual)
}

func TestGuidedSessionTimerIntents(t *testing.T) {
	s := New(Params{ID: "s1", Workout: benchWorkout(60), Catalog: benchCatalog, StartIndex: 1}, Options{})
	defer s.Close()
	ctx := context.Background()

	res, err := s.ToggleTimer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Paused", res.View.RestTimer.Status)

	res, err = s.SkipRest(ctx)
	require.NoError(t, err)
	assert.Equal(t, carousel.TransitionAdvanced, res.Transition)
	assert.Equal(t, 2, res.View.Index)

	_, err = s.ToggleTimer(ctx)
	assert.ErrorIs(t, err, carousel.ErrNoActiveTimer)
}

func TestGuidedSessionConcurrentCallers(t *testing.T) {
	s := New(Params{ID: "s1", Workout: benchWorkout(60), Catalog: benchCatalog}, Options{})
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if (i+j)%2 == 0 {
					_, _ = s.Select(ctx, j%4)
				} else {
					_, _ = s.View(ctx)
				}
			}
		}(i)
	}
	wg.Wait()

	v, err := s.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, v.SlideCount)
}

func TestGuidedSessionCatalogArrivesLater(t *testing.T) {
	s := New(Params{ID: "s1", Workout: benchWorkout(60), Catalog: domain.LoadingCatalog()}, Options{})
	defer s.Close()
	ctx := context.Background()

	v, err := s.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseNameLoading, v.Header.ExerciseName)

	require.NoError(t, s.SetCatalog(ctx, benchCatalog))
	v, err = s.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", v.Header.ExerciseName)
}

func TestGuidedSessionClose(t *testing.T) {
	s := New(Params{ID: "s1", Workout: benchWorkout(60), Catalog: benchCatalog, StartIndex: 1}, Options{})
	s.Close()
	s.Close()

	_, err := s.Forward(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
