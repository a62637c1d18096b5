package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRestTimerRunsToCompletion(t *testing.T) {
	sched := newFakeScheduler()
	calls := 0
	timer := NewRestTimer(sched, func() { calls++ })

	timer.Start(90)
	assert.True(t, timer.Running())
	assert.Equal(t, 90, timer.Remaining())
	assert.Equal(t, 0.0, timer.Progress())

	sched.Advance(45 * time.Second)
	assert.Equal(t, 45, timer.Remaining())
	assert.InDelta(t, 0.5, timer.Progress(), 1e-9)

	sched.Advance(45 * time.Second)
	assert.Equal(t, 0, timer.Remaining())
	assert.True(t, timer.Complete())
	assert.False(t, timer.Running())
	assert.Equal(t, 1.0, timer.Progress())
	assert.Equal(t, 1, calls)

	sched.Advance(10 * time.Second)
	assert.Equal(t, 1, calls)
	assert.Zero(t, sched.pending())
}

func TestRestTimerManualTicks(t *testing.T) {
	calls := 0
	timer := NewRestTimer(newFakeScheduler(), func() { calls++ })
	timer.Start(90)

	for i := 0; i < 90; i++ {
		timer.Tick()
	}
	assert.Equal(t, 0, timer.Remaining())
	assert.True(t, timer.Complete())
	assert.Equal(t, 1, calls)

	timer.Tick()
	assert.Equal(t, 1, calls)
}

func TestRestTimerSkip(t *testing.T) {
	sched := newFakeScheduler()
	calls := 0
	timer := NewRestTimer(sched, func() { calls++ })
	timer.Start(90)
	sched.Advance(45 * time.Second)
	assert.Equal(t, 45, timer.Remaining())

	timer.Skip()
	assert.True(t, timer.Complete())
	assert.Equal(t, 0, timer.Remaining())
	assert.Equal(t, 1, calls)

	timer.Skip()
	sched.Advance(time.Minute)
	assert.Equal(t, 1, calls)
}

func TestRestTimerPauseResume(t *testing.T) {
	sched := newFakeScheduler()
	timer := NewRestTimer(sched, nil)
	timer.Start(10)

	sched.Advance(3 * time.Second)
	timer.Pause()
	assert.False(t, timer.Running())
	assert.Equal(t, 7, timer.Remaining())

	sched.Advance(5 * time.Second)
	assert.Equal(t, 7, timer.Remaining())

	timer.Resume()
	assert.True(t, timer.Running())
	sched.Advance(7 * time.Second)
	assert.True(t, timer.Complete())

	timer.Resume()
	assert.False(t, timer.Running())
}

func TestRestTimerStopDoesNotComplete(t *testing.T) {
	sched := newFakeScheduler()
	calls := 0
	timer := NewRestTimer(sched, func() { calls++ })
	timer.Start(30)
	sched.Advance(10 * time.Second)

	timer.Stop()
	sched.Advance(time.Minute)

	assert.Equal(t, 20, timer.Remaining())
	assert.False(t, timer.Complete())
	assert.Zero(t, calls)
	assert.Zero(t, sched.pending())
}

func TestRestTimerZeroDurationCompletesImmediately(t *testing.T) {
	calls := 0
	timer := NewRestTimer(newFakeScheduler(), func() { calls++ })
	timer.Start(0)

	assert.True(t, timer.Complete())
	assert.Equal(t, 1.0, timer.Progress())
	assert.Equal(t, 1, calls)
}
