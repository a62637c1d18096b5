package carousel

import "time"

// Scheduler delivers delayed and repeating callbacks. Implementations must run
// callbacks on the same goroutine that drives the Controller, and a cancelled
// callback must never run.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
	After(delay time.Duration, fn func()) (cancel func())
}

const tickInterval = time.Second

// RestTimer counts down a rest period one second at a time.
//
// The completion callback fires exactly once per Start, whether the countdown
// reaches zero or is skipped. Stop discards the timer without firing it.
type RestTimer struct {
	sched      Scheduler
	onComplete func()

	total      int
	remaining  int
	running    bool
	complete   bool
	fired      bool
	cancelTick func()
}

// NewRestTimer creates an idle timer. onComplete may be nil.
func NewRestTimer(sched Scheduler, onComplete func()) *RestTimer {
	return &RestTimer{sched: sched, onComplete: onComplete}
}

// Start begins a fresh countdown of totalSeconds. A non-positive duration
// completes immediately.
func (t *RestTimer) Start(totalSeconds int) {
	t.stopTicking()
	t.total = totalSeconds
	t.remaining = totalSeconds
	t.complete = false
	t.fired = false
	if totalSeconds <= 0 {
		t.total = 0
		t.finish()
		return
	}
	t.running = true
	t.startTicking()
}

// Pause halts the countdown, keeping the remaining time.
func (t *RestTimer) Pause() {
	if !t.running {
		return
	}
	t.running = false
	t.stopTicking()
}

// Resume continues a paused countdown.
func (t *RestTimer) Resume() {
	if t.running || t.complete || t.remaining <= 0 {
		return
	}
	t.running = true
	t.startTicking()
}

// Skip completes the countdown immediately.
func (t *RestTimer) Skip() {
	if t.complete {
		return
	}
	t.finish()
}

// Tick advances the countdown by one second. The scheduler calls it while
// running; calling it while paused or complete is a no-op.
func (t *RestTimer) Tick() {
	if !t.running || t.complete {
		return
	}
	t.remaining--
	if t.remaining <= 0 {
		t.finish()
	}
}

// Stop discards the countdown without invoking the completion callback.
func (t *RestTimer) Stop() {
	t.running = false
	t.fired = true
	t.stopTicking()
}

func (t *RestTimer) Remaining() int { return t.remaining }
func (t *RestTimer) Total() int     { return t.total }
func (t *RestTimer) Running() bool  { return t.running }
func (t *RestTimer) Complete() bool { return t.complete }

// Progress is 0 at the start of the countdown and 1 once it completes.
func (t *RestTimer) Progress() float64 {
	if t.total <= 0 {
		if t.complete {
			return 1
		}
		return 0
	}
	return 1 - float64(t.remaining)/float64(t.total)
}

func (t *RestTimer) finish() {
	t.remaining = 0
	t.complete = true
	t.running = false
	t.stopTicking()
	if t.fired {
		return
	}
	t.fired = true
	if t.onComplete != nil {
		t.onComplete()
	}
}

func (t *RestTimer) startTicking() {
	if t.sched == nil || t.cancelTick != nil {
		return
	}
	t.cancelTick = t.sched.Every(tickInterval, t.Tick)
}

func (t *RestTimer) stopTicking() {
	if t.cancelTick != nil {
		t.cancelTick()
		t.cancelTick = nil
	}
}
