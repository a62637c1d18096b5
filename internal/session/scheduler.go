package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// loopScheduler delivers carousel timer callbacks through a Loop. A callback
// whose cancel func has run is discarded on the loop, so it never executes
// after cancellation even if its timer had already fired.
type loopScheduler struct {
	loop *Loop
}

func (s loopScheduler) After(delay time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	t := time.AfterFunc(delay, func() {
		_ = s.loop.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

func (s loopScheduler) Every(interval time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-s.loop.Done():
				return
			case <-ticker.C:
				_ = s.loop.Post(func() {
					if !cancelled.Load() {
						fn()
					}
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		cancelled.Store(true)
		once.Do(func() { close(stop) })
	}
}
