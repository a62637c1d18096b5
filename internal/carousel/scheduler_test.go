package carousel

import "time"

// fakeScheduler runs callbacks only when the test advances its clock.
type fakeScheduler struct {
	now    time.Duration
	nextID int
	tasks  map[int]*fakeTask
}

type fakeTask struct {
	at       time.Duration
	interval time.Duration
	fn       func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(map[int]*fakeTask)}
}

func (s *fakeScheduler) Every(interval time.Duration, fn func()) func() {
	return s.add(&fakeTask{at: s.now + interval, interval: interval, fn: fn})
}

func (s *fakeScheduler) After(delay time.Duration, fn func()) func() {
	return s.add(&fakeTask{at: s.now + delay, fn: fn})
}

func (s *fakeScheduler) add(task *fakeTask) func() {
	id := s.nextID
	s.nextID++
	s.tasks[id] = task
	return func() { delete(s.tasks, id) }
}

// Advance moves the clock forward by d, running every callback that falls due
// in time order.
func (s *fakeScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		id, task := s.due(target)
		if task == nil {
			break
		}
		s.now = task.at
		if task.interval > 0 {
			task.at += task.interval
		} else {
			delete(s.tasks, id)
		}
		task.fn()
	}
	s.now = target
}

func (s *fakeScheduler) due(target time.Duration) (int, *fakeTask) {
	bestID := -1
	var best *fakeTask
	for id, task := range s.tasks {
		if task.at > target {
			continue
		}
		if best == nil || task.at < best.at || (task.at == best.at && id < bestID) {
			bestID, best = id, task
		}
	}
	return bestID, best
}

func (s *fakeScheduler) pending() int {
	return len(s.tasks)
}
