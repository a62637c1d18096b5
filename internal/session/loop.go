// Package session runs guided workout sessions. Each session owns one event
// loop goroutine; the carousel controller, its form state and every timer
// callback only ever run there.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrClosed = errors.New("session is closed")
	ErrPanic  = errors.New("session task panicked")
)

const queueSize = 64

// Loop executes posted functions one at a time, in order, on its own goroutine.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), queueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// exec runs one task. A panic is logged and the loop carries on with the next.
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("session task panicked")
		}
	}()
	fn()
}

// Post queues fn without waiting for it to run. It fails once the loop is closed.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.quit:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.quit:
		return ErrClosed
	}
}

// Do runs fn on the loop and waits for it. If ctx ends first Do returns
// ctx.Err() and fn may still run later. fn must not call Do on the same loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan error, 1)
	err := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("session task panicked")
				finished <- fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		fn()
		finished <- nil
	})
	if err != nil {
		return err
	}

	select {
	case err := <-finished:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-finished:
			return err
		default:
			return ErrClosed
		}
	}
}

// Close stops the loop after the task in progress. Queued tasks are dropped.
// It must not be called from the loop goroutine.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
