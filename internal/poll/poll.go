// Package poll runs a function once immediately and then on every tick until
// stopped.
package poll

import (
	"context"
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock makes tickers. Tests swap in a manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (t realTicker) C() <-chan time.Time { return t.t.C }
func (t realTicker) Stop()               { t.t.Stop() }

// RealClock is backed by time.Ticker.
var RealClock Clock = realClock{}

// Task is the handle of a running poll loop.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start calls fn right away and then once per interval. fn runs on the task's
// goroutine, so a slow call delays the next one instead of overlapping it.
// The context passed to fn is cancelled by Stop.
func Start(parent context.Context, clock Clock, interval time.Duration, fn func(ctx context.Context)) *Task {
	if clock == nil {
		clock = RealClock
	}

	ctx, cancel := context.WithCancel(parent)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(t.done)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()

	return t
}

// Stop ends the loop and waits for it to exit. No call to fn starts after Stop
// returns. Safe to call more than once.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the loop has exited.
func (t *Task) Done() <-chan struct{} { return t.done }
