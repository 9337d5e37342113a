package poll

import (
	"sync"
	"time"
)

// ManualClock hands out tickers that only fire when Tick is called.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

type manualTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (c *ManualClock) NewTicker(time.Duration) Ticker {
	t := &manualTicker{c: make(chan time.Time)}

	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tick delivers one tick to every live ticker and blocks until each has been
// received. It reports whether any ticker took it.
func (c *ManualClock) Tick() bool {
	c.mu.Lock()
	ts := append([]*manualTicker(nil), c.tickers...)
	c.mu.Unlock()

	delivered := false
	for _, t := range ts {
		if t.deliver() {
			delivered = true
		}
	}
	return delivered
}

func (t *manualTicker) deliver() bool {
	for {
		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()
		if stopped {
			return false
		}

		select {
		case t.c <- time.Now():
			return true
		case <-time.After(time.Millisecond):
		}
	}
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}
