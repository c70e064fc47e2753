// File: pipeline/clock.go
package pipeline

import (
	"sync"
	"time"
)

// Ticker delivers periodic ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates Tickers. The pipeline takes one so tests can drive every
// trigger by hand.
type Clock interface {
	NewTicker(period time.Duration) Ticker
}

// RealClock is backed by time.Ticker.
type RealClock struct{}

func (RealClock) NewTicker(period time.Duration) Ticker {
	return realTicker{time.NewTicker(period)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// ManualClock is a virtual clock. Time only moves on Advance, which
// delivers every tick that falls due, in time order, and blocks until each
// one has been received.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*ManualTicker
}

// NewManualClock returns a ManualClock starting at the Unix epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

// ManualTicker is a Ticker owned by a ManualClock.
type ManualTicker struct {
	period time.Duration
	next   time.Time
	ch     chan time.Time
	done   chan struct{}
	once   sync.Once
}

func (t *ManualTicker) C() <-chan time.Time { return t.ch }

func (t *ManualTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *ManualTicker) stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (c *ManualClock) NewTicker(period time.Duration) Ticker {
	if period <= 0 {
		panic("pipeline: non-positive ticker period")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ManualTicker{
		period: period,
		next:   c.now.Add(period),
		ch:     make(chan time.Time),
		done:   make(chan struct{}),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Now returns the virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		c.pruneLocked()
		var due *ManualTicker
		for _, t := range c.tickers {
			if t.next.After(target) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		at := due.next
		c.now = at
		due.next = at.Add(due.period)
		c.mu.Unlock()

		select {
		case due.ch <- at:
		case <-due.done:
		}
	}
}

// Tickers returns the number of live tickers.
func (c *ManualClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	return len(c.tickers)
}

func (c *ManualClock) pruneLocked() {
	live := c.tickers[:0]
	for _, t := range c.tickers {
		if !t.stopped() {
			live = append(live, t)
		}
	}
	c.tickers = live
}
