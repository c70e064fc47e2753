// File: pipeline/trigger.go
package pipeline

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// trigger runs fire on every tick of its Ticker in its own goroutine.
// fire must not block; the pipeline's fire functions only enqueue messages.
type trigger struct {
	name     string
	ticker   Ticker
	fire     func()
	log      logrus.FieldLogger
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func startTrigger(name string, clock Clock, period time.Duration, fire func(), log logrus.FieldLogger) *trigger {
	t := &trigger{
		name:   name,
		ticker: clock.NewTicker(period),
		fire:   fire,
		log:    log.WithField("trigger", name),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// run is the loop that turns ticker ticks into fire calls.
func (t *trigger) run() {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorf("PANIC recovered in trigger loop: %v\n%s", r, debug.Stack())
			t.ticker.Stop()
		}
	}()

	t.log.Debug("Trigger loop started")
	defer t.log.Debug("Trigger loop stopped")

	for {
		select {
		case <-t.stopCh: // Prioritize stop signal
			return
		case <-t.ticker.C():
			// A received tick always fires, so stop() returning means every
			// delivered tick has been handled.
			t.fire()
		}
	}
}

// stop cancels the trigger and waits for its goroutine. Idempotent.
func (t *trigger) stop() {
	t.stopOnce.Do(func() {
		t.ticker.Stop()
		close(t.stopCh)
	})
	<-t.done
}
