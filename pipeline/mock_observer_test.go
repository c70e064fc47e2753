// File: pipeline/mock_observer_test.go
package pipeline

import (
	"io"
	"sync"
	"time"

	"github.com/lguibr/flowline/bollywood"
	"github.com/sirupsen/logrus"
)

const (
	testTimeout  = 2 * time.Second
	testInterval = 5 * time.Millisecond
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// --- Mock Observer Actor ---
// Records every non-system message it receives.
type MockObserver struct {
	mu       sync.Mutex
	received []interface{}
}

func (m *MockObserver) Receive(ctx bollywood.Context) {
	switch ctx.Message().(type) {
	case bollywood.Started, bollywood.Stopping, bollywood.Stopped:
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, ctx.Message())
}

func (m *MockObserver) GetMessages() []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]interface{}, len(m.received))
	copy(msgs, m.received)
	return msgs
}

func (m *MockObserver) produced() []int {
	var out []int
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(NumberProduced); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func (m *MockObserver) pushes() []int {
	var out []int
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(PushCommand); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func (m *MockObserver) popRequests() int {
	n := 0
	for _, msg := range m.GetMessages() {
		if _, ok := msg.(PopRequest); ok {
			n++
		}
	}
	return n
}

func (m *MockObserver) popped() []int {
	var out []int
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(Popped); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func (m *MockObserver) valuesPopped() []int {
	var out []int
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(ValuePopped); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func (m *MockObserver) evicted() []int {
	var out []int
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(ValueEvicted); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func (m *MockObserver) consumed() []int {
	var out []int
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(Consumed); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func (m *MockObserver) snapshots() []QueueSnapshot {
	var out []QueueSnapshot
	for _, msg := range m.GetMessages() {
		if v, ok := msg.(QueueSnapshot); ok {
			out = append(out, v)
		}
	}
	return out
}

func spawnObserver(engine *bollywood.Engine) (*MockObserver, *bollywood.PID) {
	obs := &MockObserver{}
	pid := engine.Spawn(bollywood.NewProps(func() bollywood.Actor { return obs }).WithName("observer"))
	return obs, pid
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}
