// File: pipeline/pipeline_test.go
package pipeline

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/lguibr/flowline/bollywood"
	"github.com/lguibr/flowline/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, cfg utils.Config) (*Pipeline, *ManualClock, *MockObserver) {
	t.Helper()
	clock := NewManualClock()
	p, err := New(cfg, WithClock(clock), WithLogger(testLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown() })

	obs := &MockObserver{}
	_, err = p.SpawnObserver(bollywood.NewProps(func() bollywood.Actor { return obs }).WithName("observer"))
	require.NoError(t, err)
	return p, clock, obs
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.QueueCapacity = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestPipeline_OverflowThenDrain(t *testing.T) {
	cfg := utils.DefaultConfig()
	p, clock, obs := newTestPipeline(t, cfg)

	// Generator free-runs for 25 ticks with the consumer stopped.
	p.StartGenerator()
	clock.Advance(25 * cfg.GeneratorTickPeriod())
	p.StopGenerator()

	assert.Eventually(t, func() bool {
		q, err := p.QueueState()
		return err == nil && assert.ObjectsAreEqual(seq(6, 25), q.Items)
	}, testTimeout, testInterval, "queue should hold 6..25 after 5 evictions")
	assert.Eventually(t, func() bool { return len(obs.produced()) == 25 && len(obs.evicted()) == 5 }, testTimeout, testInterval)
	assert.Equal(t, seq(1, 25), obs.produced())
	assert.Equal(t, seq(1, 5), obs.evicted())

	gen, err := p.GeneratorState()
	require.NoError(t, err)
	assert.Equal(t, GeneratorState{Running: false, Value: 25}, gen)

	// Consumer drains everything in FIFO order; the last 5 ticks find the queue empty.
	p.StartConsumer()
	clock.Advance(25 * cfg.ConsumerTickPeriod())
	p.StopConsumer()

	assert.Eventually(t, func() bool { return len(obs.consumed()) == 20 }, testTimeout, testInterval)
	assert.Equal(t, seq(6, 25), obs.consumed())
	assert.Equal(t, seq(6, 25), obs.valuesPopped())

	// The consumer's last pop requests may still be on their way to the queue.
	want := QueueCounters{Pushed: 25, Popped: 20, Evicted: 5, EmptyPops: 5}
	assert.Eventually(t, func() bool {
		q, err := p.QueueState()
		return err == nil && len(q.Items) == 0 && q.Counters == want
	}, testTimeout, testInterval)

	for _, s := range obs.snapshots() {
		assert.LessOrEqual(t, len(s.Items), cfg.QueueCapacity)
	}
}

func TestPipeline_TriggersFollowStartStop(t *testing.T) {
	p, clock, obs := newTestPipeline(t, utils.DefaultConfig())

	assert.False(t, p.GeneratorStarted())
	clock.Advance(time.Second)
	assert.Equal(t, 0, clock.Tickers(), "no trigger runs before start")

	p.StartGenerator()
	p.StartGenerator()
	assert.True(t, p.GeneratorStarted())
	assert.Equal(t, 1, clock.Tickers(), "starting twice starts one trigger")

	p.StopGenerator()
	p.StopGenerator()
	assert.False(t, p.GeneratorStarted())
	assert.Equal(t, 0, clock.Tickers())

	clock.Advance(time.Second)
	gen, err := p.GeneratorState()
	require.NoError(t, err)
	assert.Equal(t, 0, gen.Value)
	assert.Empty(t, obs.produced())
}

func TestPipeline_UnsubscribeStopsEvents(t *testing.T) {
	p, _, _ := newTestPipeline(t, utils.DefaultConfig())

	obs, obsPID := spawnObserver(p.Engine())
	p.Subscribe(obsPID)
	p.StartGenerator()
	p.TickGenerator()
	assert.Eventually(t, func() bool { return len(obs.produced()) == 1 }, testTimeout, testInterval)

	p.Unsubscribe(obsPID)
	p.TickGenerator()
	p.TickGenerator()
	gen, err := p.GeneratorState()
	require.NoError(t, err)
	require.Equal(t, 3, gen.Value)

	// Anything the generator broadcast for ticks 2 and 3 was sent before
	// the state reply, so it is ahead of the marker.
	p.Engine().Send(obsPID, "marker", nil)
	assert.Eventually(t, func() bool {
		for _, msg := range obs.GetMessages() {
			if msg == "marker" {
				return true
			}
		}
		return false
	}, testTimeout, testInterval)
	assert.Equal(t, []int{1}, obs.produced())
}

func TestPipeline_ToggleMatchesButtons(t *testing.T) {
	p, _, _ := newTestPipeline(t, utils.DefaultConfig())

	assert.True(t, p.ToggleGenerator())
	assert.True(t, p.ToggleConsumer())
	gen, err := p.GeneratorState()
	require.NoError(t, err)
	cons, err := p.ConsumerState()
	require.NoError(t, err)
	assert.True(t, gen.Running)
	assert.True(t, cons.Running)

	assert.False(t, p.ToggleGenerator())
	assert.False(t, p.ToggleConsumer())
	gen, err = p.GeneratorState()
	require.NoError(t, err)
	cons, err = p.ConsumerState()
	require.NoError(t, err)
	assert.False(t, gen.Running)
	assert.False(t, cons.Running)
}

func TestPipeline_ManualTicks(t *testing.T) {
	p, _, obs := newTestPipeline(t, utils.DefaultConfig())

	p.TickGenerator() // not started
	p.StartGenerator()
	p.StopGenerator()
	p.StartGenerator()
	for i := 0; i < 3; i++ {
		p.TickGenerator()
	}
	assert.Eventually(t, func() bool { return len(obs.produced()) == 3 }, testTimeout, testInterval)
	assert.Equal(t, []int{1, 2, 3}, obs.produced())

	p.StartConsumer()
	p.TickConsumer()
	assert.Eventually(t, func() bool { return len(obs.consumed()) == 1 }, testTimeout, testInterval)
	assert.Equal(t, []int{1}, obs.consumed())
}

func TestPipeline_RefreshRunsOnItsOwnCadence(t *testing.T) {
	cfg := utils.DefaultConfig()
	p, clock, _ := newTestPipeline(t, cfg)

	var refreshes atomic.Int32
	p.StartRefresh(func() { refreshes.Add(1) })
	p.StartRefresh(func() { t.Error("second refresh callback must be ignored") })
	p.StartGenerator()

	clock.Advance(3 * cfg.DisplayRefreshPeriod())
	assert.Eventually(t, func() bool { return refreshes.Load() == 3 }, testTimeout, testInterval)

	p.StopGenerator()
	gen, err := p.GeneratorState()
	require.NoError(t, err)
	assert.Equal(t, 9, gen.Value, "generator ticks every 100ms independently of the 300ms refresh")
}

func TestPipeline_ShutdownDrainsAndReleasesEverything(t *testing.T) {
	p, clock, obs := newTestPipeline(t, utils.DefaultConfig())
	p.StartRefresh(func() {})
	p.StartGenerator()
	p.StartConsumer()
	clock.Advance(time.Second)

	for i := 0; i < 10; i++ {
		p.TickGenerator()
	}

	require.NoError(t, p.Shutdown())
	assert.Equal(t, 0, p.Engine().ActorCount())
	assert.Equal(t, 0, clock.Tickers())
	assert.False(t, p.GeneratorStarted())
	assert.False(t, p.ConsumerStarted())

	// Ticks sent before Shutdown were drained by the generator and the
	// queue before they exited.
	produced := obs.produced()
	assert.Equal(t, seq(1, len(produced)), produced)
	assert.GreaterOrEqual(t, len(produced), 20)

	// Everything after Shutdown is a no-op.
	assert.NoError(t, p.Shutdown())
	p.StartGenerator()
	assert.False(t, p.GeneratorStarted())
	_, err := p.SpawnObserver(bollywood.NewProps(func() bollywood.Actor { return &MockObserver{} }))
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = p.GeneratorState()
	assert.Error(t, err)
}
