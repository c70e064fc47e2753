// File: display/display_actor.go
package display

import (
	"time"

	"github.com/lguibr/flowline/bollywood"
	"github.com/lguibr/flowline/pipeline"
	"github.com/lguibr/flowline/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GetSnapshotRequest asks the DisplayActor for its current view (used via Ask).
type GetSnapshotRequest struct{}

// Snapshot is what the display draws: both histories oldest first, and the
// live queue contents head first.
type Snapshot struct {
	Generated []int
	Queue     []int
	Capacity  int
	Consumed  []int
	Stats     StatsSummary
}

// DisplayActor observes the pipeline events and keeps the bounded
// histories the presentation shell renders.
type DisplayActor struct {
	generated *History[int]
	consumed  *History[int]
	queue     []int
	capacity  int
	stats     *Stats
	log       logrus.FieldLogger
}

// NewDisplayActorProducer creates a bollywood.Producer for DisplayActor.
func NewDisplayActorProducer(historySize, queueCapacity int, log logrus.FieldLogger) bollywood.Producer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func() bollywood.Actor {
		return &DisplayActor{
			generated: NewHistory[int](historySize),
			consumed:  NewHistory[int](historySize),
			capacity:  queueCapacity,
			stats:     NewStats(queueCapacity),
			log:       log.WithField("actor", "display"),
		}
	}
}

// NewProps returns the props of a DisplayActor sized from cfg.
func NewProps(cfg utils.Config, log logrus.FieldLogger) *bollywood.Props {
	return bollywood.NewProps(NewDisplayActorProducer(cfg.HistorySize, cfg.QueueCapacity, log)).WithName("display")
}

// Receive handles incoming messages for the DisplayActor.
func (a *DisplayActor) Receive(ctx bollywood.Context) {
	switch msg := ctx.Message().(type) {
	case bollywood.Started, bollywood.Stopping, bollywood.Stopped:

	case pipeline.NumberProduced:
		a.generated.Append(msg.Value)
		a.stats.Produced++

	case pipeline.QueueSnapshot:
		a.queue = msg.Items
		a.capacity = msg.Capacity
		a.stats.RecordDepth(len(msg.Items))

	case pipeline.ValueEvicted:
		a.stats.Evicted++

	case pipeline.ValuePopped:
		// Consumption is counted on Consumed.

	case pipeline.Consumed:
		a.consumed.Append(msg.Value)
		a.stats.Consumed++

	case GetSnapshotRequest:
		ctx.Reply(a.snapshot())

	default:
		a.log.Warnf("Display received unknown message: %T", msg)
	}
}

func (a *DisplayActor) snapshot() Snapshot {
	queue := make([]int, len(a.queue))
	copy(queue, a.queue)
	return Snapshot{
		Generated: a.generated.Values(),
		Queue:     queue,
		Capacity:  a.capacity,
		Consumed:  a.consumed.Values(),
		Stats:     a.stats.Summary(),
	}
}

// AskSnapshot fetches the current Snapshot from a DisplayActor.
func AskSnapshot(engine *bollywood.Engine, pid *bollywood.PID, timeout time.Duration) (Snapshot, error) {
	reply, err := engine.Ask(pid, GetSnapshotRequest{}, timeout)
	if err != nil {
		return Snapshot{}, err
	}
	snap, ok := reply.(Snapshot)
	if !ok {
		return Snapshot{}, errors.Errorf("unexpected display reply %T", reply)
	}
	return snap, nil
}
