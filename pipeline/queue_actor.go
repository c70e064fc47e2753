// File: pipeline/queue_actor.go
package pipeline

import (
	"github.com/lguibr/flowline/bollywood"
	"github.com/sirupsen/logrus"
)

// QueueActor owns a BoundedQueue. Pushes from the generator and pop
// requests from the consumer arrive in its mailbox and are applied one at a
// time, so no observer ever sees a torn state.
type QueueActor struct {
	queue    *BoundedQueue
	counters QueueCounters
	subs     subscribers
	log      logrus.FieldLogger
}

// NewQueueActorProducer creates a bollywood.Producer for QueueActor.
func NewQueueActorProducer(capacity int, log logrus.FieldLogger) bollywood.Producer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func() bollywood.Actor {
		return &QueueActor{
			queue: NewBoundedQueue(capacity),
			log:   log.WithField("actor", "queue"),
		}
	}
}

// Receive handles incoming messages for the QueueActor.
func (a *QueueActor) Receive(ctx bollywood.Context) {
	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.log.WithField("capacity", a.queue.Cap()).Info("Queue started")

	case PushCommand:
		a.push(ctx, msg.Value)

	case PopRequest:
		a.pop(ctx, msg.ReplyTo)

	case Subscribe:
		a.subs.add(msg.PID)

	case Unsubscribe:
		a.subs.remove(msg.PID)

	case GetStateRequest:
		ctx.Reply(QueueState{
			Items:    a.queue.Snapshot(),
			Capacity: a.queue.Cap(),
			Counters: a.counters,
		})

	case bollywood.Stopping:
		a.log.WithField("remaining", a.queue.Len()).Info("Queue stopping")

	case bollywood.Stopped:

	default:
		a.log.Warnf("Queue received unknown message: %T", msg)
	}
}

func (a *QueueActor) push(ctx bollywood.Context, v int) {
	dropped, evicted := a.queue.Push(v)
	a.counters.Pushed++
	if evicted {
		a.counters.Evicted++
		a.log.WithField("value", dropped).Debug("Queue full, evicted oldest")
	}
	a.subs.broadcast(ctx, a.snapshot())
	if evicted {
		a.subs.broadcast(ctx, ValueEvicted{Value: dropped})
	}
}

// pop is a no-op on an empty queue: no snapshot, no Popped, no ValuePopped.
func (a *QueueActor) pop(ctx bollywood.Context, replyTo *bollywood.PID) {
	v, ok := a.queue.Pop()
	if !ok {
		a.counters.EmptyPops++
		return
	}
	a.counters.Popped++
	a.subs.broadcast(ctx, a.snapshot())
	if replyTo == nil {
		replyTo = ctx.Sender()
	}
	ctx.Engine().Send(replyTo, Popped{Value: v}, ctx.Self())
	a.subs.broadcast(ctx, ValuePopped{Value: v})
}

func (a *QueueActor) snapshot() QueueSnapshot {
	return QueueSnapshot{
		Items:    a.queue.Snapshot(),
		Capacity: a.queue.Cap(),
		Counters: a.counters,
	}
}
