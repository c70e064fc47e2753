// File: pipeline/consumer_actor.go
package pipeline

import (
	"github.com/lguibr/flowline/bollywood"
	"github.com/sirupsen/logrus"
)

// ConsumerActor requests one value from the queue per Tick while running
// and relays every value it is handed as Consumed.
//
// Stopping the consumer only prevents new pop requests. A Popped that
// arrives after StopCommand, for a request sent while running, is still
// relayed.
type ConsumerActor struct {
	running  bool
	queuePID *bollywood.PID
	subs     subscribers
	log      logrus.FieldLogger
}

// NewConsumerActorProducer creates a bollywood.Producer for ConsumerActor.
func NewConsumerActorProducer(queuePID *bollywood.PID, log logrus.FieldLogger) bollywood.Producer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func() bollywood.Actor {
		return &ConsumerActor{
			queuePID: queuePID,
			log:      log.WithField("actor", "consumer"),
		}
	}
}

// Receive handles incoming messages for the ConsumerActor.
func (a *ConsumerActor) Receive(ctx bollywood.Context) {
	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.log.Debug("Consumer started")

	case StartCommand:
		if !a.running {
			a.running = true
			a.log.Info("Consumer running")
		}

	case StopCommand:
		if a.running {
			a.running = false
			a.log.Info("Consumer paused")
		}

	case Tick:
		if a.running && a.queuePID != nil {
			ctx.Engine().Send(a.queuePID, PopRequest{ReplyTo: ctx.Self()}, ctx.Self())
		}

	case Popped:
		a.log.WithField("value", msg.Value).Trace("Consumed")
		a.subs.broadcast(ctx, Consumed{Value: msg.Value})

	case Subscribe:
		a.subs.add(msg.PID)

	case Unsubscribe:
		a.subs.remove(msg.PID)

	case GetStateRequest:
		ctx.Reply(ConsumerState{Running: a.running})

	case bollywood.Stopping, bollywood.Stopped:

	default:
		a.log.Warnf("Consumer received unknown message: %T", msg)
	}
}
