// File: pipeline/generator_actor.go
package pipeline

import (
	"github.com/lguibr/flowline/bollywood"
	"github.com/sirupsen/logrus"
)

// GeneratorActor produces 1, 2, 3, ... one value per Tick while running.
type GeneratorActor struct {
	running  bool
	value    int
	queuePID *bollywood.PID // Receives every produced value as a PushCommand
	subs     subscribers
	log      logrus.FieldLogger
}

// NewGeneratorActorProducer creates a bollywood.Producer for GeneratorActor.
func NewGeneratorActorProducer(queuePID *bollywood.PID, log logrus.FieldLogger) bollywood.Producer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func() bollywood.Actor {
		return &GeneratorActor{
			queuePID: queuePID,
			log:      log.WithField("actor", "generator"),
		}
	}
}

// Receive handles incoming messages for the GeneratorActor.
func (a *GeneratorActor) Receive(ctx bollywood.Context) {
	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.log.Debug("Generator started")

	case StartCommand:
		if !a.running {
			a.running = true
			a.log.WithField("value", a.value).Info("Generator running")
		}

	case StopCommand:
		if a.running {
			a.running = false
			a.log.WithField("value", a.value).Info("Generator paused")
		}

	case Tick:
		a.tick(ctx)

	case Subscribe:
		a.subs.add(msg.PID)

	case Unsubscribe:
		a.subs.remove(msg.PID)

	case GetStateRequest:
		ctx.Reply(GeneratorState{Running: a.running, Value: a.value})

	case bollywood.Stopping, bollywood.Stopped:

	default:
		a.log.Warnf("Generator received unknown message: %T", msg)
	}
}

func (a *GeneratorActor) tick(ctx bollywood.Context) {
	if !a.running {
		return
	}
	a.value++
	a.log.WithField("value", a.value).Trace("Produced")
	if a.queuePID != nil {
		ctx.Engine().Send(a.queuePID, PushCommand{Value: a.value}, ctx.Self())
	}
	a.subs.broadcast(ctx, NumberProduced{Value: a.value})
}
