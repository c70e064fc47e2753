package bollywood

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// process represents the running instance of an actor, including its state and mailbox.
type process struct {
	engine   *Engine
	pid      *PID
	actor    Actor
	mailbox  chan *messageEnvelope
	props    *Props
	log      *logrus.Entry
	stopCh   chan struct{} // Closed to abandon the mailbox and exit immediately
	stopOnce sync.Once
	done     chan struct{} // Closed once the run loop has exited
	stopped  atomic.Bool
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		log:     engine.log.WithField("pid", pid.ID),
		mailbox: make(chan *messageEnvelope, engine.mailboxSize),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// sendMessage enqueues an envelope without blocking.
// It reports false when the message was dropped.
func (p *process) sendMessage(envelope *messageEnvelope) bool {
	if p.stopped.Load() && !isSystemMessage(envelope.Message) {
		p.log.Tracef("Actor already stopped, dropping %T", envelope.Message)
		return false
	}

	select {
	case p.mailbox <- envelope:
		return true
	default:
		p.log.Warnf("Actor mailbox full, dropping %T", envelope.Message)
		return false
	}
}

func (p *process) forceStop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// run is the main loop for the actor process.
func (p *process) run() {
	defer func() {
		p.stopped.Store(true)
		if p.actor != nil {
			p.invokeReceive(&messageEnvelope{Message: Stopped{}})
		}
		p.engine.remove(p.pid)
		close(p.done)
		p.engine.running.Done()
	}()

	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Actor panicked: %v\n%s", r, debug.Stack())
			p.stopped.Store(true)
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic("bollywood: producer returned nil actor for " + p.pid.ID)
	}

	for {
		// A forced stop wins over a non-empty mailbox.
		select {
		case <-p.stopCh:
			p.abandon()
			return
		default:
		}

		select {
		case <-p.stopCh:
			p.abandon()
			return

		case envelope := <-p.mailbox:
			switch envelope.Message.(type) {
			case Stopping:
				if p.stopped.CompareAndSwap(false, true) {
					p.invokeReceive(envelope)
				}
				return
			case Stopped:
				p.log.Warn("Actor received unexpected Stopped message via mailbox")
			default:
				if p.stopped.Load() {
					continue
				}
				p.invokeReceive(envelope)
			}
		}
	}
}

// abandon runs the Stopping handler for a forced stop; the backlog is discarded.
func (p *process) abandon() {
	if p.stopped.CompareAndSwap(false, true) {
		p.invokeReceive(&messageEnvelope{Message: Stopping{}})
	}
	if n := len(p.mailbox); n > 0 {
		p.log.Debugf("Actor force-stopped with %d messages discarded", n)
	}
}

// invokeReceive calls the actor's Receive method within a protected context.
func (p *process) invokeReceive(envelope *messageEnvelope) {
	ctx := &context{
		engine:    p.engine,
		self:      p.pid,
		sender:    envelope.Sender,
		message:   envelope.Message,
		requestID: envelope.RequestID,
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Actor panicked during Receive(%T): %v\n%s", envelope.Message, r, debug.Stack())
			if envelope.RequestID != "" {
				p.engine.resolve(envelope.RequestID, &PanicError{PID: p.pid, Reason: r})
			}
		}
	}()
	p.actor.Receive(ctx)
}

// PanicError is returned from Ask when the actor panicked while handling the request.
type PanicError struct {
	PID    *PID
	Reason interface{}
}

func (e *PanicError) Error() string {
	return "bollywood: actor " + e.PID.String() + " panicked"
}
