// File: pipeline/pipeline.go
package pipeline

import (
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lguibr/flowline/bollywood"
	"github.com/lguibr/flowline/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by operations on a pipeline that has been shut down.
var ErrClosed = errors.New("pipeline: closed")

const askTimeout = time.Second

// Pipeline spawns the generator, queue and consumer actors on one engine,
// wires generator -> queue -> consumer, and drives the periodic triggers.
// It only ever talks to the actors through messages.
type Pipeline struct {
	cfg    utils.Config
	engine *bollywood.Engine
	clock  Clock
	log    logrus.FieldLogger

	queuePID     *bollywood.PID
	generatorPID *bollywood.PID
	consumerPID  *bollywood.PID

	mu               sync.Mutex
	observers        []*bollywood.PID
	generatorTrigger *trigger // Non-nil while the generator is started
	consumerTrigger  *trigger // Non-nil while the consumer is started
	refreshTrigger   *trigger
	closed           bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the wall clock driving the triggers.
func WithClock(clock Clock) Option {
	return func(p *Pipeline) { p.clock = clock }
}

// WithLogger sets the logger shared by the engine and actors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New validates cfg and spawns the three core actors. Nothing is running
// until StartGenerator or StartConsumer is called.
func New(cfg utils.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "pipeline config")
	}
	p := &Pipeline{
		cfg:   cfg,
		clock: RealClock{},
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.engine = bollywood.NewEngine(
		bollywood.WithLogger(p.log),
		bollywood.WithMailboxSize(cfg.MailboxSize),
	)

	p.queuePID = p.engine.Spawn(bollywood.NewProps(NewQueueActorProducer(cfg.QueueCapacity, p.log)).WithName("queue"))
	p.generatorPID = p.engine.Spawn(bollywood.NewProps(NewGeneratorActorProducer(p.queuePID, p.log)).WithName("generator"))
	p.consumerPID = p.engine.Spawn(bollywood.NewProps(NewConsumerActorProducer(p.queuePID, p.log)).WithName("consumer"))

	p.log.WithFields(logrus.Fields{
		"generatorPeriod": cfg.GeneratorTickPeriod(),
		"consumerPeriod":  cfg.ConsumerTickPeriod(),
		"capacity":        cfg.QueueCapacity,
	}).Info("Pipeline ready")
	return p, nil
}

// Engine exposes the actor engine so observers can be spawned on it.
func (p *Pipeline) Engine() *bollywood.Engine { return p.engine }

// Config returns the validated configuration the pipeline was built with.
func (p *Pipeline) Config() utils.Config { return p.cfg }

// Subscribe registers pid for the events of all three core actors.
func (p *Pipeline) Subscribe(pid *bollywood.PID) {
	for _, target := range []*bollywood.PID{p.generatorPID, p.queuePID, p.consumerPID} {
		p.engine.Send(target, Subscribe{PID: pid}, nil)
	}
}

// Unsubscribe removes pid from all three core actors.
func (p *Pipeline) Unsubscribe(pid *bollywood.PID) {
	for _, target := range []*bollywood.PID{p.generatorPID, p.queuePID, p.consumerPID} {
		p.engine.Send(target, Unsubscribe{PID: pid}, nil)
	}
}

// SpawnObserver spawns an actor from props, subscribes it to every event
// and stops it after the core actors on Shutdown.
func (p *Pipeline) SpawnObserver(props *bollywood.Props) (*bollywood.PID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	pid := p.engine.Spawn(props)
	if pid == nil {
		return nil, errors.Wrap(bollywood.ErrEngineStopping, "spawning observer")
	}
	p.observers = append(p.observers, pid)
	p.Subscribe(pid)
	return pid, nil
}

// StartGenerator sets the generator running and starts its trigger.
// Calling it again while running has no further effect.
func (p *Pipeline) StartGenerator() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.engine.Send(p.generatorPID, StartCommand{}, nil)
	if p.generatorTrigger == nil {
		p.generatorTrigger = startTrigger("generator", p.clock, p.cfg.GeneratorTickPeriod(), p.TickGenerator, p.log)
	}
}

// StopGenerator cancels the generator trigger and clears its run flag.
func (p *Pipeline) StopGenerator() {
	p.mu.Lock()
	t := p.generatorTrigger
	p.generatorTrigger = nil
	closed := p.closed
	p.mu.Unlock()
	if t != nil {
		t.stop()
	}
	if !closed {
		p.engine.Send(p.generatorPID, StopCommand{}, nil)
	}
}

// StartConsumer sets the consumer running and starts its trigger.
func (p *Pipeline) StartConsumer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.engine.Send(p.consumerPID, StartCommand{}, nil)
	if p.consumerTrigger == nil {
		p.consumerTrigger = startTrigger("consumer", p.clock, p.cfg.ConsumerTickPeriod(), p.TickConsumer, p.log)
	}
}

// StopConsumer cancels the consumer trigger and clears its run flag. A pop
// already requested still completes and is relayed as Consumed.
func (p *Pipeline) StopConsumer() {
	p.mu.Lock()
	t := p.consumerTrigger
	p.consumerTrigger = nil
	closed := p.closed
	p.mu.Unlock()
	if t != nil {
		t.stop()
	}
	if !closed {
		p.engine.Send(p.consumerPID, StopCommand{}, nil)
	}
}

// ToggleGenerator flips the generator between started and stopped and
// reports whether it is now started.
func (p *Pipeline) ToggleGenerator() bool {
	if p.GeneratorStarted() {
		p.StopGenerator()
		return false
	}
	p.StartGenerator()
	return true
}

// ToggleConsumer flips the consumer between started and stopped.
func (p *Pipeline) ToggleConsumer() bool {
	if p.ConsumerStarted() {
		p.StopConsumer()
		return false
	}
	p.StartConsumer()
	return true
}

// GeneratorStarted reports whether the generator trigger is active.
func (p *Pipeline) GeneratorStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generatorTrigger != nil
}

// ConsumerStarted reports whether the consumer trigger is active.
func (p *Pipeline) ConsumerStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consumerTrigger != nil
}

// TickGenerator fires one generator tick. It never blocks.
func (p *Pipeline) TickGenerator() {
	p.engine.Send(p.generatorPID, Tick{}, nil)
}

// TickConsumer fires one consumer tick. It never blocks.
func (p *Pipeline) TickConsumer() {
	p.engine.Send(p.consumerPID, Tick{}, nil)
}

// StartRefresh calls refresh on the display refresh period until Shutdown.
// refresh runs on the trigger goroutine and should return quickly.
func (p *Pipeline) StartRefresh(refresh func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.refreshTrigger != nil {
		return
	}
	p.refreshTrigger = startTrigger("refresh", p.clock, p.cfg.DisplayRefreshPeriod(), refresh, p.log)
}

// GeneratorState asks the generator for its state.
func (p *Pipeline) GeneratorState() (GeneratorState, error) {
	reply, err := p.engine.Ask(p.generatorPID, GetStateRequest{}, askTimeout)
	if err != nil {
		return GeneratorState{}, err
	}
	state, ok := reply.(GeneratorState)
	if !ok {
		return GeneratorState{}, errors.Errorf("unexpected generator reply %T", reply)
	}
	return state, nil
}

// QueueState asks the queue for a snapshot.
func (p *Pipeline) QueueState() (QueueState, error) {
	reply, err := p.engine.Ask(p.queuePID, GetStateRequest{}, askTimeout)
	if err != nil {
		return QueueState{}, err
	}
	state, ok := reply.(QueueState)
	if !ok {
		return QueueState{}, errors.Errorf("unexpected queue reply %T", reply)
	}
	return state, nil
}

// ConsumerState asks the consumer for its state.
func (p *Pipeline) ConsumerState() (ConsumerState, error) {
	reply, err := p.engine.Ask(p.consumerPID, GetStateRequest{}, askTimeout)
	if err != nil {
		return ConsumerState{}, err
	}
	state, ok := reply.(ConsumerState)
	if !ok {
		return ConsumerState{}, errors.Errorf("unexpected consumer reply %T", reply)
	}
	return state, nil
}

// Shutdown cancels every trigger, then stops the actors upstream first so
// each one drains the messages its producers already sent: generator,
// consumer, queue, then observers. A Popped still travelling to the
// consumer once it has exited is discarded.
func (p *Pipeline) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	triggers := []*trigger{p.generatorTrigger, p.consumerTrigger, p.refreshTrigger}
	p.generatorTrigger, p.consumerTrigger, p.refreshTrigger = nil, nil, nil
	observers := append([]*bollywood.PID(nil), p.observers...)
	p.mu.Unlock()

	for _, t := range triggers {
		if t != nil {
			t.stop()
		}
	}

	timeout := p.cfg.ShutdownTimeout()
	var result *multierror.Error
	order := append([]*bollywood.PID{p.generatorPID, p.consumerPID, p.queuePID}, observers...)
	for _, pid := range order {
		if err := p.engine.StopAndWait(pid, timeout); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := p.engine.Shutdown(timeout); err != nil {
		result = multierror.Append(result, err)
	}
	p.log.Info("Pipeline shut down")
	return result.ErrorOrNil()
}
