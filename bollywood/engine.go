package bollywood

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultMailboxSize = 1024

var (
	// ErrEngineStopping is returned by Ask once Shutdown has begun.
	ErrEngineStopping = errors.New("bollywood: engine is stopping")
	// ErrActorNotFound is returned when addressing a PID the engine does not track.
	ErrActorNotFound = errors.New("bollywood: actor not found")
	// ErrAskTimeout is returned when an Ask receives no reply in time.
	ErrAskTimeout = errors.New("bollywood: ask timed out")
	// ErrStopTimeout is returned when an actor does not exit in time.
	ErrStopTimeout = errors.New("bollywood: actor did not stop in time")
)

// Engine manages the lifecycle and message dispatching for actors.
type Engine struct {
	pidCounter  uint64
	actors      map[string]*process
	mu          sync.RWMutex // Protects the actors map
	stopping    atomic.Bool  // Indicates if the engine is shutting down
	mailboxSize int
	log         logrus.FieldLogger
	running     sync.WaitGroup

	pendingMu sync.Mutex
	pending   map[string]chan futureResponse
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used by the engine and its processes.
func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMailboxSize sets the buffered capacity of every actor mailbox.
func WithMailboxSize(size int) EngineOption {
	return func(e *Engine) {
		if size > 0 {
			e.mailboxSize = size
		}
	}
}

// NewEngine creates a new actor engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		actors:      make(map[string]*process),
		pending:     make(map[string]chan futureResponse),
		mailboxSize: defaultMailboxSize,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// nextPID generates a unique process ID.
func (e *Engine) nextPID(name string) *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	if name == "" {
		name = "actor"
	}
	return &PID{ID: fmt.Sprintf("%s-%d", name, id)}
}

// Spawn creates and starts a new actor based on the provided Props.
// It returns the PID of the newly created actor, or nil if the engine is stopping.
func (e *Engine) Spawn(props *Props) *PID {
	pid := e.nextPID(props.name)
	proc := newProcess(e, pid, props)

	// Registering under mu keeps running.Add ordered before Shutdown's Wait.
	e.mu.Lock()
	if e.stopping.Load() {
		e.mu.Unlock()
		e.log.Warn("Engine is stopping, cannot spawn new actors")
		return nil
	}
	e.actors[pid.ID] = proc
	e.running.Add(1)
	e.mu.Unlock()

	go proc.run()

	proc.sendMessage(&messageEnvelope{Message: Started{}})

	return pid
}

// Send delivers a message to the actor identified by the PID.
// Send never blocks: a full mailbox drops the message.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	if e.stopping.Load() && !isSystemMessage(message) {
		e.log.WithField("pid", pid.ID).Tracef("Engine is stopping, dropping %T", message)
		return
	}

	proc, ok := e.lookup(pid)
	if !ok {
		e.log.WithField("pid", pid.ID).Debugf("Actor not found, dropping %T", message)
		return
	}
	proc.sendMessage(&messageEnvelope{Sender: sender, Message: message})
}

// Ask sends a message and waits for the actor to Reply.
// An error value passed to Reply is returned as the error.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if e.stopping.Load() {
		return nil, ErrEngineStopping
	}
	if pid == nil {
		return nil, errors.Wrap(ErrActorNotFound, "ask with nil pid")
	}
	proc, ok := e.lookup(pid)
	if !ok {
		return nil, errors.Wrapf(ErrActorNotFound, "ask %s", pid)
	}

	requestID := uuid.NewString()
	replyCh := make(chan futureResponse, 1)
	e.pendingMu.Lock()
	e.pending[requestID] = replyCh
	e.pendingMu.Unlock()
	defer func() {
		e.pendingMu.Lock()
		delete(e.pending, requestID)
		e.pendingMu.Unlock()
	}()

	if !proc.sendMessage(&messageEnvelope{Message: message, RequestID: requestID}) {
		return nil, errors.Errorf("bollywood: mailbox of %s rejected %T", pid, message)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-replyCh:
		return resp.Result, resp.Err
	case <-proc.done:
		// The reply may have landed just before the actor exited.
		select {
		case resp := <-replyCh:
			return resp.Result, resp.Err
		default:
		}
		return nil, errors.Wrapf(ErrActorNotFound, "%s stopped before replying to %T", pid, message)
	case <-timer.C:
		return nil, errors.Wrapf(ErrAskTimeout, "%T to %s after %v", message, pid, timeout)
	}
}

// resolve hands a reply to the goroutine blocked in Ask, if it is still waiting.
func (e *Engine) resolve(requestID string, response interface{}) {
	e.pendingMu.Lock()
	replyCh, ok := e.pending[requestID]
	e.pendingMu.Unlock()
	if !ok {
		return
	}

	resp := futureResponse{Result: response}
	if err, isErr := response.(error); isErr {
		resp = futureResponse{Err: err}
	}
	select {
	case replyCh <- resp:
	default:
	}
}

// Stop requests an actor to stop once it has processed every message
// already in its mailbox. If the mailbox is full the actor is stopped
// immediately and the backlog is discarded.
func (e *Engine) Stop(pid *PID) {
	proc, ok := e.lookup(pid)
	if !ok {
		return
	}
	if !proc.sendMessage(&messageEnvelope{Message: Stopping{}}) {
		proc.forceStop()
	}
}

// StopAndWait stops an actor and blocks until its goroutine has exited.
// An actor that misses the timeout is force-stopped and ErrStopTimeout is returned.
func (e *Engine) StopAndWait(pid *PID, timeout time.Duration) error {
	proc, ok := e.lookup(pid)
	if !ok {
		return nil
	}
	e.Stop(pid)

	select {
	case <-proc.done:
		return nil
	case <-time.After(timeout):
	}

	proc.forceStop()
	select {
	case <-proc.done:
	case <-time.After(timeout):
	}
	return errors.Wrapf(ErrStopTimeout, "%s after %v", pid, timeout)
}

func (e *Engine) lookup(pid *PID) (*process, bool) {
	if pid == nil {
		return nil, false
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	return proc, ok
}

// remove removes an actor process from the engine's tracking.
func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// ActorCount returns the number of live actors.
func (e *Engine) ActorCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.actors)
}

// Shutdown stops all actors and waits for them to terminate gracefully.
// Actors still running when the timeout expires are force-stopped.
func (e *Engine) Shutdown(timeout time.Duration) error {
	e.mu.Lock()
	if !e.stopping.CompareAndSwap(false, true) {
		e.mu.Unlock()
		e.log.Debug("Engine already shutting down")
		return nil
	}
	procs := make([]*process, 0, len(e.actors))
	for _, proc := range e.actors {
		procs = append(procs, proc)
	}
	e.mu.Unlock()

	e.log.WithField("actors", len(procs)).Info("Engine shutdown initiated")
	for _, proc := range procs {
		e.Stop(proc.pid)
	}

	allDone := make(chan struct{})
	go func() {
		e.running.Wait()
		close(allDone)
	}()

	select {
	case <-allDone:
		e.log.Info("Engine shutdown complete")
		return nil
	case <-time.After(timeout):
	}

	e.mu.RLock()
	remaining := make([]string, 0, len(e.actors))
	for id, proc := range e.actors {
		remaining = append(remaining, id)
		proc.forceStop()
	}
	e.mu.RUnlock()

	e.log.WithField("remaining", remaining).Warn("Engine shutdown timeout, actors force-stopped")
	select {
	case <-allDone:
	case <-time.After(timeout):
	}
	return errors.Wrapf(ErrStopTimeout, "%d actors after %v", len(remaining), timeout)
}
