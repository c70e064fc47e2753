// File: pipeline/messages.go
package pipeline

import "github.com/lguibr/flowline/bollywood"

// --- Commands (orchestrator -> actors) ---

// StartCommand sets an actor's run flag. Idempotent.
type StartCommand struct{}

// StopCommand clears an actor's run flag. Idempotent. It does not cancel
// work already dispatched.
type StopCommand struct{}

// Tick is one firing of the actor's periodic trigger.
type Tick struct{}

// Subscribe registers an observer for the actor's events.
type Subscribe struct {
	PID *bollywood.PID
}

// Unsubscribe removes an observer.
type Unsubscribe struct {
	PID *bollywood.PID
}

// GetStateRequest asks an actor for its state (used via Ask).
type GetStateRequest struct{}

// --- Data flow (actor -> actor) ---

// PushCommand carries a produced value from the generator to the queue.
type PushCommand struct {
	Value int
}

// PopRequest asks the queue for its head. The value, if any, is sent to
// ReplyTo as Popped.
type PopRequest struct {
	ReplyTo *bollywood.PID
}

// Popped is the queue's answer to a PopRequest. It is never sent for an
// empty queue.
type Popped struct {
	Value int
}

// --- Events (actors -> observers) ---

// NumberProduced is emitted by the generator on every successful tick.
type NumberProduced struct {
	Value int
}

// QueueSnapshot is emitted by the queue after every mutation.
type QueueSnapshot struct {
	Items    []int // Copy of the contents, head first
	Capacity int
	Counters QueueCounters
}

// ValuePopped is emitted by the queue when a pop removes a value.
type ValuePopped struct {
	Value int
}

// ValueEvicted is emitted by the queue when a push onto a full queue drops the head.
type ValueEvicted struct {
	Value int
}

// Consumed is emitted by the consumer for every Popped it receives.
type Consumed struct {
	Value int
}

// --- State replies ---

// GeneratorState is the generator's reply to GetStateRequest.
type GeneratorState struct {
	Running bool
	Value   int
}

// ConsumerState is the consumer's reply to GetStateRequest.
type ConsumerState struct {
	Running bool
}

// QueueCounters accumulate over the queue's lifetime.
type QueueCounters struct {
	Pushed    int
	Popped    int
	Evicted   int
	EmptyPops int
}

// QueueState is the queue's reply to GetStateRequest.
type QueueState struct {
	Items    []int
	Capacity int
	Counters QueueCounters
}
