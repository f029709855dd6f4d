// Package fsm implements a guarded finite-state-machine engine that is generic over
// the state, event and entity types it drives.
//
// A Table is declared once through a Builder and never mutated afterwards. A Machine
// binds a Table to a current state and an extended Context for exactly one Dispatch.
package fsm

// EventType is the category of an event
type EventType string

const (
	// EventTypeEvent is an ordinary, externally triggered event
	EventTypeEvent EventType = "EVENT"

	// EventTypeTimer is a time based event. Tables reject transitions on timer events.
	EventTypeTimer EventType = "TIMER"
)

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// State is the constraint satisfied by state enumerations
type State interface {
	comparable
	String() string
}

// Event is the constraint satisfied by event enumerations
type Event interface {
	comparable
	String() string
	Type() EventType
}

// Guard decides whether a transition may fire. A rejecting guard may record a
// reason with Context.SetError.
type Guard[T any] func(c *Context[T]) bool

// Action runs after its guard accepted and before the target state is applied.
// A returned error aborts the transition.
type Action[T any] func(c *Context[T]) error

// Transition is one row of a transition table
type Transition[S State, E Event, T any] struct {
	Source S
	Event  E
	Target S
	Guard  Guard[T]
	Action Action[T]
}

// Accepts evaluates the guard, treating a missing guard as always true
func (t Transition[S, E, T]) Accepts(c *Context[T]) bool {
	if t.Guard == nil {
		return true
	}
	return t.Guard(c)
}

// Run executes the action, treating a missing action as a no-op
func (t Transition[S, E, T]) Run(c *Context[T]) error {
	if t.Action == nil {
		return nil
	}
	return t.Action(c)
}

// Listener observes a machine during dispatch
type Listener[S State, E Event] interface {
	// StateChanged is called after a transition was applied
	StateChanged(from, to S, event E)

	// EventNotAccepted is called when an event was rejected
	EventNotAccepted(state S, event E, reason string)

	// ContextErrorSet is called when a guard or action records an error on the context
	ContextErrorSet(reason string)
}
