package fsm

import (
	"fmt"
)

// Rejection tells why a dispatch did not change the state
type Rejection int

const (
	// RejectionNone means the event was accepted
	RejectionNone Rejection = iota

	// RejectionNotApplicable means no transition exists for (state, event)
	RejectionNotApplicable

	// RejectionGuardFailed means the guard rejected the transition
	RejectionGuardFailed
)

// String returns the string representation of the rejection
func (r Rejection) String() string {
	switch r {
	case RejectionNone:
		return "NONE"
	case RejectionNotApplicable:
		return "NOT_APPLICABLE"
	case RejectionGuardFailed:
		return "GUARD_FAILED"
	default:
		return fmt.Sprintf("Rejection(%d)", int(r))
	}
}

// Outcome is the result of one dispatch
type Outcome[S State] struct {
	Accepted  bool
	From      S
	State     S
	Rejection Rejection
	Reason    string
}

// Err converts a rejected outcome into a wrapped sentinel error
func (o Outcome[S]) Err() error {
	switch o.Rejection {
	case RejectionNotApplicable:
		return fmt.Errorf("%w: %s", ErrNotApplicable, o.Reason)
	case RejectionGuardFailed:
		return fmt.Errorf("%w: %s", ErrGuardFailed, o.Reason)
	default:
		return nil
	}
}

// Machine binds a table to a current state and context for a single dispatch.
// A machine is not safe for concurrent use and must not be reused.
type Machine[S State, E Event, T any] struct {
	table     *Table[S, E, T]
	current   S
	ctx       *Context[T]
	listeners []Listener[S, E]
	used      bool
}

// MachineOption configures a machine
type MachineOption[S State, E Event, T any] func(*Machine[S, E, T])

// WithListener registers a listener on the machine
func WithListener[S State, E Event, T any](l Listener[S, E]) MachineOption[S, E, T] {
	return func(m *Machine[S, E, T]) {
		if l != nil {
			m.listeners = append(m.listeners, l)
		}
	}
}

// NewMachine creates a machine at the table's initial state with a fresh context
func NewMachine[S State, E Event, T any](table *Table[S, E, T], entity T, opts ...MachineOption[S, E, T]) *Machine[S, E, T] {
	m, _ := newMachine(table, table.Initial(), NewContext(entity), opts...)
	return m
}

// RestoreMachine creates a machine at a previously stored state
func RestoreMachine[S State, E Event, T any](table *Table[S, E, T], state S, ctx *Context[T], opts ...MachineOption[S, E, T]) (*Machine[S, E, T], error) {
	return newMachine(table, state, ctx, opts...)
}

func newMachine[S State, E Event, T any](table *Table[S, E, T], state S, ctx *Context[T], opts ...MachineOption[S, E, T]) (*Machine[S, E, T], error) {
	if !table.IsValid(state) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, state)
	}
	if ctx == nil {
		return nil, fmt.Errorf("machine context is required")
	}

	m := &Machine[S, E, T]{
		table:   table,
		current: state,
		ctx:     ctx,
	}
	for _, opt := range opts {
		opt(m)
	}

	ctx.onError = func(reason string) {
		for _, l := range m.listeners {
			l.ContextErrorSet(reason)
		}
	}
	return m, nil
}

// State returns the current state
func (m *Machine[S, E, T]) State() S {
	return m.current
}

// Context returns the extended context
func (m *Machine[S, E, T]) Context() *Context[T] {
	return m.ctx
}

// CanFire reports whether a transition exists for event. Guards are not evaluated.
func (m *Machine[S, E, T]) CanFire(event E) bool {
	_, ok := m.table.Lookup(m.current, event)
	return ok
}

// Dispatch evaluates event against the current state.
//
// The guard runs first, then the action, then the target state is applied. A
// rejection leaves the state unchanged and is reported through the outcome. The
// returned error is only set for ErrMachineUsed and ErrActionFailed.
func (m *Machine[S, E, T]) Dispatch(event E) (Outcome[S], error) {
	from := m.current
	if m.used {
		return Outcome[S]{From: from, State: from}, ErrMachineUsed
	}
	m.used = true

	t, ok := m.table.Lookup(from, event)
	if !ok {
		reason := notAcceptedMessage(from, event)
		m.notAccepted(from, event, reason)
		return Outcome[S]{
			From:      from,
			State:     from,
			Rejection: RejectionNotApplicable,
			Reason:    reason,
		}, nil
	}

	if !t.Accepts(m.ctx) {
		reason, ok := m.ctx.Error()
		if !ok {
			reason = notAcceptedMessage(from, event)
		}
		m.notAccepted(from, event, reason)
		return Outcome[S]{
			From:      from,
			State:     from,
			Rejection: RejectionGuardFailed,
			Reason:    reason,
		}, nil
	}

	if err := t.Run(m.ctx); err != nil {
		return Outcome[S]{From: from, State: from},
			fmt.Errorf("%w: %s on %s: %w", ErrActionFailed, event, from, err)
	}

	m.current = t.Target
	for _, l := range m.listeners {
		l.StateChanged(from, t.Target, event)
	}

	return Outcome[S]{
		Accepted: true,
		From:     from,
		State:    t.Target,
	}, nil
}

func (m *Machine[S, E, T]) notAccepted(state S, event E, reason string) {
	for _, l := range m.listeners {
		l.EventNotAccepted(state, event, reason)
	}
}
