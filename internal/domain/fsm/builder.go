package fsm

import (
	"errors"
	"fmt"
)

// Builder declares a transition table
type Builder[S State, E Event, T any] struct {
	initial    S
	hasInitial bool
	states     []S
	declared   map[S]bool
	terminal   map[S]bool
	configs    map[S]*StateConfiguration[S, E, T]
	order      []S
	errs       []error
}

// StateConfiguration configures the outgoing transitions of one state
type StateConfiguration[S State, E Event, T any] struct {
	builder     *Builder[S, E, T]
	source      S
	transitions []Transition[S, E, T]
}

// NewBuilder creates a new table builder
func NewBuilder[S State, E Event, T any]() *Builder[S, E, T] {
	return &Builder[S, E, T]{
		declared: make(map[S]bool),
		terminal: make(map[S]bool),
		configs:  make(map[S]*StateConfiguration[S, E, T]),
	}
}

// Initial designates the initial state and declares it
func (b *Builder[S, E, T]) Initial(state S) *Builder[S, E, T] {
	b.initial = state
	b.hasInitial = true
	b.States(state)
	return b
}

// States declares states in order. Redeclaring a state is a no-op.
func (b *Builder[S, E, T]) States(states ...S) *Builder[S, E, T] {
	for _, s := range states {
		if b.declared[s] {
			continue
		}
		b.declared[s] = true
		b.states = append(b.states, s)
	}
	return b
}

// End declares terminal states
func (b *Builder[S, E, T]) End(states ...S) *Builder[S, E, T] {
	b.States(states...)
	for _, s := range states {
		b.terminal[s] = true
	}
	return b
}

// Configure returns the configuration for the given source state
func (b *Builder[S, E, T]) Configure(state S) *StateConfiguration[S, E, T] {
	config, exists := b.configs[state]
	if !exists {
		config = &StateConfiguration[S, E, T]{
			builder: b,
			source:  state,
		}
		b.configs[state] = config
		b.order = append(b.order, state)
	}
	return config
}

// Permit allows event to move the state to target, running action if not nil
func (c *StateConfiguration[S, E, T]) Permit(event E, target S, action Action[T]) *StateConfiguration[S, E, T] {
	return c.PermitIf(event, target, nil, action)
}

// PermitIf allows event to move the state to target when guard accepts
func (c *StateConfiguration[S, E, T]) PermitIf(event E, target S, guard Guard[T], action Action[T]) *StateConfiguration[S, E, T] {
	if event.Type() == EventTypeTimer {
		c.builder.errs = append(c.builder.errs,
			fmt.Errorf("%w: %s from state %s", ErrTimerEvent, event, c.source))
		return c
	}

	for _, t := range c.transitions {
		if t.Event == event {
			c.builder.errs = append(c.builder.errs,
				fmt.Errorf("%w: state %s event %s", ErrDuplicateTransition, c.source, event))
			return c
		}
	}

	c.transitions = append(c.transitions, Transition[S, E, T]{
		Source: c.source,
		Event:  event,
		Target: target,
		Guard:  guard,
		Action: action,
	})
	return c
}

// Build validates the declaration and returns an immutable table
func (b *Builder[S, E, T]) Build() (*Table[S, E, T], error) {
	errs := append([]error{}, b.errs...)

	if !b.hasInitial {
		errs = append(errs, ErrNoInitialState)
	}

	table := &Table[S, E, T]{
		initial:  b.initial,
		states:   append([]S{}, b.states...),
		valid:    make(map[S]bool, len(b.states)),
		terminal: make(map[S]bool, len(b.terminal)),
		rows:     make(map[S][]Transition[S, E, T], len(b.configs)),
	}
	for _, s := range b.states {
		table.valid[s] = true
	}
	for s := range b.terminal {
		table.terminal[s] = true
	}

	for _, source := range b.order {
		config := b.configs[source]
		if !table.valid[source] {
			errs = append(errs, fmt.Errorf("%w: source %s is not declared", ErrInvalidState, source))
			continue
		}
		for _, t := range config.transitions {
			if !table.valid[t.Target] {
				errs = append(errs, fmt.Errorf("%w: target %s of %s/%s is not declared",
					ErrInvalidState, t.Target, source, t.Event))
				continue
			}
			table.rows[source] = append(table.rows[source], t)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid transition table: %w", errors.Join(errs...))
	}
	return table, nil
}

// MustBuild is like Build but panics on an invalid declaration
func (b *Builder[S, E, T]) MustBuild() *Table[S, E, T] {
	table, err := b.Build()
	if err != nil {
		panic(err)
	}
	return table
}
