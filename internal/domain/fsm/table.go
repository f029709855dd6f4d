package fsm

// Table is an immutable transition table. It is safe for concurrent use.
type Table[S State, E Event, T any] struct {
	initial  S
	states   []S
	valid    map[S]bool
	terminal map[S]bool
	rows     map[S][]Transition[S, E, T]
}

// Initial returns the initial state
func (t *Table[S, E, T]) Initial() S {
	return t.initial
}

// States returns the declared states in declaration order
func (t *Table[S, E, T]) States() []S {
	return append([]S{}, t.states...)
}

// IsValid reports whether the state is declared
func (t *Table[S, E, T]) IsValid(state S) bool {
	return t.valid[state]
}

// IsTerminal reports whether the state is declared terminal
func (t *Table[S, E, T]) IsTerminal(state S) bool {
	return t.terminal[state]
}

// Lookup returns the transition for (state, event)
func (t *Table[S, E, T]) Lookup(state S, event E) (Transition[S, E, T], bool) {
	for _, tr := range t.rows[state] {
		if tr.Event == event {
			return tr, true
		}
	}
	return Transition[S, E, T]{}, false
}

// PermittedEvents returns the events with a transition out of state, in declaration order.
// Guards are not evaluated.
func (t *Table[S, E, T]) PermittedEvents(state S) []E {
	rows := t.rows[state]
	events := make([]E, 0, len(rows))
	for _, tr := range rows {
		events = append(events, tr.Event)
	}
	return events
}

// Transitions returns every transition in declaration order
func (t *Table[S, E, T]) Transitions() []Transition[S, E, T] {
	var all []Transition[S, E, T]
	for _, s := range t.states {
		all = append(all, t.rows[s]...)
	}
	return all
}
