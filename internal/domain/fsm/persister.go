package fsm

import "context"

// Seed is what a persister hands back to restore a machine
type Seed[S State, T any] struct {
	State   S
	Context *Context[T]
}

// Persister converts between an entity's stored state and a restorable machine.
//
// Read must not restore any transition history, only the current state. Write must
// record the state durably and then bring the in-memory entity in line with it; it
// is the only path allowed to change an entity's state.
type Persister[S State, T any] interface {
	Read(ctx context.Context, entity T) (Seed[S, T], error)
	Write(ctx context.Context, entity T, state S) error
}

// Snapshotter is implemented by persisters that can undo in-memory changes made to an
// entity during a send that ended in an error. The returned func puts the entity back
// exactly as it was when Snapshot was called.
type Snapshotter[T any] interface {
	Snapshot(entity T) (restore func())
}
