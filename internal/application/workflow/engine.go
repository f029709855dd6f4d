package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/application/port"
	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

// EntityStore re-synchronizes an entity with storage after a persisted transition
type EntityStore[T any] interface {
	Merge(ctx context.Context, entity T) (T, error)
}

// TransitionRecord describes one persisted transition
type TransitionRecord[S fsm.State, E fsm.Event, T any] struct {
	Entity        T
	From          S
	To            S
	Event         E
	CorrelationID string
	Timestamp     time.Time
}

// Recorder appends persisted transitions to an audit trail
type Recorder[S fsm.State, E fsm.Event, T any] interface {
	Record(ctx context.Context, rec TransitionRecord[S, E, T]) error
}

// StateFunc returns the stored state of an entity and whether it has one
type StateFunc[S fsm.State, T any] func(entity T) (S, bool)

// Engine restores a machine for an entity, dispatches one event and commits the
// outcome. It holds no per-entity state: every call builds and discards its own machine.
//
// Two concurrent calls for the same entity are not serialized. Both may read the
// same stored state and the last write wins unless storage adds its own locking.
type Engine[S fsm.State, E fsm.Event, T any] struct {
	name      string
	table     *fsm.Table[S, E, T]
	persister fsm.Persister[S, T]
	store     EntityStore[T]
	txManager port.TransactionManager
	stateOf   StateFunc[S, T]
	recorder  Recorder[S, E, T]
	listeners []fsm.Listener[S, E]
	logger    *zap.Logger
	now       func() time.Time
}

// EngineOption configures the engine
type EngineOption[S fsm.State, E fsm.Event, T any] func(*Engine[S, E, T])

// WithName sets the machine name used in logs and metrics
func WithName[S fsm.State, E fsm.Event, T any](name string) EngineOption[S, E, T] {
	return func(e *Engine[S, E, T]) {
		e.name = name
	}
}

// WithRecorder sets the transition audit recorder
func WithRecorder[S fsm.State, E fsm.Event, T any](r Recorder[S, E, T]) EngineOption[S, E, T] {
	return func(e *Engine[S, E, T]) {
		e.recorder = r
	}
}

// WithListener attaches a listener to every machine the engine builds
func WithListener[S fsm.State, E fsm.Event, T any](l fsm.Listener[S, E]) EngineOption[S, E, T] {
	return func(e *Engine[S, E, T]) {
		e.listeners = append(e.listeners, l)
	}
}

// WithLogger sets the logger
func WithLogger[S fsm.State, E fsm.Event, T any](logger *zap.Logger) EngineOption[S, E, T] {
	return func(e *Engine[S, E, T]) {
		e.logger = logger
	}
}

// WithClock overrides the clock used for transition timestamps
func WithClock[S fsm.State, E fsm.Event, T any](now func() time.Time) EngineOption[S, E, T] {
	return func(e *Engine[S, E, T]) {
		e.now = now
	}
}

// NewEngine creates a new workflow engine
func NewEngine[S fsm.State, E fsm.Event, T any](
	table *fsm.Table[S, E, T],
	persister fsm.Persister[S, T],
	store EntityStore[T],
	txManager port.TransactionManager,
	stateOf StateFunc[S, T],
	opts ...EngineOption[S, E, T],
) *Engine[S, E, T] {
	e := &Engine[S, E, T]{
		name:      "fsm",
		table:     table,
		persister: persister,
		store:     store,
		txManager: txManager,
		stateOf:   stateOf,
		logger:    zap.NewNop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the machine name
func (e *Engine[S, E, T]) Name() string {
	return e.name
}

// Table returns the transition table
func (e *Engine[S, E, T]) Table() *fsm.Table[S, E, T] {
	return e.table
}

// SendEvent feeds one event to a machine built for entity.
//
// On success the new state is persisted and the re-synchronized entity is
// returned. Every failure is a *fsm.TransitionError and leaves the stored state
// untouched. When the persister is also a fsm.Snapshotter the in-memory entity is
// put back as well, so the same entity can be sent the event again.
func (e *Engine[S, E, T]) SendEvent(ctx context.Context, entity T, event E) (T, error) {
	var result T
	start := e.now()
	correlationID := uuid.NewString()
	logger := e.logger.With(
		zap.String("machine", e.name),
		zap.String("event", event.String()),
		zap.String("correlation_id", correlationID),
	)

	restore := func() {}
	if snap, ok := e.persister.(fsm.Snapshotter[T]); ok {
		restore = snap.Snapshot(entity)
	}

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		machine, err := e.machineFor(txCtx, entity)
		if err != nil {
			return fsm.NewTransitionError(fsm.KindPersistence,
				fmt.Sprintf("failed to restore state machine: %v", err),
				fmt.Errorf("%w: %w", fsm.ErrPersistence, err))
		}

		outcome, err := machine.Dispatch(event)
		if err != nil {
			return fsm.NewTransitionError(fsm.KindActionFailed, err.Error(), err)
		}

		if !outcome.Accepted {
			kind := fsm.KindNotApplicable
			if outcome.Rejection == fsm.RejectionGuardFailed {
				kind = fsm.KindGuardFailed
			}
			return fsm.NewTransitionError(kind, outcome.Reason, outcome.Err())
		}

		if reason, ok := machine.Context().Error(); ok {
			return fsm.NewTransitionError(fsm.KindContextualPostError, reason,
				fmt.Errorf("%w: %s", fsm.ErrContextualPostError, reason))
		}

		if err := e.persister.Write(txCtx, entity, outcome.State); err != nil {
			return persistenceError(err)
		}

		if e.recorder != nil {
			rec := TransitionRecord[S, E, T]{
				Entity:        entity,
				From:          outcome.From,
				To:            outcome.State,
				Event:         event,
				CorrelationID: correlationID,
				Timestamp:     e.now(),
			}
			if err := e.recorder.Record(txCtx, rec); err != nil {
				return persistenceError(err)
			}
		}

		merged, err := e.store.Merge(txCtx, entity)
		if err != nil {
			return persistenceError(err)
		}
		result = merged

		logger.Info("Transition persisted",
			zap.String("from", outcome.From.String()),
			zap.String("to", outcome.State.String()))
		return nil
	})

	elapsed := e.now().Sub(start)
	if err != nil {
		restore()
		te, ok := fsm.AsTransitionError(err)
		if !ok {
			// commit failed after the callback succeeded
			te = persistenceError(err)
		}
		observeSendEvent(e.name, event.String(), string(te.Kind), elapsed)

		if te.Kind == fsm.KindPersistence || te.Kind == fsm.KindActionFailed {
			logger.Error("Failed to send event", zap.String("kind", string(te.Kind)), zap.Error(te.Err))
		} else {
			logger.Warn("Event rejected", zap.String("kind", string(te.Kind)), zap.String("reason", te.Message))
		}

		var zero T
		return zero, te
	}

	observeSendEvent(e.name, event.String(), outcomePersisted, elapsed)
	return result, nil
}

// machineFor creates a fresh machine for an entity without state, or restores one
func (e *Engine[S, E, T]) machineFor(ctx context.Context, entity T) (*fsm.Machine[S, E, T], error) {
	opts := make([]fsm.MachineOption[S, E, T], 0, len(e.listeners))
	for _, l := range e.listeners {
		opts = append(opts, fsm.WithListener[S, E, T](l))
	}

	if _, ok := e.stateOf(entity); !ok {
		return fsm.NewMachine(e.table, entity, opts...), nil
	}

	seed, err := e.persister.Read(ctx, entity)
	if err != nil {
		return nil, err
	}
	return fsm.RestoreMachine(e.table, seed.State, seed.Context, opts...)
}

func persistenceError(err error) *fsm.TransitionError {
	var te *fsm.TransitionError
	if errors.As(err, &te) {
		return te
	}
	return fsm.NewTransitionError(fsm.KindPersistence,
		fmt.Sprintf("failed to persist transition: %v", err),
		fmt.Errorf("%w: %w", fsm.ErrPersistence, err))
}
