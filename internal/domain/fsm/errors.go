package fsm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotApplicable is returned when no transition exists for the (state, event) pair
	ErrNotApplicable = errors.New("event not applicable in current state")

	// ErrGuardFailed is returned when a guard rejects a transition
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrActionFailed is returned when an action cannot complete
	ErrActionFailed = errors.New("transition action failed")

	// ErrMachineUsed is returned when a machine is asked to dispatch a second event
	ErrMachineUsed = errors.New("machine already dispatched an event")

	// ErrInvalidState is returned when a state is not declared in the table
	ErrInvalidState = errors.New("invalid state")

	// ErrDuplicateTransition is returned when a (state, event) pair is declared twice
	ErrDuplicateTransition = errors.New("duplicate transition")

	// ErrNoInitialState is returned when a table is built without an initial state
	ErrNoInitialState = errors.New("initial state is required")

	// ErrTimerEvent is returned when a transition is declared on a timer event
	ErrTimerEvent = errors.New("timer events are not supported")

	// ErrPersistence is returned when reading or writing the machine state failed
	ErrPersistence = errors.New("state persistence failed")

	// ErrContextualPostError is returned when an accepted transition left an error on the context
	ErrContextualPostError = errors.New("transition reported an error after acceptance")
)

// ErrorKind classifies a TransitionError for diagnostics
type ErrorKind string

const (
	// KindNotApplicable means no transition exists for the event in the current state
	KindNotApplicable ErrorKind = "NOT_APPLICABLE"
	// KindGuardFailed means a guard vetoed the transition
	KindGuardFailed ErrorKind = "GUARD_FAILED"
	// KindActionFailed means a transition action returned an error
	KindActionFailed ErrorKind = "ACTION_FAILED"
	// KindPersistence means the state could not be restored or stored
	KindPersistence ErrorKind = "PERSISTENCE"
	// KindContextualPostError means the transition was accepted but left an error in the context
	KindContextualPostError ErrorKind = "CONTEXTUAL_POST_ERROR"
)

// TransitionError is the single caller visible failure of sending an event.
// Kind is only meant for logging; callers should rely on Message.
type TransitionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewTransitionError creates a transition error
func NewTransitionError(kind ErrorKind, message string, err error) *TransitionError {
	return &TransitionError{Kind: kind, Message: message, Err: err}
}

// Error returns the message
func (e *TransitionError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// AsTransitionError extracts a TransitionError from err
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func notAcceptedMessage[S State, E Event](state S, event E) string {
	return fmt.Sprintf("event %s not accepted in state %s", event, state)
}
