package fsm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_BuildsTable(t *testing.T) {
	table := testTable()

	assert.Equal(t, stateDraft, table.Initial())
	assert.Equal(t, []testState{stateDraft, stateReady, stateDone}, table.States())
	assert.True(t, table.IsValid(stateReady))
	assert.False(t, table.IsValid(stateOrphaned))
	assert.True(t, table.IsTerminal(stateDone))
	assert.False(t, table.IsTerminal(stateDraft))

	tr, ok := table.Lookup(stateDraft, eventPrepare)
	require.True(t, ok)
	assert.Equal(t, stateReady, tr.Target)
	assert.NotNil(t, tr.Guard)

	_, ok = table.Lookup(stateDone, eventReset)
	assert.False(t, ok)

	assert.Equal(t, []testEvent{eventFinish, eventReset}, table.PermittedEvents(stateReady))
	assert.Empty(t, table.PermittedEvents(stateDone))
	assert.Len(t, table.Transitions(), 3)
}

func TestBuilder_RequiresInitialState(t *testing.T) {
	_, err := NewBuilder[testState, testEvent, *subject]().
		States(stateDraft).
		Build()

	assert.True(t, errors.Is(err, ErrNoInitialState))
}

func TestBuilder_RejectsDuplicateTransition(t *testing.T) {
	b := NewBuilder[testState, testEvent, *subject]().
		Initial(stateDraft).
		States(stateReady, stateDone)
	b.Configure(stateDraft).
		Permit(eventPrepare, stateReady, nil).
		Permit(eventPrepare, stateDone, nil)

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTransition)
}

func TestBuilder_RejectsUndeclaredStates(t *testing.T) {
	b := NewBuilder[testState, testEvent, *subject]().
		Initial(stateDraft)
	b.Configure(stateDraft).Permit(eventPrepare, stateOrphaned, nil)
	b.Configure(stateReady).Permit(eventReset, stateDraft, nil)

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "target ORPHANED")
	assert.Contains(t, err.Error(), "source READY")
}

func TestBuilder_RejectsTimerEvents(t *testing.T) {
	b := NewBuilder[testState, testEvent, *subject]().
		Initial(stateDraft).
		States(stateReady)
	b.Configure(stateDraft).Permit(eventTick, stateReady, nil)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrTimerEvent)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder[testState, testEvent, *subject]().MustBuild()
	})
}

func TestBuilder_ConfigureReturnsSameConfiguration(t *testing.T) {
	b := NewBuilder[testState, testEvent, *subject]()
	assert.Same(t, b.Configure(stateDraft), b.Configure(stateDraft))
}

func TestTable_IndependentMachines(t *testing.T) {
	table := testTable()

	first := NewMachine(table, &subject{ready: true})
	second := NewMachine(table, &subject{ready: true})

	_, err := first.Dispatch(eventPrepare)
	require.NoError(t, err)

	assert.Equal(t, stateReady, first.State())
	assert.Equal(t, stateDraft, second.State())
}

func TestContext_SetError(t *testing.T) {
	c := NewContext("entity")

	_, ok := c.Error()
	assert.False(t, ok)

	c.SetError("first")
	c.SetError("second")

	reason, ok := c.Error()
	assert.True(t, ok)
	assert.Equal(t, "second", reason)
	assert.Equal(t, "entity", c.Entity())
}

func TestTransitionError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(NewTransitionError(KindPersistence, "could not save", cause))

	assert.Equal(t, "could not save", err.Error())
	assert.ErrorIs(t, err, cause)

	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, KindPersistence, te.Kind)

	_, ok = AsTransitionError(cause)
	assert.False(t, ok)
}
