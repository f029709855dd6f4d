package application

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(TableConfig{})
	require.NoError(t, err)
	return table
}

func stored(id int64, status Status, amount decimal.NullDecimal) *Application {
	return FromRecord(Record{ID: id, Name: "A", OrganizationUnit: "X", Amount: amount, Status: status})
}

func TestNewTable_Shape(t *testing.T) {
	table := newTestTable(t)

	assert.Equal(t, StatusEntered, table.Initial())
	assert.True(t, table.IsTerminal(StatusApproved))
	assert.False(t, table.IsTerminal(StatusAccepted))
	assert.Equal(t, []Event{EventAccept}, table.PermittedEvents(StatusEntered))
	assert.Equal(t, []Event{EventApprove, EventDiscard}, table.PermittedEvents(StatusAccepted))
	assert.Empty(t, table.PermittedEvents(StatusApproved))
}

func TestApplicationTable_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		app        *Application
		event      Event
		wantState  Status
		rejection  fsm.Rejection
		wantReason string
	}{
		{
			name:      "ENTERED -> ACCEPTED on ACCEPT",
			app:       stored(1, StatusEntered, AmountOf(decimal.Zero)),
			event:     EventAccept,
			wantState: StatusAccepted,
		},
		{
			name:       "unsaved application cannot be accepted",
			app:        New("A", "X", AmountOf(decimal.Zero)),
			event:      EventAccept,
			wantState:  StatusEntered,
			rejection:  fsm.RejectionGuardFailed,
			wantReason: ReasonUnsaved,
		},
		{
			name:       "ACCEPTED does not accept ACCEPT",
			app:        stored(1, StatusAccepted, AmountOf(decimal.Zero)),
			event:      EventAccept,
			wantState:  StatusAccepted,
			rejection:  fsm.RejectionNotApplicable,
			wantReason: "event ACCEPT not accepted in state ACCEPTED",
		},
		{
			name:       "approve without amount",
			app:        stored(1, StatusAccepted, NoAmount()),
			event:      EventApprove,
			wantState:  StatusAccepted,
			rejection:  fsm.RejectionGuardFailed,
			wantReason: ReasonMissingAmount,
		},
		{
			name:       "approve with zero amount",
			app:        stored(1, StatusAccepted, AmountOf(decimal.Zero)),
			event:      EventApprove,
			wantState:  StatusAccepted,
			rejection:  fsm.RejectionGuardFailed,
			wantReason: ReasonInvalidAmount,
		},
		{
			name:       "approve with negative amount",
			app:        stored(1, StatusAccepted, AmountOf(decimal.NewFromInt(-42))),
			event:      EventApprove,
			wantState:  StatusAccepted,
			rejection:  fsm.RejectionGuardFailed,
			wantReason: ReasonInvalidAmount,
		},
		{
			name:      "ACCEPTED -> APPROVED on APPROVE",
			app:       stored(1, StatusAccepted, AmountOf(decimal.NewFromInt(10))),
			event:     EventApprove,
			wantState: StatusApproved,
		},
		{
			name:      "ACCEPTED -> ENTERED on DISCARD",
			app:       stored(1, StatusAccepted, NoAmount()),
			event:     EventDiscard,
			wantState: StatusEntered,
		},
		{
			name:       "ENTERED does not accept DISCARD",
			app:        stored(1, StatusEntered, NoAmount()),
			event:      EventDiscard,
			wantState:  StatusEntered,
			rejection:  fsm.RejectionNotApplicable,
			wantReason: "event DISCARD not accepted in state ENTERED",
		},
		{
			name:       "APPROVED is terminal",
			app:        stored(1, StatusApproved, AmountOf(decimal.NewFromInt(10))),
			event:      EventDiscard,
			wantState:  StatusApproved,
			rejection:  fsm.RejectionNotApplicable,
			wantReason: "event DISCARD not accepted in state APPROVED",
		},
	}

	table := newTestTable(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine, err := fsm.RestoreMachine(table, tt.app.Status(), fsm.NewContext(tt.app))
			require.NoError(t, err)

			outcome, err := machine.Dispatch(tt.event)
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, machine.State())
			assert.Equal(t, tt.rejection, outcome.Rejection)
			assert.Equal(t, tt.rejection == fsm.RejectionNone, outcome.Accepted)
			assert.Equal(t, tt.wantReason, outcome.Reason)
		})
	}
}

func TestApproveAction_PrefixesName(t *testing.T) {
	table := newTestTable(t)
	app := stored(3, StatusAccepted, AmountOf(decimal.NewFromInt(10)))

	machine, err := fsm.RestoreMachine(table, app.Status(), fsm.NewContext(app))
	require.NoError(t, err)

	_, err = machine.Dispatch(EventApprove)
	require.NoError(t, err)

	assert.Equal(t, "APPROVED: A", app.Name)
}

func TestApproveAction_CustomPrefix(t *testing.T) {
	table, err := NewTable(TableConfig{ApprovalPrefix: "OK/"})
	require.NoError(t, err)
	app := stored(3, StatusAccepted, AmountOf(decimal.NewFromInt(10)))

	machine, err := fsm.RestoreMachine(table, app.Status(), fsm.NewContext(app))
	require.NoError(t, err)

	_, err = machine.Dispatch(EventApprove)
	require.NoError(t, err)

	assert.Equal(t, "OK/A", app.Name)
}

func TestGuardRejection_LeavesApplicationUntouched(t *testing.T) {
	table := newTestTable(t)
	app := stored(4, StatusAccepted, AmountOf(decimal.Zero))
	before := app.Record()

	machine, err := fsm.RestoreMachine(table, app.Status(), fsm.NewContext(app))
	require.NoError(t, err)

	_, err = machine.Dispatch(EventApprove)
	require.NoError(t, err)

	assert.Equal(t, before, app.Record())
}
