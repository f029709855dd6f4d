package application

import (
	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

// Guard rejection reasons
const (
	ReasonUnsaved       = "Cannot accept unsaved entity"
	ReasonMissingAmount = "Cannot approve application without amount"
	ReasonInvalidAmount = "Cannot approve with incorrect amount"
)

// DefaultApprovalPrefix is prepended to the name of an approved application
const DefaultApprovalPrefix = "APPROVED: "

// Engine types bound to applications
type (
	Table   = fsm.Table[Status, Event, *Application]
	Context = fsm.Context[*Application]
	Machine = fsm.Machine[Status, Event, *Application]
)

// TableConfig configures the application transition table
type TableConfig struct {
	ApprovalPrefix string
	Logger         *zap.Logger
}

// NewTable builds the application transition table
//
//	ENTERED  --ACCEPT [saved]-->        ACCEPTED
//	ACCEPTED --APPROVE [amount > 0]-->  APPROVED (terminal)
//	ACCEPTED --DISCARD-->               ENTERED
func NewTable(cfg TableConfig) (*Table, error) {
	if cfg.ApprovalPrefix == "" {
		cfg.ApprovalPrefix = DefaultApprovalPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	actions := transitionActions{
		logger:         cfg.Logger,
		approvalPrefix: cfg.ApprovalPrefix,
	}

	b := fsm.NewBuilder[Status, Event, *Application]().
		Initial(StatusEntered).
		States(AllStatuses()...).
		End(StatusApproved)

	b.Configure(StatusEntered).
		PermitIf(EventAccept, StatusAccepted, AcceptGuard, actions.accept)

	b.Configure(StatusAccepted).
		PermitIf(EventApprove, StatusApproved, ApproveGuard, actions.approve).
		Permit(EventDiscard, StatusEntered, actions.discard)

	return b.Build()
}

// AcceptGuard requires the application to have been saved
func AcceptGuard(c *Context) bool {
	if !c.Entity().IsSaved() {
		c.SetError(ReasonUnsaved)
		return false
	}
	return true
}

// ApproveGuard requires a present, strictly positive amount
func ApproveGuard(c *Context) bool {
	amount := c.Entity().Amount
	if !amount.Valid {
		c.SetError(ReasonMissingAmount)
		return false
	}
	if amount.Decimal.Sign() <= 0 {
		c.SetError(ReasonInvalidAmount)
		return false
	}
	return true
}

type transitionActions struct {
	logger         *zap.Logger
	approvalPrefix string
}

func (a transitionActions) accept(c *Context) error {
	a.logger.Info("Accepted application", zap.Int64("application_id", c.Entity().ID))
	return nil
}

func (a transitionActions) approve(c *Context) error {
	entity := c.Entity()
	a.logger.Info("Approved application", zap.Int64("application_id", entity.ID))
	entity.Name = a.approvalPrefix + entity.Name
	return nil
}

func (a transitionActions) discard(c *Context) error {
	a.logger.Info("Discarded application", zap.Int64("application_id", c.Entity().ID))
	return nil
}
