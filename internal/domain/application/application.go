// Package application holds the application entity and the state machine that drives
// its ENTERED -> ACCEPTED -> APPROVED lifecycle.
package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application is a request for an amount submitted by an organization unit.
// Its status can only be changed by StatusPersister.
type Application struct {
	ID               int64
	UUID             uuid.UUID
	Name             string
	OrganizationUnit string
	Amount           decimal.NullDecimal
	CreatedAt        time.Time
	UpdatedAt        time.Time

	status Status
}

// Record is the stored form of an application, used to rehydrate it from storage
type Record struct {
	ID               int64
	UUID             uuid.UUID
	Name             string
	OrganizationUnit string
	Amount           decimal.NullDecimal
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New creates an unsaved application in the initial status
func New(name, organizationUnit string, amount decimal.NullDecimal) *Application {
	return &Application{
		UUID:             uuid.New(),
		Name:             name,
		OrganizationUnit: organizationUnit,
		Amount:           amount,
		status:           StatusEntered,
	}
}

// FromRecord rehydrates an application loaded from storage. It is meant for
// repositories only; status changes go through StatusPersister.
func FromRecord(r Record) *Application {
	return &Application{
		ID:               r.ID,
		UUID:             r.UUID,
		Name:             r.Name,
		OrganizationUnit: r.OrganizationUnit,
		Amount:           r.Amount,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		status:           r.Status,
	}
}

// AmountOf wraps a decimal into a present amount
func AmountOf(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NoAmount is an absent amount
func NoAmount() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// Status returns the current status
func (a *Application) Status() Status {
	return a.status
}

// HasStatus reports whether a status has been assigned
func (a *Application) HasStatus() bool {
	return a.status != ""
}

// IsSaved reports whether the application has a storage identity
func (a *Application) IsSaved() bool {
	return a.ID != 0
}

// Record returns the stored form of the application
func (a *Application) Record() Record {
	return Record{
		ID:               a.ID,
		UUID:             a.UUID,
		Name:             a.Name,
		OrganizationUnit: a.OrganizationUnit,
		Amount:           a.Amount,
		Status:           a.status,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// Equal compares applications by business identity
func (a *Application) Equal(other *Application) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.UUID == other.UUID
}
