package port

import (
	"context"
	"errors"

	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/domain/entity"
)

// ErrNotFound is returned when a write targets a row that does not exist
var ErrNotFound = errors.New("record not found")

// ApplicationRepository defines persistence operations for Application
type ApplicationRepository interface {
	// Create inserts a new application and assigns its ID
	Create(ctx context.Context, app *application.Application) error

	// GetByID retrieves an application, returning nil when it does not exist
	GetByID(ctx context.Context, id int64) (*application.Application, error)

	// List retrieves applications with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*application.Application, error)

	// UpdateStatus sets the status column of a stored application
	UpdateStatus(ctx context.Context, id int64, status application.Status) error

	// Merge saves every mutable column except status and returns the stored row.
	// Unsaved applications are inserted.
	Merge(ctx context.Context, app *application.Application) (*application.Application, error)
}

// HistoryRepository defines persistence operations for StatusHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.StatusHistory) error
	GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.StatusHistory, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
