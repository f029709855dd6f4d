package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/application/port"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/infrastructure/persistence/sqlite"
)

const applicationColumns = `id, uuid, name, organization_unit, amount, status, created_at, updated_at`

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) *ApplicationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new application and assigns its ID
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	if app.UUID == uuid.Nil {
		app.UUID = uuid.New()
	}
	now := r.now()

	query := `
		INSERT INTO applications (
			uuid, name, organization_unit, amount, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		app.UUID,
		app.Name,
		app.OrganizationUnit,
		app.Amount,
		app.Status(),
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	app.ID = id
	app.CreatedAt = now
	app.UpdatedAt = now
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

	app, err := scanApplication(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get application by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// List retrieves applications with pagination, newest first
func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// UpdateStatus sets the status column of a stored application
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status application.Status) error {
	query := `UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, r.now(), id)
	if err != nil {
		r.logger.Error("Failed to update application status",
			zap.Int64("id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update application status: %w", err)
	}

	return requireAffected(result, id)
}

// Merge saves every mutable column except status and returns the stored row
func (r *ApplicationRepository) Merge(ctx context.Context, app *application.Application) (*application.Application, error) {
	if !app.IsSaved() {
		if err := r.Create(ctx, app); err != nil {
			return nil, err
		}
	} else {
		query := `
			UPDATE applications
			SET name = ?, organization_unit = ?, amount = ?, updated_at = ?
			WHERE id = ?
		`

		result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
			app.Name,
			app.OrganizationUnit,
			app.Amount,
			r.now(),
			app.ID,
		)
		if err != nil {
			r.logger.Error("Failed to merge application", zap.Int64("id", app.ID), zap.Error(err))
			return nil, fmt.Errorf("failed to merge application: %w", err)
		}
		if err := requireAffected(result, app.ID); err != nil {
			return nil, err
		}
	}

	stored, err := r.GetByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("application %d: %w", app.ID, port.ErrNotFound)
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var rec application.Record
	err := row.Scan(
		&rec.ID,
		&rec.UUID,
		&rec.Name,
		&rec.OrganizationUnit,
		&rec.Amount,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return application.FromRecord(rec), nil
}

func requireAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// Verify interface compliance
var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
