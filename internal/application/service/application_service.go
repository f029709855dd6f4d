package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/application-fsm/internal/application/port"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/domain/entity"
	"github.com/garyjia/application-fsm/internal/domain/fsm"
	"github.com/shopspring/decimal"
)

var (
	// ErrApplicationNotFound is returned when no application has the requested ID
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// EventSender feeds one event to an application's state machine
type EventSender interface {
	SendEvent(ctx context.Context, app *application.Application, event application.Event) (*application.Application, error)
}

// CreateApplicationInput holds the fields of a new application
type CreateApplicationInput struct {
	Name             string
	OrganizationUnit string
	Amount           decimal.NullDecimal
}

// ApplicationService manages applications and their lifecycle
type ApplicationService interface {
	CreateApplication(ctx context.Context, input CreateApplicationInput) (*application.Application, error)
	GetApplication(ctx context.Context, id int64) (*application.Application, error)
	ListApplications(ctx context.Context, limit, offset int) ([]*application.Application, error)
	SendEvent(ctx context.Context, app *application.Application, event application.Event) (*application.Application, error)
	SendEventByID(ctx context.Context, id int64, event application.Event) (*application.Application, error)
	GetHistory(ctx context.Context, id int64) ([]*entity.StatusHistory, error)
}

type applicationServiceImpl struct {
	appRepo     port.ApplicationRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	engine      EventSender
	logger      Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo port.ApplicationRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	engine EventSender,
	logger Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:     appRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		engine:      engine,
		logger:      logger,
	}
}

// CreateApplication stores a new application in the initial status
func (s *applicationServiceImpl) CreateApplication(ctx context.Context, input CreateApplicationInput) (*application.Application, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	app := application.New(name, strings.TrimSpace(input.OrganizationUnit), input.Amount)
	if err := s.appRepo.Create(ctx, app); err != nil {
		s.logger.Error("Failed to create application", "name", name, "error", err)
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info("Application created", "id", app.ID, "uuid", app.UUID.String())
	return app, nil
}

// GetApplication retrieves an application by ID
func (s *applicationServiceImpl) GetApplication(ctx context.Context, id int64) (*application.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, fmt.Errorf("%w: %d", ErrApplicationNotFound, id)
	}
	return app, nil
}

// ListApplications lists applications with pagination
func (s *applicationServiceImpl) ListApplications(ctx context.Context, limit, offset int) ([]*application.Application, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.appRepo.List(ctx, limit, offset)
}

// SendEvent feeds event to the state machine of app.
// Failures are returned as *fsm.TransitionError.
func (s *applicationServiceImpl) SendEvent(ctx context.Context, app *application.Application, event application.Event) (*application.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: application is required", ErrInvalidInput)
	}
	if !event.IsValid() {
		return nil, fmt.Errorf("%w: unknown event %q", ErrInvalidInput, string(event))
	}
	return s.engine.SendEvent(ctx, app, event)
}

// SendEventByID loads the application and sends event in one transaction
func (s *applicationServiceImpl) SendEventByID(ctx context.Context, id int64, event application.Event) (*application.Application, error) {
	if !event.IsValid() {
		return nil, fmt.Errorf("%w: unknown event %q", ErrInvalidInput, string(event))
	}

	var result *application.Application
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.GetApplication(txCtx, id)
		if err != nil {
			return err
		}

		updated, err := s.engine.SendEvent(txCtx, app, event)
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, err
		}
		if _, ok := fsm.AsTransitionError(err); ok {
			return nil, err
		}
		s.logger.Error("Failed to commit event", "id", id, "event", event.String(), "error", err)
		return nil, fsm.NewTransitionError(fsm.KindPersistence,
			fmt.Sprintf("failed to persist transition: %v", err),
			fmt.Errorf("%w: %w", fsm.ErrPersistence, err))
	}

	s.logger.Info("Event applied", "id", id, "event", event.String(), "status", result.Status().String())
	return result, nil
}

// GetHistory returns the status history of an application, oldest first
func (s *applicationServiceImpl) GetHistory(ctx context.Context, id int64) ([]*entity.StatusHistory, error) {
	if _, err := s.GetApplication(ctx, id); err != nil {
		return nil, err
	}

	records, err := s.historyRepo.GetByApplicationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if records == nil {
		records = []*entity.StatusHistory{}
	}
	return records, nil
}
