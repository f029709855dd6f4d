package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/application/port"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/domain/entity"
)

// ApplicationMachineName labels application machines in logs and metrics
const ApplicationMachineName = "application"

// ApplicationEngine drives the application lifecycle
type ApplicationEngine = Engine[application.Status, application.Event, *application.Application]

// NewApplicationEngine wires the generic engine for applications
func NewApplicationEngine(
	table *application.Table,
	apps port.ApplicationRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) *ApplicationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	type (
		S = application.Status
		E = application.Event
		T = *application.Application
	)

	opts := []EngineOption[S, E, T]{
		WithName[S, E, T](ApplicationMachineName),
		WithLogger[S, E, T](logger),
		WithListener[S, E, T](NewLoggingListener[S, E](logger)),
		WithListener[S, E, T](NewMetricsListener[S, E](ApplicationMachineName)),
	}
	if history != nil {
		opts = append(opts, WithRecorder[S, E, T](&historyRecorder{repo: history}))
	}

	return NewEngine(
		table,
		application.NewStatusPersister(apps),
		apps,
		txManager,
		applicationState,
		opts...,
	)
}

func applicationState(app *application.Application) (application.Status, bool) {
	return app.Status(), app.HasStatus()
}

// historyRecorder stores application transitions in the status history
type historyRecorder struct {
	repo port.HistoryRepository
}

func (r *historyRecorder) Record(ctx context.Context, rec TransitionRecord[application.Status, application.Event, *application.Application]) error {
	return r.repo.Create(ctx, &entity.StatusHistory{
		ApplicationID:  rec.Entity.ID,
		CorrelationID:  rec.CorrelationID,
		PreviousStatus: rec.From.String(),
		NewStatus:      rec.To.String(),
		Event:          rec.Event.String(),
		Timestamp:      rec.Timestamp,
	})
}
