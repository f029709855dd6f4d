package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/application/workflow"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/domain/fsm"
	"github.com/garyjia/application-fsm/internal/infrastructure/persistence/repository"
	"github.com/garyjia/application-fsm/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/application-fsm/migrations"
	"github.com/garyjia/application-fsm/pkg/database"
)

func newSQLiteService(t *testing.T) ApplicationService {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: database.MemoryPath}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(migrations.FS))

	txManager := sqlite.NewDB(db.DB, logger)
	apps := repository.NewApplicationRepository(db.DB, logger)
	history := repository.NewHistoryRepository(db.DB, logger)

	table, err := application.NewTable(application.TableConfig{Logger: logger})
	require.NoError(t, err)
	engine := workflow.NewApplicationEngine(table, apps, history, txManager, logger)

	return NewApplicationService(apps, history, txManager, engine, &mockLogger{})
}

func TestIntegration_ApprovalLifecycle(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	app, err := svc.CreateApplication(ctx, CreateApplicationInput{
		Name:             "A",
		OrganizationUnit: "X",
		Amount:           application.AmountOf(decimal.NewFromInt(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusEntered, app.Status())

	accepted, err := svc.SendEventByID(ctx, app.ID, application.EventAccept)
	require.NoError(t, err)
	assert.Equal(t, application.StatusAccepted, accepted.Status())

	_, err = svc.SendEventByID(ctx, app.ID, application.EventAccept)
	te, ok := fsm.AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, fsm.KindNotApplicable, te.Kind)

	approved, err := svc.SendEventByID(ctx, app.ID, application.EventApprove)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, approved.Status())
	assert.Equal(t, "APPROVED: A", approved.Name)

	stored, err := svc.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, stored.Status())
	assert.Equal(t, "APPROVED: A", stored.Name)

	records, err := svc.GetHistory(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ACCEPT", records[0].Event)
	assert.Equal(t, "APPROVED", records[1].NewStatus)
}

func TestIntegration_GuardFailureLeavesStorageUntouched(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	app, err := svc.CreateApplication(ctx, CreateApplicationInput{Name: "A", Amount: application.AmountOf(decimal.Zero)})
	require.NoError(t, err)

	_, err = svc.SendEventByID(ctx, app.ID, application.EventAccept)
	require.NoError(t, err)

	_, err = svc.SendEventByID(ctx, app.ID, application.EventApprove)
	te, ok := fsm.AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, fsm.KindGuardFailed, te.Kind)
	assert.Equal(t, application.ReasonInvalidAmount, te.Error())

	stored, err := svc.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusAccepted, stored.Status())
	assert.Equal(t, "A", stored.Name)

	records, err := svc.GetHistory(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIntegration_UnsavedApplicationCannotBeAccepted(t *testing.T) {
	svc := newSQLiteService(t)

	app := application.New("A", "X", application.NoAmount())
	_, err := svc.SendEvent(context.Background(), app, application.EventAccept)

	te, ok := fsm.AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, fsm.KindGuardFailed, te.Kind)
	assert.Equal(t, application.ReasonUnsaved, te.Error())
	assert.False(t, app.IsSaved())
}
