package container

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/application/port"
	"github.com/garyjia/application-fsm/internal/application/service"
	"github.com/garyjia/application-fsm/internal/application/workflow"
	"github.com/garyjia/application-fsm/internal/config"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/infrastructure/persistence/repository"
	"github.com/garyjia/application-fsm/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/application-fsm/migrations"
	"github.com/garyjia/application-fsm/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database is required")
	}

	return &RepositoryBundle{
		Application: repository.NewApplicationRepository(sqlDB, logger),
		History:     repository.NewHistoryRepository(sqlDB, logger),
	}, nil
}

// ProvideApplicationEngine builds the transition table and the engine that drives it.
func ProvideApplicationEngine(
	cfg *config.FSMConfig,
	repos *RepositoryBundle,
	txManager port.TransactionManager,
	logger *zap.Logger,
) (*workflow.ApplicationEngine, error) {
	table, err := application.NewTable(application.TableConfig{
		ApprovalPrefix: cfg.ApprovalPrefix,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build transition table: %w", err)
	}

	return workflow.NewApplicationEngine(table, repos.Application, repos.History, txManager, logger), nil
}

// ProvideApplicationService creates the application service.
func ProvideApplicationService(
	repos *RepositoryBundle,
	txManager port.TransactionManager,
	engine service.EventSender,
	logger *zap.Logger,
) service.ApplicationService {
	return service.NewApplicationService(
		repos.Application,
		repos.History,
		txManager,
		engine,
		&zapLoggerAdapter{logger: logger},
	)
}
