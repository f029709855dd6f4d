package container

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/application-fsm/internal/application/service"
	"github.com/garyjia/application-fsm/internal/config"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/pkg/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: "test"},
		Database: config.DatabaseConfig{Path: database.MemoryPath},
		Logger:   config.LoggerConfig{Level: "debug", Format: "console"},
		FSM:      config.FSMConfig{ApprovalPrefix: "OK: "},
	}
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(), nil)
	assert.Error(t, err)

	bad := testConfig()
	bad.Database.Path = ""
	_, err = NewContainer(bad, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())
	assert.False(t, c.Health(context.Background()).Overall)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()))

	health := c.Health(context.Background())
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)

	ctx := context.Background()
	app, err := c.Service().CreateApplication(ctx, service.CreateApplicationInput{
		Name:   "A",
		Amount: application.AmountOf(decimal.NewFromInt(5)),
	})
	require.NoError(t, err)

	_, err = c.Service().SendEventByID(ctx, app.ID, application.EventAccept)
	require.NoError(t, err)
	approved, err := c.Service().SendEventByID(ctx, app.ID, application.EventApprove)
	require.NoError(t, err)
	assert.Equal(t, "OK: A", approved.Name)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_ServerConfigFallsBackToDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ShutdownTimeout = 3 * time.Second
	c := &Container{config: cfg}

	got := c.serverConfig()

	assert.Equal(t, "127.0.0.1", got.Host)
	assert.Equal(t, 8080, got.Port)
	assert.Equal(t, "test", got.Mode)
	assert.Equal(t, 30*time.Second, got.ReadTimeout)
	assert.Equal(t, 30*time.Second, got.WriteTimeout)
	assert.Equal(t, 3*time.Second, got.ShutdownTimeout)
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	adapter := &zapLoggerAdapter{logger: zap.New(core)}

	adapter.Info("Application created", "id", int64(7), 42, "ignored")
	adapter.Error("Failed", "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(7), entries[0].ContextMap()["id"])
	assert.Len(t, entries[0].Context, 1)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
