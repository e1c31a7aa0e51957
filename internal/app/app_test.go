package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gw-transaction-batch/internal/config"
	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/service"
	"gw-transaction-batch/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, runID uuid.UUID, trigger string) (models.RunResult, error) {
	return models.RunResult{RunID: runID, Trigger: trigger, Status: models.RunCompleted}, nil
}

func testApp(authEnabled bool) *App {
	cfg := &config.Config{HTTP: config.HTTPConfig{Port: "0", ShutdownTimeout: time.Second}}
	cfg.Auth = config.AuthConfig{Enabled: authEnabled, Secret: "secret"}

	log := discardLogger()
	return &App{
		log:      log,
		cfg:      cfg,
		history:  storage.NewNoOpHistoryStorage(),
		launcher: service.NewLauncher(stubRunner{}, log),
	}
}

func TestBuildAPILayer_RequiresLauncher(t *testing.T) {
	a := &App{log: discardLogger(), cfg: &config.Config{}}

	assert.Error(t, a.BuildAPILayer())
}

func TestBuildAPILayer_RunRequiresToken(t *testing.T) {
	a := testApp(true)
	require.NoError(t, a.BuildAPILayer())

	rec := httptest.NewRecorder()
	a.server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/batch/run", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuildAPILayer_RunWithToken(t *testing.T) {
	a := testApp(true)
	require.NoError(t, a.BuildAPILayer())

	token, err := service.NewAuthService("secret", time.Hour).GenerateToken("ops-user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/run", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.server.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NoError(t, a.launcher.Shutdown(context.Background()))
}

func TestBuildAPILayer_HistoryDisabled(t *testing.T) {
	a := testApp(false)
	require.NoError(t, a.BuildAPILayer())

	rec := httptest.NewRecorder()
	a.server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batch/runs/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildAPILayer_Health(t *testing.T) {
	a := testApp(false)
	require.NoError(t, a.BuildAPILayer())

	rec := httptest.NewRecorder()
	a.server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunOnce(t *testing.T) {
	a := testApp(false)

	res, err := a.RunOnce(context.Background(), models.TriggerCLI)

	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, res.Status)
	assert.Equal(t, models.TriggerCLI, res.Trigger)
}

func TestStartScheduler_Disabled(t *testing.T) {
	a := testApp(false)

	require.NoError(t, a.StartScheduler())
	assert.Nil(t, a.scheduler)
}

func TestClose_NothingInitialized(t *testing.T) {
	a := &App{log: discardLogger(), cfg: &config.Config{}}

	assert.NotPanics(t, a.Close)
}
