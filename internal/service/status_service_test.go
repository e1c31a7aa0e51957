package service

import (
	"context"
	"errors"
	"testing"

	"gw-transaction-batch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatusService_GetBatchStatus(t *testing.T) {
	repo := new(MockStatusRepository)
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, models.TriggerCLI).
		Return(models.RunResult{Status: models.RunCompleted}, nil)

	launcher := NewLauncher(runner, testLogger())
	_, err := launcher.Run(context.Background(), models.TriggerCLI)
	require.NoError(t, err)

	summary := models.StatusSummary{Valid: 7, Invalid: 2, Fraudulent: 1, TotalProcessed: 10}
	repo.On("GetStatusSummary", mock.Anything).Return(summary, nil)

	svc := NewStatusService(repo, launcher)
	status, err := svc.GetBatchStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, summary, status.StatusSummary)
	assert.False(t, status.Running)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, models.RunCompleted, status.LastRun.Status)
}

func TestStatusService_GetBatchStatus_RepoError(t *testing.T) {
	repo := new(MockStatusRepository)
	repo.On("GetStatusSummary", mock.Anything).Return(models.StatusSummary{}, errors.New("db down"))

	svc := NewStatusService(repo, NewLauncher(new(MockRunner), testLogger()))
	_, err := svc.GetBatchStatus(context.Background())

	assert.ErrorContains(t, err, "db down")
}
