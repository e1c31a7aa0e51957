package listener

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) SendRunEvent(ctx context.Context, event models.RunEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	return m.Called().Error(0)
}

type MockHistoryStorage struct {
	mock.Mock
}

func (m *MockHistoryStorage) CreateRun(ctx context.Context, run models.RunHistory) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockHistoryStorage) AppendChunk(ctx context.Context, runID string, chunk models.ChunkEvent) error {
	return m.Called(ctx, runID, chunk).Error(0)
}

func (m *MockHistoryStorage) FinishRun(ctx context.Context, result models.RunResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *MockHistoryStorage) GetRun(ctx context.Context, runID string) (*models.RunHistory, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunHistory), args.Error(1)
}

func (m *MockHistoryStorage) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) GenerateSummaryReport(ctx context.Context, event models.RunEndEvent) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendCompletionNotification(ctx context.Context, event models.RunEndEvent, reportPath string) error {
	return m.Called(ctx, event, reportPath).Error(0)
}

func (m *MockNotifier) SendErrorNotification(ctx context.Context, event models.RunEndEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockNotifier) SendFraudAlert(ctx context.Context, runID string, fraudulentCount int64, details string) error {
	return m.Called(ctx, runID, fraudulentCount, details).Error(0)
}

func runEnd(status models.RunStatus, fraudulent int64) models.RunEndEvent {
	start := time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC)
	res := models.RunResult{
		RunID:     uuid.New(),
		JobName:   models.JobName,
		Trigger:   models.TriggerDaily,
		Status:    status,
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Summary:   models.RunSummary{Read: 10, Written: 10, Valid: 10 - fraudulent, Fraudulent: fraudulent},
	}
	if status == models.RunFailed {
		res.FailureReason = "commit failed"
	}
	return models.RunEndEvent{Result: res, Step: models.StepEvent{RunID: res.RunID, StepName: models.StepName, Status: status}}
}
