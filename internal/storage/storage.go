package storage

import (
	"context"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"
)

// RunHistoryStorage журнал запусков
type RunHistoryStorage interface {
	CreateRun(ctx context.Context, run models.RunHistory) error
	AppendChunk(ctx context.Context, runID string, chunk models.ChunkEvent) error
	FinishRun(ctx context.Context, result models.RunResult) error
	GetRun(ctx context.Context, runID string) (*models.RunHistory, error)
	Close(ctx context.Context) error
}

// NoOpHistoryStorage используется, когда MongoDB отключена
type NoOpHistoryStorage struct{}

func NewNoOpHistoryStorage() *NoOpHistoryStorage {
	return &NoOpHistoryStorage{}
}

func (s *NoOpHistoryStorage) CreateRun(context.Context, models.RunHistory) error { return nil }

func (s *NoOpHistoryStorage) AppendChunk(context.Context, string, models.ChunkEvent) error {
	return nil
}

func (s *NoOpHistoryStorage) FinishRun(context.Context, models.RunResult) error { return nil }

func (s *NoOpHistoryStorage) GetRun(context.Context, string) (*models.RunHistory, error) {
	return nil, custom_err.ErrNotFound
}

func (s *NoOpHistoryStorage) Close(context.Context) error { return nil }
