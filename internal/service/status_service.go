package service

import (
	"context"
	"fmt"

	"gw-transaction-batch/internal/models"
)

type StatusRepository interface {
	GetStatusSummary(ctx context.Context) (models.StatusSummary, error)
}

type Status interface {
	GetBatchStatus(ctx context.Context) (*models.BatchStatusResponse, error)
}

// StatusService собирает состояние хранилища и запусков для API
type StatusService struct {
	repo  StatusRepository
	batch Batch
}

func NewStatusService(repo StatusRepository, batch Batch) *StatusService {
	return &StatusService{repo: repo, batch: batch}
}

func (s *StatusService) GetBatchStatus(ctx context.Context) (*models.BatchStatusResponse, error) {
	const op = "service.GetBatchStatus"

	summary, err := s.repo.GetStatusSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.BatchStatusResponse{
		StatusSummary: summary,
		Running:       s.batch.Running(),
		LastRun:       s.batch.LastRun(),
	}, nil
}
