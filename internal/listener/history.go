package listener

import (
	"context"
	"log/slog"

	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/storage"
)

// HistoryListener ведет журнал запусков в storage.RunHistoryStorage
type HistoryListener struct {
	base
	storage storage.RunHistoryStorage
	log     *slog.Logger
}

func NewHistoryListener(s storage.RunHistoryStorage, log *slog.Logger) *HistoryListener {
	return &HistoryListener{storage: s, log: log}
}

func (l *HistoryListener) OnRunStart(ctx context.Context, e models.RunStartEvent) {
	err := l.storage.CreateRun(ctx, models.RunHistory{
		RunID:     e.RunID.String(),
		JobName:   e.JobName,
		StepName:  models.StepName,
		Trigger:   e.Trigger,
		Status:    models.RunStarted,
		StartedAt: e.StartedAt,
	})
	if err != nil {
		l.log.Warn("failed to record run start",
			slog.String("run_id", e.RunID.String()),
			slog.String("error", err.Error()))
	}
}

func (l *HistoryListener) OnChunkCommitted(ctx context.Context, e models.ChunkEvent) {
	if err := l.storage.AppendChunk(ctx, e.RunID.String(), e); err != nil {
		l.log.Warn("failed to record chunk",
			slog.String("run_id", e.RunID.String()),
			slog.Int("chunk", e.Index),
			slog.String("error", err.Error()))
	}
}

func (l *HistoryListener) OnRunEnd(ctx context.Context, e models.RunEndEvent) {
	if err := l.storage.FinishRun(ctx, e.Result); err != nil {
		l.log.Warn("failed to record run end",
			slog.String("run_id", e.Result.RunID.String()),
			slog.String("error", err.Error()))
	}
}
