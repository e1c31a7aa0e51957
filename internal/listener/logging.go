package listener

import (
	"context"
	"log/slog"

	"gw-transaction-batch/internal/models"
)

type LoggingListener struct {
	log *slog.Logger
}

func NewLoggingListener(log *slog.Logger) *LoggingListener {
	return &LoggingListener{log: log}
}

func (l *LoggingListener) OnRunStart(_ context.Context, e models.RunStartEvent) {
	l.log.Info("job started",
		slog.String("job", e.JobName),
		slog.String("run_id", e.RunID.String()),
		slog.String("trigger", e.Trigger),
		slog.Time("started_at", e.StartedAt))
}

func (l *LoggingListener) OnStepStart(_ context.Context, e models.StepEvent) {
	l.log.Info("step started",
		slog.String("step", e.StepName),
		slog.String("run_id", e.RunID.String()))
}

func (l *LoggingListener) OnChunkCommitted(_ context.Context, e models.ChunkEvent) {
	l.log.Debug("chunk committed",
		slog.String("run_id", e.RunID.String()),
		slog.Int("chunk", e.Index),
		slog.Int("read", e.Read),
		slog.Int("written", e.Written),
		slog.Int("skipped", e.Skipped))
}

func (l *LoggingListener) OnStepEnd(_ context.Context, e models.StepEvent) {
	l.log.Info("step finished",
		slog.String("step", e.StepName),
		slog.String("run_id", e.RunID.String()),
		slog.String("status", string(e.Status)),
		slog.Int64("read", e.Summary.Read),
		slog.Int64("written", e.Summary.Written),
		slog.Int64("skipped", e.Summary.Skipped))
}

func (l *LoggingListener) OnRunEnd(_ context.Context, e models.RunEndEvent) {
	res := e.Result
	attrs := []any{
		slog.String("job", res.JobName),
		slog.String("run_id", res.RunID.String()),
		slog.String("status", string(res.Status)),
		slog.String("duration", models.FormatDuration(res.Duration())),
		slog.Any("summary", res.Summary),
	}

	if res.Status == models.RunFailed {
		l.log.Warn("job finished with failure", append(attrs, slog.String("reason", res.FailureReason))...)
		return
	}
	l.log.Info("job finished", attrs...)
}
