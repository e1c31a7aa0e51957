package listener

import (
	"context"
	"log/slog"
	"time"

	"gw-transaction-batch/internal/kafka"
	"gw-transaction-batch/internal/models"
)

const sendTimeout = 5 * time.Second

// EventListener публикует события запуска в kafka
type EventListener struct {
	base
	producer kafka.Producer
	log      *slog.Logger
	now      func() time.Time
}

func NewEventListener(producer kafka.Producer, log *slog.Logger) *EventListener {
	return &EventListener{producer: producer, log: log, now: time.Now}
}

func (l *EventListener) OnRunStart(ctx context.Context, e models.RunStartEvent) {
	l.send(ctx, models.RunEvent{
		EventType:  models.EventRunStarted,
		RunID:      e.RunID.String(),
		JobName:    e.JobName,
		Trigger:    e.Trigger,
		Status:     models.RunStarted,
		OccurredAt: e.StartedAt,
	})
}

func (l *EventListener) OnChunkCommitted(ctx context.Context, e models.ChunkEvent) {
	index := e.Index
	l.send(ctx, models.RunEvent{
		EventType:  models.EventChunkCommitted,
		RunID:      e.RunID.String(),
		JobName:    models.JobName,
		Status:     models.RunStarted,
		ChunkIndex: &index,
		Summary: models.RunSummary{
			Read:       int64(e.Read),
			Written:    int64(e.Written),
			Skipped:    int64(e.Skipped),
			Valid:      int64(e.Valid),
			Invalid:    int64(e.Invalid),
			Fraudulent: int64(e.Fraudulent),
		},
		OccurredAt: e.CommittedAt,
	})
}

func (l *EventListener) OnRunEnd(ctx context.Context, e models.RunEndEvent) {
	res := e.Result
	eventType := models.EventRunCompleted
	if res.Status == models.RunFailed {
		eventType = models.EventRunFailed
	}

	l.send(ctx, models.RunEvent{
		EventType:     eventType,
		RunID:         res.RunID.String(),
		JobName:       res.JobName,
		Trigger:       res.Trigger,
		Status:        res.Status,
		Summary:       res.Summary,
		FailureReason: res.FailureReason,
		OccurredAt:    res.EndedAt,
	})
}

func (l *EventListener) send(ctx context.Context, event models.RunEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = l.now()
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := l.producer.SendRunEvent(ctx, event); err != nil {
		l.log.Warn("failed to publish run event",
			slog.String("event_type", event.EventType),
			slog.String("run_id", event.RunID),
			slog.String("error", err.Error()))
	}
}
