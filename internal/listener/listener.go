package listener

import (
	"context"

	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/service"
)

// Multi рассылает события слушателям по порядку
type Multi []service.RunListener

func NewMulti(listeners ...service.RunListener) Multi {
	return Multi(listeners)
}

func (m Multi) OnRunStart(ctx context.Context, event models.RunStartEvent) {
	for _, l := range m {
		l.OnRunStart(ctx, event)
	}
}

func (m Multi) OnStepStart(ctx context.Context, event models.StepEvent) {
	for _, l := range m {
		l.OnStepStart(ctx, event)
	}
}

func (m Multi) OnChunkCommitted(ctx context.Context, event models.ChunkEvent) {
	for _, l := range m {
		l.OnChunkCommitted(ctx, event)
	}
}

func (m Multi) OnStepEnd(ctx context.Context, event models.StepEvent) {
	for _, l := range m {
		l.OnStepEnd(ctx, event)
	}
}

func (m Multi) OnRunEnd(ctx context.Context, event models.RunEndEvent) {
	for _, l := range m {
		l.OnRunEnd(ctx, event)
	}
}

// base пустые реализации для слушателей, которым нужна часть событий
type base struct{}

func (base) OnRunStart(context.Context, models.RunStartEvent)    {}
func (base) OnStepStart(context.Context, models.StepEvent)       {}
func (base) OnChunkCommitted(context.Context, models.ChunkEvent) {}
func (base) OnStepEnd(context.Context, models.StepEvent)         {}
func (base) OnRunEnd(context.Context, models.RunEndEvent)        {}
