package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gw-transaction-batch/internal/config"
	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler запускает обработку по расписанию: ежедневно и инкрементально
type Scheduler struct {
	cron   *cron.Cron
	batch  service.Batch
	cfg    config.ScheduleConfig
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(batch service.Batch, cfg config.ScheduleConfig, log *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   c,
		batch:  batch,
		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) Start() error {
	jobs := []struct {
		spec    string
		trigger string
	}{
		{spec: s.cfg.Daily, trigger: models.TriggerDaily},
		{spec: s.cfg.Incremental, trigger: models.TriggerIncremental},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		trigger := job.trigger
		if _, err := s.cron.AddFunc(job.spec, func() { s.trigger(trigger) }); err != nil {
			return fmt.Errorf("ошибка расписания %q (%s): %w", job.spec, trigger, err)
		}
		s.log.Info("задание запланировано", slog.String("trigger", trigger), slog.String("schedule", job.spec))
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) trigger(trigger string) {
	res, err := s.batch.Run(s.ctx, trigger)
	if err != nil {
		if errors.Is(err, custom_err.ErrRunInProgress) {
			s.log.Warn("scheduled run skipped, another run in progress", slog.String("trigger", trigger))
			return
		}
		s.log.Error("scheduled run failed",
			slog.String("trigger", trigger),
			slog.String("run_id", res.RunID.String()),
			slog.String("error", err.Error()))
		return
	}

	s.log.Info("scheduled run finished",
		slog.String("trigger", trigger),
		slog.String("run_id", res.RunID.String()),
		slog.String("status", string(res.Status)))
}

// Stop прекращает планирование, отменяет текущий запуск и ждет его завершения
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	s.cancel()

	select {
	case <-stopped.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
