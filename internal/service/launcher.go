package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
)

type Runner interface {
	Run(ctx context.Context, runID uuid.UUID, trigger string) (models.RunResult, error)
}

// Batch управление запусками для HTTP и планировщика
type Batch interface {
	Run(ctx context.Context, trigger string) (models.RunResult, error)
	Start(trigger string) (uuid.UUID, error)
	Running() bool
	LastRun() *models.RunResult
}

// Launcher не допускает параллельных запусков и хранит итог последнего
type Launcher struct {
	runner  Runner
	log     *slog.Logger
	running atomic.Bool
	last    atomic.Pointer[models.RunResult]

	// mu связывает проверку остановки с wg.Add, Shutdown не разминется со стартом
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLauncher(runner Runner, log *slog.Logger) *Launcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Launcher{
		runner: runner,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run выполняет запуск синхронно
func (l *Launcher) Run(ctx context.Context, trigger string) (models.RunResult, error) {
	if !l.running.CompareAndSwap(false, true) {
		return models.RunResult{}, custom_err.ErrRunInProgress
	}
	defer l.running.Store(false)

	return l.execute(ctx, uuid.New(), trigger)
}

// Start запускает обработку в фоне и сразу возвращает ID запуска
func (l *Launcher) Start(trigger string) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ctx.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("launcher stopped: %w", err)
	}
	if !l.running.CompareAndSwap(false, true) {
		return uuid.Nil, custom_err.ErrRunInProgress
	}

	runID := uuid.New()
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.running.Store(false)

		_, _ = l.execute(l.ctx, runID, trigger)
	}()

	return runID, nil
}

func (l *Launcher) execute(ctx context.Context, runID uuid.UUID, trigger string) (result models.RunResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("batch run panicked: %v", p)
			result = models.RunResult{RunID: runID, JobName: models.JobName, Trigger: trigger, Status: models.RunFailed, FailureReason: err.Error(), Err: err}
			l.log.Error("batch run panicked", slog.String("run_id", runID.String()), slog.Any("panic", p))
		}
		l.last.Store(&result)
	}()

	return l.runner.Run(ctx, runID, trigger)
}

func (l *Launcher) Running() bool {
	return l.running.Load()
}

func (l *Launcher) LastRun() *models.RunResult {
	return l.last.Load()
}

// Shutdown отменяет фоновый запуск и ждет его завершения
func (l *Launcher) Shutdown(ctx context.Context) error {
	l.log.Info("shutting down batch launcher")
	l.mu.Lock()
	l.cancel()
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.log.Info("batch launcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("batch launcher shutdown: %w", ctx.Err())
	}
}
