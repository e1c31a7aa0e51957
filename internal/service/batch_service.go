package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"gw-transaction-batch/internal/csvreader"
	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RecordSource interface {
	Rows() iter.Seq2[csvreader.Row, error]
	Close() error
}

type SourceOpener func(location string) (RecordSource, error)

// OpenCSV открывает CSV-файл как источник записей
func OpenCSV(location string) (RecordSource, error) {
	src, err := csvreader.Open(location)
	if err != nil {
		return nil, err
	}
	return src, nil
}

type RecordMapper interface {
	Map(row csvreader.Row) (models.TransactionRecord, error)
}

// Sink атомарно сохраняет чанк: либо все записи, либо ни одной
type Sink interface {
	Commit(ctx context.Context, runID uuid.UUID, records []models.TransactionRecord) error
}

// RunListener получает события запуска. Ошибки слушатели обрабатывают сами.
type RunListener interface {
	OnRunStart(ctx context.Context, event models.RunStartEvent)
	OnStepStart(ctx context.Context, event models.StepEvent)
	OnChunkCommitted(ctx context.Context, event models.ChunkEvent)
	OnStepEnd(ctx context.Context, event models.StepEvent)
	OnRunEnd(ctx context.Context, event models.RunEndEvent)
}

type BatchOptions struct {
	InputFile string
	ChunkSize int
	SkipLimit int
	Workers   int
}

type BatchService struct {
	opts       BatchOptions
	open       SourceOpener
	mapper     RecordMapper
	classifier *Classifier
	sink       Sink
	listener   RunListener
	log        *slog.Logger
	now        func() time.Time
}

func NewBatchService(
	opts BatchOptions,
	open SourceOpener,
	mapper RecordMapper,
	classifier *Classifier,
	sink Sink,
	listener RunListener,
	log *slog.Logger,
) *BatchService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1
	}
	return &BatchService{
		opts:       opts,
		open:       open,
		mapper:     mapper,
		classifier: classifier,
		sink:       sink,
		listener:   listener,
		log:        log,
		now:        time.Now,
	}
}

// run состояние одного запуска
type run struct {
	id       uuid.UUID
	counters *models.RunCounters
	log      *slog.Logger
	step     models.StepEvent
}

// Run выполняет запуск целиком: чтение, классификацию и коммит чанков.
// Ошибка возвращается только для FAILED запуска и оборачивает одну из фатальных причин.
func (s *BatchService) Run(ctx context.Context, runID uuid.UUID, trigger string) (models.RunResult, error) {
	const op = "service.BatchService.Run"

	r := &run{
		id:       runID,
		counters: &models.RunCounters{},
		log:      s.log.With(slog.String("run_id", runID.String())),
	}

	result := models.RunResult{
		RunID:     runID,
		JobName:   models.JobName,
		Trigger:   trigger,
		Status:    models.RunStarted,
		StartedAt: s.now(),
	}

	r.log.Info("batch run started",
		slog.String("trigger", trigger),
		slog.String("input", s.opts.InputFile),
		slog.Int("chunk_size", s.opts.ChunkSize),
		slog.Int("skip_limit", s.opts.SkipLimit))

	s.listener.OnRunStart(ctx, models.RunStartEvent{
		RunID:     runID,
		JobName:   models.JobName,
		Trigger:   trigger,
		StartedAt: result.StartedAt,
	})

	r.step = models.StepEvent{
		RunID:     runID,
		StepName:  models.StepName,
		Status:    models.RunStarted,
		StartedAt: s.now(),
	}
	s.listener.OnStepStart(ctx, r.step)

	err := s.process(ctx, r)

	result.EndedAt = s.now()
	result.Summary = r.counters.Snapshot()
	r.step.EndedAt = result.EndedAt
	r.step.Summary = result.Summary

	if err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		result.Status = models.RunFailed
		result.FailureReason = err.Error()
		result.Err = err
		r.log.Error("batch run failed",
			slog.String("error", err.Error()),
			slog.Any("counters", result.Summary))
	} else {
		result.Status = models.RunCompleted
		r.log.Info("batch run completed",
			slog.Duration("duration", result.Duration()),
			slog.Any("counters", result.Summary))
	}

	// итоговые события доставляются и после отмены запуска
	endCtx := context.WithoutCancel(ctx)
	r.step.Status = result.Status
	s.listener.OnStepEnd(endCtx, r.step)
	s.listener.OnRunEnd(endCtx, models.RunEndEvent{Result: result, Step: r.step})

	return result, err
}

func (s *BatchService) process(ctx context.Context, r *run) error {
	src, err := s.open(s.opts.InputFile)
	if err != nil {
		if !errors.Is(err, custom_err.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", custom_err.ErrSourceUnavailable, err)
		}
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			r.log.Warn("failed to close source", slog.String("error", err.Error()))
		}
	}()

	next, stop := iter.Pull2(src.Rows())
	defer stop()

	for index := 1; ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, exhausted, err := s.readChunk(ctx, r, next, index)
		if err != nil {
			return err
		}

		if len(chunk.Records) > 0 {
			if err := s.classifyChunk(ctx, r, chunk); err != nil {
				return err
			}
			if err := s.commitChunk(ctx, r, chunk); err != nil {
				return err
			}
		}

		if exhausted {
			return nil
		}
	}
}

// readChunk набирает до ChunkSize записей. Строки, которые не удалось токенизировать,
// отбрасываются и расходуют бюджет пропусков.
func (s *BatchService) readChunk(ctx context.Context, r *run, next func() (csvreader.Row, error, bool), index int) (*models.ChunkResult, bool, error) {
	chunk := &models.ChunkResult{
		Index:   index,
		Records: make([]models.TransactionRecord, 0, s.opts.ChunkSize),
	}

	for len(chunk.Records) < s.opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		row, err, ok := next()
		if !ok {
			return chunk, true, nil
		}

		if err != nil {
			if !errors.Is(err, custom_err.ErrParseFault) {
				return nil, false, fmt.Errorf("%w: %v", custom_err.ErrSourceUnavailable, err)
			}
			r.log.Warn("unreadable line skipped", slog.Int("line", row.Line), slog.String("error", err.Error()))
			chunk.Skipped++
			if err := s.recordFault(r); err != nil {
				return nil, false, err
			}
			continue
		}

		rec, mapErr := s.mapper.Map(row)
		if mapErr != nil {
			r.log.Warn("error parsing transaction",
				slog.Int("line", row.Line),
				slog.String("error", mapErr.Error()))
		}

		r.counters.AddRead(1)
		chunk.Read++
		chunk.Records = append(chunk.Records, rec)
	}

	return chunk, false, nil
}

// classifyChunk классифицирует записи чанка параллельно, сохраняя исходный порядок
func (s *BatchService) classifyChunk(ctx context.Context, r *run, chunk *models.ChunkResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	classified := make([]models.TransactionRecord, len(chunk.Records))
	faults := make([]bool, len(chunk.Records))

	for i := range chunk.Records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, err := s.classifier.Classify(gctx, chunk.Records[i])
			classified[i] = out
			if err != nil {
				// результаты после прерывания отбрасываются
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				faults[i] = true
				return s.recordFault(r)
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return err
	}

	for _, f := range faults {
		if f {
			chunk.Skipped++
		}
	}
	chunk.Processed = len(classified)
	chunk.Records = classified
	r.counters.AddProcessed(int64(len(classified)))
	return nil
}

// recordFault увеличивает счетчик сбоев и прерывает запуск при превышении лимита
func (s *BatchService) recordFault(r *run) error {
	n := r.counters.AddSkipped(1)
	if n > int64(s.opts.SkipLimit) {
		return fmt.Errorf("%w: %d faults, limit %d", custom_err.ErrBudgetExceeded, n, s.opts.SkipLimit)
	}
	return nil
}

func (s *BatchService) commitChunk(ctx context.Context, r *run, chunk *models.ChunkResult) error {
	if err := s.sink.Commit(ctx, r.id, chunk.Records); err != nil {
		return fmt.Errorf("%w: chunk %d: %v", custom_err.ErrCommitFailure, chunk.Index, err)
	}

	r.counters.AddCommitted(chunk.Records)

	event := models.ChunkEvent{
		RunID:       r.id,
		Index:       chunk.Index,
		Read:        chunk.Read,
		Written:     len(chunk.Records),
		Skipped:     chunk.Skipped,
		CommittedAt: s.now(),
	}
	for i := range chunk.Records {
		switch chunk.Records[i].Status {
		case models.StatusValid:
			event.Valid++
		case models.StatusInvalid:
			event.Invalid++
		case models.StatusFraudulent:
			event.Fraudulent++
		}
	}

	r.log.Info("chunk committed",
		slog.Int("chunk", chunk.Index),
		slog.Int("read", event.Read),
		slog.Int("written", event.Written),
		slog.Int("skipped", event.Skipped))

	s.listener.OnChunkCommitted(ctx, event)
	return nil
}
