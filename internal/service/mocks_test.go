package service

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"sync"

	"gw-transaction-batch/internal/csvreader"
	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockDuplicateChecker struct {
	mock.Mock
}

func (m *MockDuplicateChecker) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(rec models.TransactionRecord) (bool, string) {
	args := m.Called(rec)
	return args.Bool(0), args.String(1)
}

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(rec models.TransactionRecord) float64 {
	args := m.Called(rec)
	return args.Get(0).(float64)
}

type MockBatchWriter struct {
	mock.Mock
}

func (m *MockBatchWriter) SaveBatchTx(ctx context.Context, tx pgx.Tx, runID uuid.UUID, records []models.TransactionRecord) (int64, error) {
	args := m.Called(ctx, tx, runID, records)
	return args.Get(0).(int64), args.Error(1)
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, runID uuid.UUID, trigger string) (models.RunResult, error) {
	args := m.Called(ctx, runID, trigger)
	return args.Get(0).(models.RunResult), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) GetStatusSummary(ctx context.Context) (models.StatusSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StatusSummary), args.Error(1)
}

// memorySink сохраняет закоммиченные чанки; commitErr возвращается на чанке failOn (с единицы)
type memorySink struct {
	mu        sync.Mutex
	chunks    [][]models.TransactionRecord
	calls     int
	failOn    int
	commitErr error
}

func (s *memorySink) Commit(_ context.Context, _ uuid.UUID, records []models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failOn == s.calls {
		return s.commitErr
	}
	cp := make([]models.TransactionRecord, len(records))
	copy(cp, records)
	s.chunks = append(s.chunks, cp)
	return nil
}

func (s *memorySink) persisted() []models.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.TransactionRecord
	for _, c := range s.chunks {
		all = append(all, c...)
	}
	return all
}

// recordingListener запоминает события запуска
type recordingListener struct {
	mu      sync.Mutex
	starts  []models.RunStartEvent
	steps   []models.StepEvent
	chunks  []models.ChunkEvent
	ends    []models.RunEndEvent
	ordered []string
}

func (l *recordingListener) OnRunStart(_ context.Context, e models.RunStartEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts = append(l.starts, e)
	l.ordered = append(l.ordered, "run_start")
}

func (l *recordingListener) OnStepStart(_ context.Context, e models.StepEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, e)
	l.ordered = append(l.ordered, "step_start")
}

func (l *recordingListener) OnChunkCommitted(_ context.Context, e models.ChunkEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chunks = append(l.chunks, e)
	l.ordered = append(l.ordered, "chunk")
}

func (l *recordingListener) OnStepEnd(_ context.Context, e models.StepEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, e)
	l.ordered = append(l.ordered, "step_end")
}

func (l *recordingListener) OnRunEnd(_ context.Context, e models.RunEndEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ends = append(l.ends, e)
	l.ordered = append(l.ordered, "run_end")
}

// sliceSource источник из заранее подготовленных строк и ошибок
type sliceSource struct {
	rows   []csvreader.Row
	errs   map[int]error
	closed bool
}

func (s *sliceSource) Rows() iter.Seq2[csvreader.Row, error] {
	return func(yield func(csvreader.Row, error) bool) {
		for i, row := range s.rows {
			if !yield(row, s.errs[i]) {
				return
			}
		}
	}
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func openerFor(src RecordSource) SourceOpener {
	return func(string) (RecordSource, error) { return src, nil }
}
