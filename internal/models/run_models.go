package models

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	JobName  = "processTransactionsJob"
	StepName = "processTransactionsStep"
)

// Метки запуска
const (
	TriggerManual      = "Manual Execution"
	TriggerCLI         = "CLI Execution"
	TriggerDaily       = "Daily Scheduled Processing"
	TriggerIncremental = "Incremental Processing"
)

type RunStatus string

const (
	RunStarted   RunStatus = "STARTED"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// RunCounters счетчики одного запуска. Обновляются конкурентно воркерами классификации.
type RunCounters struct {
	read       atomic.Int64
	processed  atomic.Int64
	written    atomic.Int64
	skipped    atomic.Int64
	valid      atomic.Int64
	invalid    atomic.Int64
	fraudulent atomic.Int64
	chunks     atomic.Int64
}

func (c *RunCounters) AddRead(n int64)      { c.read.Add(n) }
func (c *RunCounters) AddProcessed(n int64) { c.processed.Add(n) }

// AddSkipped увеличивает счетчик сбоев и возвращает новое значение
func (c *RunCounters) AddSkipped(n int64) int64 { return c.skipped.Add(n) }

func (c *RunCounters) Skipped() int64 { return c.skipped.Load() }

// AddCommitted учитывает записанный чанк
func (c *RunCounters) AddCommitted(records []TransactionRecord) {
	for i := range records {
		switch records[i].Status {
		case StatusValid:
			c.valid.Add(1)
		case StatusInvalid:
			c.invalid.Add(1)
		case StatusFraudulent:
			c.fraudulent.Add(1)
		}
	}
	c.written.Add(int64(len(records)))
	c.chunks.Add(1)
}

func (c *RunCounters) Snapshot() RunSummary {
	return RunSummary{
		Read:       c.read.Load(),
		Processed:  c.processed.Load(),
		Written:    c.written.Load(),
		Skipped:    c.skipped.Load(),
		Valid:      c.valid.Load(),
		Invalid:    c.invalid.Load(),
		Fraudulent: c.fraudulent.Load(),
		Chunks:     c.chunks.Load(),
	}
}

func (c *RunCounters) LogValue() slog.Value {
	return c.Snapshot().LogValue()
}

// RunSummary снимок счетчиков запуска
type RunSummary struct {
	Read       int64 `json:"read" bson:"read"`
	Processed  int64 `json:"processed" bson:"processed"`
	Written    int64 `json:"written" bson:"written"`
	Skipped    int64 `json:"skipped" bson:"skipped"`
	Valid      int64 `json:"valid" bson:"valid"`
	Invalid    int64 `json:"invalid" bson:"invalid"`
	Fraudulent int64 `json:"fraudulent" bson:"fraudulent"`
	Chunks     int64 `json:"chunks" bson:"chunks"`
}

// Total количество классифицированных и записанных транзакций
func (s RunSummary) Total() int64 {
	return s.Valid + s.Invalid + s.Fraudulent
}

func (s RunSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("read", s.Read),
		slog.Int64("processed", s.Processed),
		slog.Int64("written", s.Written),
		slog.Int64("skipped", s.Skipped),
		slog.Int64("valid", s.Valid),
		slog.Int64("invalid", s.Invalid),
		slog.Int64("fraudulent", s.Fraudulent),
		slog.Int64("chunks", s.Chunks),
	)
}

// ChunkResult результат обработки одного чанка, живет до коммита
type ChunkResult struct {
	Index     int
	Read      int
	Processed int
	Skipped   int
	Records   []TransactionRecord
}

// RunResult итог запуска
type RunResult struct {
	RunID         uuid.UUID  `json:"run_id"`
	JobName       string     `json:"job_name"`
	Trigger       string     `json:"trigger"`
	Status        RunStatus  `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       time.Time  `json:"ended_at"`
	Summary       RunSummary `json:"summary"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Err           error      `json:"-"`
}

func (r RunResult) Duration() time.Duration {
	if r.EndedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// FormatDuration человекочитаемая длительность: "1h 2m 3s", "2m 3s", "3.250s", "250ms"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60
	millis := int64(d/time.Millisecond) % 1000

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	case seconds > 0:
		return fmt.Sprintf("%d.%03ds", seconds, millis)
	default:
		return fmt.Sprintf("%dms", millis)
	}
}
