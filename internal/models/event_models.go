package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStartEvent отправляется слушателям перед чтением источника
type RunStartEvent struct {
	RunID     uuid.UUID
	JobName   string
	Trigger   string
	StartedAt time.Time
}

type StepEvent struct {
	RunID     uuid.UUID
	StepName  string
	Status    RunStatus
	StartedAt time.Time
	EndedAt   time.Time
	Summary   RunSummary
}

// ChunkEvent отправляется после успешного коммита чанка
type ChunkEvent struct {
	RunID       uuid.UUID `json:"run_id" bson:"-"`
	Index       int       `json:"index" bson:"index"`
	Read        int       `json:"read" bson:"read"`
	Written     int       `json:"written" bson:"written"`
	Skipped     int       `json:"skipped" bson:"skipped"`
	Valid       int       `json:"valid" bson:"valid"`
	Invalid     int       `json:"invalid" bson:"invalid"`
	Fraudulent  int       `json:"fraudulent" bson:"fraudulent"`
	CommittedAt time.Time `json:"committed_at" bson:"committed_at"`
}

// RunEndEvent отправляется после завершения запуска, в том числе неудачного
type RunEndEvent struct {
	Result RunResult
	Step   StepEvent
}

// RunEvent событие жизненного цикла запуска для kafka
type RunEvent struct {
	EventType     string     `json:"event_type"`
	RunID         string     `json:"run_id"`
	JobName       string     `json:"job_name"`
	Trigger       string     `json:"trigger,omitempty"`
	Status        RunStatus  `json:"status"`
	ChunkIndex    *int       `json:"chunk_index,omitempty"`
	Summary       RunSummary `json:"summary"`
	FailureReason string     `json:"failure_reason,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

const (
	EventRunStarted     = "batch.run.started"
	EventChunkCommitted = "batch.chunk.committed"
	EventRunCompleted   = "batch.run.completed"
	EventRunFailed      = "batch.run.failed"
)
