package models

import "time"

// RunHistory запись журнала запусков в MongoDB
type RunHistory struct {
	RunID         string       `json:"run_id" bson:"run_id"`
	JobName       string       `json:"job_name" bson:"job_name"`
	StepName      string       `json:"step_name" bson:"step_name"`
	Trigger       string       `json:"trigger" bson:"trigger"`
	Status        RunStatus    `json:"status" bson:"status"`
	StartedAt     time.Time    `json:"started_at" bson:"started_at"`
	EndedAt       *time.Time   `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	Summary       RunSummary   `json:"summary" bson:"summary"`
	Chunks        []ChunkEvent `json:"chunks" bson:"chunks"`
	FailureReason string       `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
}
