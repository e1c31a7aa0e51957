package models

import "time"

type NotificationType string

const (
	NotificationCompleted  NotificationType = "batch.completed"
	NotificationFailed     NotificationType = "batch.failed"
	NotificationFraudAlert NotificationType = "batch.fraud_alert"
)

// Notification сообщение для доставки получателям через брокер
type Notification struct {
	Type       NotificationType `json:"type"`
	RunID      string           `json:"run_id,omitempty"`
	Recipients []string         `json:"recipients"`
	Subject    string           `json:"subject"`
	Body       string           `json:"body"`
	CreatedAt  time.Time        `json:"created_at"`
}
