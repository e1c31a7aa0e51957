package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gw-transaction-batch/internal/models"
)

type NotificationPublisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

type Notifier interface {
	SendCompletionNotification(ctx context.Context, event models.RunEndEvent, reportPath string) error
	SendErrorNotification(ctx context.Context, event models.RunEndEvent) error
	SendFraudAlert(ctx context.Context, runID string, fraudulentCount int64, details string) error
}

// NotificationService формирует сообщения о запусках и передает их в брокер
type NotificationService struct {
	publisher  NotificationPublisher
	recipients []string
	enabled    bool
	log        *slog.Logger
	now        func() time.Time
}

func NewNotificationService(publisher NotificationPublisher, recipients []string, enabled bool, log *slog.Logger) *NotificationService {
	return &NotificationService{
		publisher:  publisher,
		recipients: recipients,
		enabled:    enabled,
		log:        log,
		now:        time.Now,
	}
}

func (s *NotificationService) SendCompletionNotification(ctx context.Context, event models.RunEndEvent, reportPath string) error {
	const op = "service.SendCompletionNotification"

	if !s.enabled {
		s.log.Info("notifications are disabled")
		return nil
	}

	res := event.Result
	var body strings.Builder
	body.WriteString("The financial transaction batch job has completed successfully.\n\n")
	writeJobDetails(&body, res)
	body.WriteString("\n")
	writeStepDetails(&body, event.Step)
	if reportPath != "" {
		fmt.Fprintf(&body, "Detailed report has been generated at: %s\n", reportPath)
	}

	return s.send(ctx, op, models.Notification{
		Type:    models.NotificationCompleted,
		RunID:   res.RunID.String(),
		Subject: "Financial Batch Processing Completed Successfully",
		Body:    body.String(),
	})
}

func (s *NotificationService) SendErrorNotification(ctx context.Context, event models.RunEndEvent) error {
	const op = "service.SendErrorNotification"

	if !s.enabled {
		return nil
	}

	res := event.Result
	var body strings.Builder
	body.WriteString("The financial transaction batch job has failed.\n\n")
	writeJobDetails(&body, res)
	if res.FailureReason != "" {
		fmt.Fprintf(&body, "- Error: %s\n", res.FailureReason)
	}
	body.WriteString("\nPlease check the application logs for more details.\n")

	return s.send(ctx, op, models.Notification{
		Type:    models.NotificationFailed,
		RunID:   res.RunID.String(),
		Subject: "Financial Batch Processing Failed",
		Body:    body.String(),
	})
}

func (s *NotificationService) SendFraudAlert(ctx context.Context, runID string, fraudulentCount int64, details string) error {
	const op = "service.SendFraudAlert"

	if !s.enabled {
		return nil
	}

	var body strings.Builder
	body.WriteString("URGENT: High number of potentially fraudulent transactions detected!\n\n")
	fmt.Fprintf(&body, "Fraudulent Transactions Count: %d\n\n", fraudulentCount)
	body.WriteString("Details:\n")
	body.WriteString(details)
	body.WriteString("\n\nPlease review immediately and take appropriate action.\n")
	body.WriteString("Check the detailed fraud report for more information.\n")

	return s.send(ctx, op, models.Notification{
		Type:    models.NotificationFraudAlert,
		RunID:   runID,
		Subject: fmt.Sprintf("FRAUD ALERT: %d Suspicious Transactions Detected", fraudulentCount),
		Body:    body.String(),
	})
}

func (s *NotificationService) send(ctx context.Context, op string, n models.Notification) error {
	n.Recipients = s.recipients
	n.CreatedAt = s.now()

	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.Error("failed to send notification",
			slog.String("op", op),
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("notification sent",
		slog.String("type", string(n.Type)),
		slog.String("recipients", strings.Join(s.recipients, ",")))
	return nil
}

func writeJobDetails(b *strings.Builder, res models.RunResult) {
	b.WriteString("Job Details:\n")
	fmt.Fprintf(b, "- Job ID: %s\n", res.RunID)
	fmt.Fprintf(b, "- Trigger: %s\n", res.Trigger)
	fmt.Fprintf(b, "- Status: %s\n", res.Status)
	fmt.Fprintf(b, "- Start Time: %s\n", res.StartedAt.Format(time.DateTime))
	if !res.EndedAt.IsZero() {
		fmt.Fprintf(b, "- End Time: %s\n", res.EndedAt.Format(time.DateTime))
		fmt.Fprintf(b, "- Duration: %s\n", models.FormatDuration(res.Duration()))
	}
}

func writeStepDetails(b *strings.Builder, step models.StepEvent) {
	fmt.Fprintf(b, "Step: %s\n", step.StepName)
	fmt.Fprintf(b, "- Read: %d\n", step.Summary.Read)
	fmt.Fprintf(b, "- Written: %d\n", step.Summary.Written)
	fmt.Fprintf(b, "- Skipped: %d\n\n", step.Summary.Skipped)
}
