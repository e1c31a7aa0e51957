package listener

import (
	"context"
	"fmt"
	"log/slog"

	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/report"
	"gw-transaction-batch/internal/service"
)

// CompletionListener после запуска строит отчет и рассылает уведомления
type CompletionListener struct {
	base
	reporter report.Reporter
	notifier service.Notifier
	log      *slog.Logger
}

func NewCompletionListener(reporter report.Reporter, notifier service.Notifier, log *slog.Logger) *CompletionListener {
	return &CompletionListener{reporter: reporter, notifier: notifier, log: log}
}

func (l *CompletionListener) OnRunEnd(ctx context.Context, e models.RunEndEvent) {
	res := e.Result
	log := l.log.With(slog.String("run_id", res.RunID.String()))

	if res.Status != models.RunCompleted {
		log.Warn("job completed with status", slog.String("status", string(res.Status)))
		if err := l.notifier.SendErrorNotification(ctx, e); err != nil {
			log.Error("failed to send error notification", slog.String("error", err.Error()))
		}
		return
	}

	reportPath, err := l.reporter.GenerateSummaryReport(ctx, e)
	if err != nil {
		log.Error("failed to generate summary report", slog.String("error", err.Error()))
	}

	if err := l.notifier.SendCompletionNotification(ctx, e, reportPath); err != nil {
		log.Error("failed to send completion notification", slog.String("error", err.Error()))
	}

	if res.Summary.Fraudulent > 0 {
		details := fmt.Sprintf("Run %s classified %d of %d transactions as FRAUDULENT.",
			res.RunID, res.Summary.Fraudulent, res.Summary.Written)
		if reportPath != "" {
			details += "\nReport: " + reportPath
		}
		if err := l.notifier.SendFraudAlert(ctx, res.RunID.String(), res.Summary.Fraudulent, details); err != nil {
			log.Error("failed to send fraud alert", slog.String("error", err.Error()))
		}
	}

	log.Info("job completion processing finished")
}
