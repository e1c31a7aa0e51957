package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gw-transaction-batch/internal/models"

	"github.com/shopspring/decimal"
)

// DetailsLimit сколько записей каждого статуса попадает в отчет
const DetailsLimit = 1000

type Repository interface {
	CountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status models.TransactionStatus) (decimal.Decimal, error)
	FindByStatus(ctx context.Context, status models.TransactionStatus, limit int) ([]models.TransactionRecord, error)
}

type Reporter interface {
	GenerateSummaryReport(ctx context.Context, event models.RunEndEvent) (string, error)
}

type Service struct {
	repo      Repository
	outputDir string
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, outputDir string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		outputDir: outputDir,
		log:       log,
		now:       time.Now,
	}
}

type summary struct {
	valid, invalid, fraudulent int64
	validAmount                decimal.Decimal
	invalidRecords             []models.TransactionRecord
	fraudRecords               []models.TransactionRecord
}

// GenerateSummaryReport пишет текстовый отчет по хранилищу и возвращает путь к файлу
func (s *Service) GenerateSummaryReport(ctx context.Context, event models.RunEndEvent) (string, error) {
	const op = "report.GenerateSummaryReport"

	s.log.Info("generating summary report", slog.String("run_id", event.Result.RunID.String()))

	sum, err := s.collect(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%s: create output dir: %w", op, err)
	}

	now := s.now()
	path := filepath.Join(s.outputDir, fmt.Sprintf("transaction_report_%s.txt", now.Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeReport(w, now, event, sum)
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("%s: write: %w", op, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: close: %w", op, err)
	}

	s.log.Info("summary report generated", slog.String("path", path))
	return path, nil
}

func (s *Service) collect(ctx context.Context) (summary, error) {
	var (
		sum summary
		err error
	)

	if sum.valid, err = s.repo.CountByStatus(ctx, models.StatusValid); err != nil {
		return sum, err
	}
	if sum.invalid, err = s.repo.CountByStatus(ctx, models.StatusInvalid); err != nil {
		return sum, err
	}
	if sum.fraudulent, err = s.repo.CountByStatus(ctx, models.StatusFraudulent); err != nil {
		return sum, err
	}
	if sum.validAmount, err = s.repo.SumAmountByStatus(ctx, models.StatusValid); err != nil {
		return sum, err
	}
	if sum.invalidRecords, err = s.repo.FindByStatus(ctx, models.StatusInvalid, DetailsLimit); err != nil {
		return sum, err
	}
	if sum.fraudRecords, err = s.repo.FindByStatus(ctx, models.StatusFraudulent, DetailsLimit); err != nil {
		return sum, err
	}

	return sum, nil
}

func writeReport(w io.Writer, generatedAt time.Time, event models.RunEndEvent, sum summary) {
	res := event.Result

	fmt.Fprintln(w, "FINANCIAL TRANSACTION PROCESSING REPORT")
	fmt.Fprintln(w, "======================================")
	fmt.Fprintf(w, "Report Generated: %s\n", generatedAt.Format(time.DateTime))
	fmt.Fprintf(w, "Job Execution ID: %s\n", res.RunID)
	fmt.Fprintf(w, "Job Status: %s\n", res.Status)
	fmt.Fprintf(w, "Start Time: %s\n", formatTime(res.StartedAt))
	fmt.Fprintf(w, "End Time: %s\n", formatTime(res.EndedAt))
	fmt.Fprintf(w, "Duration: %s\n\n", duration(res))

	fmt.Fprintln(w, "TRANSACTION SUMMARY")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Valid Transactions: %d\n", sum.valid)
	fmt.Fprintf(w, "Invalid Transactions: %d\n", sum.invalid)
	fmt.Fprintf(w, "Fraudulent Transactions: %d\n", sum.fraudulent)
	fmt.Fprintf(w, "Total Processed: %d\n", sum.valid+sum.invalid+sum.fraudulent)
	fmt.Fprintf(w, "Total Valid Amount: $%s\n\n", sum.validAmount.StringFixed(2))

	fmt.Fprintln(w, "STEP EXECUTION DETAILS")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Step: %s\n", event.Step.StepName)
	fmt.Fprintf(w, "  Read Count: %d\n", event.Step.Summary.Read)
	fmt.Fprintf(w, "  Write Count: %d\n", event.Step.Summary.Written)
	fmt.Fprintf(w, "  Skip Count: %d\n", event.Step.Summary.Skipped)
	fmt.Fprintf(w, "  Status: %s\n\n", event.Step.Status)

	if len(sum.invalidRecords) > 0 {
		fmt.Fprintln(w, "INVALID TRANSACTIONS DETAILS")
		fmt.Fprintln(w, "===========================")
		for _, rec := range sum.invalidRecords {
			fmt.Fprintf(w, "Transaction ID: %s\n", rec.TransactionID)
			fmt.Fprintf(w, "  Account: %s\n", rec.AccountNumber)
			fmt.Fprintf(w, "  Amount: $%s\n", amount(rec))
			fmt.Fprintf(w, "  Error: %s\n", rec.ErrorMessage)
			fmt.Fprintf(w, "  Timestamp: %s\n\n", timestamp(rec))
		}
	}

	if len(sum.fraudRecords) > 0 {
		fmt.Fprintln(w, "FRAUDULENT TRANSACTIONS DETAILS")
		fmt.Fprintln(w, "==============================")
		for _, rec := range sum.fraudRecords {
			fmt.Fprintf(w, "Transaction ID: %s\n", rec.TransactionID)
			fmt.Fprintf(w, "  Account: %s\n", rec.AccountNumber)
			fmt.Fprintf(w, "  Amount: $%s\n", amount(rec))
			fmt.Fprintf(w, "  Fraud Score: %s\n", score(rec))
			fmt.Fprintf(w, "  Merchant: %s\n", rec.MerchantID)
			fmt.Fprintf(w, "  Timestamp: %s\n\n", timestamp(rec))
		}
	}
}

func duration(res models.RunResult) string {
	if res.StartedAt.IsZero() || res.EndedAt.IsZero() {
		return "Unknown"
	}
	return models.FormatDuration(res.Duration())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateTime)
}

func amount(rec models.TransactionRecord) string {
	if !rec.Amount.Valid {
		return "-"
	}
	return rec.Amount.Decimal.String()
}

func timestamp(rec models.TransactionRecord) string {
	if rec.Timestamp == nil {
		return "-"
	}
	return rec.Timestamp.Format("2006-01-02T15:04:05")
}

func score(rec models.TransactionRecord) string {
	if rec.FraudScore == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *rec.FraudScore)
}
