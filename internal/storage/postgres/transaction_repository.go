package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxErrorMessageLen = 1000

// Querier общая часть pgxpool.Pool и pgxmock
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TransactionRepository interface {
	SaveBatchTx(ctx context.Context, tx pgx.Tx, runID uuid.UUID, records []models.TransactionRecord) (int64, error)

	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
	CountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status models.TransactionStatus) (decimal.Decimal, error)
	FindByStatus(ctx context.Context, status models.TransactionStatus, limit int) ([]models.TransactionRecord, error)
	GetStatusSummary(ctx context.Context) (models.StatusSummary, error)
}

type PgTransactionRepository struct {
	db Querier
}

func NewTransactionRepository(db Querier) *PgTransactionRepository {
	return &PgTransactionRepository{db: db}
}

func (r *PgTransactionRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	const op = "storage.ExistsByTransactionID"

	var exists bool
	if err := r.db.QueryRow(ctx, storage.ExistsByTransactionIDQuery, transactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// SaveBatchTx пишет весь чанк одним COPY внутри переданной транзакции
func (r *PgTransactionRepository) SaveBatchTx(ctx context.Context, tx pgx.Tx, runID uuid.UUID, records []models.TransactionRecord) (int64, error) {
	const op = "storage.SaveBatchTx"

	if len(records) == 0 {
		return 0, nil
	}

	n, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{storage.TransactionsTable},
		storage.TransactionCopyColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return transactionCopyRow(runID, records[i]), nil
		}),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w: %s", op, custom_err.ErrDuplicateTransaction, pgErr.Detail)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (r *PgTransactionRepository) CountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error) {
	const op = "storage.CountByStatus"

	var count int64
	if err := r.db.QueryRow(ctx, storage.CountByStatusQuery, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func (r *PgTransactionRepository) SumAmountByStatus(ctx context.Context, status models.TransactionStatus) (decimal.Decimal, error) {
	const op = "storage.SumAmountByStatus"

	var raw string
	if err := r.db.QueryRow(ctx, storage.SumAmountByStatusQuery, string(status)).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	sum, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: parse sum %q: %w", op, raw, err)
	}
	return sum, nil
}

func (r *PgTransactionRepository) FindByStatus(ctx context.Context, status models.TransactionStatus, limit int) ([]models.TransactionRecord, error) {
	const op = "storage.FindByStatus"

	rows, err := r.db.Query(ctx, storage.FindByStatusQuery, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var (
			rec       models.TransactionRecord
			amount    string
			txType    string
			recStatus string
			ts        *time.Time
			score     *float64
		)
		if err := rows.Scan(
			&rec.TransactionID,
			&rec.AccountNumber,
			&amount,
			&txType,
			&rec.Description,
			&ts,
			&rec.MerchantID,
			&recStatus,
			&score,
			&rec.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		if amount != "" {
			d, err := decimal.NewFromString(amount)
			if err != nil {
				return nil, fmt.Errorf("%s: parse amount %q: %w", op, amount, err)
			}
			rec.Amount = decimal.NewNullDecimal(d)
		}
		rec.TransactionType = models.TransactionType(txType)
		rec.Status = models.TransactionStatus(recStatus)
		rec.Timestamp = ts
		rec.FraudScore = score

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (r *PgTransactionRepository) GetStatusSummary(ctx context.Context) (models.StatusSummary, error) {
	const op = "storage.GetStatusSummary"

	rows, err := r.db.Query(ctx, storage.StatusSummaryQuery)
	if err != nil {
		return models.StatusSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var summary models.StatusSummary
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return models.StatusSummary{}, fmt.Errorf("%s: scan: %w", op, err)
		}

		switch models.TransactionStatus(status) {
		case models.StatusValid:
			summary.Valid = count
		case models.StatusInvalid:
			summary.Invalid = count
		case models.StatusFraudulent:
			summary.Fraudulent = count
		case models.StatusPending:
			summary.Pending = count
		}
	}
	if err := rows.Err(); err != nil {
		return models.StatusSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	summary.TotalProcessed = summary.Valid + summary.Invalid + summary.Fraudulent
	return summary, nil
}

// Пустые строки пишутся как NULL. Уникальность transaction_id проверяется только для записей без duplicate
func transactionCopyRow(runID uuid.UUID, rec models.TransactionRecord) []any {
	var amount pgtype.Numeric
	if rec.Amount.Valid {
		amount = pgtype.Numeric{
			Int:   rec.Amount.Decimal.Coefficient(),
			Exp:   rec.Amount.Decimal.Exponent(),
			Valid: true,
		}
	}

	var ts pgtype.Timestamp
	if rec.Timestamp != nil {
		ts = pgtype.Timestamp{Time: *rec.Timestamp, Valid: true}
	}

	var score pgtype.Float8
	if rec.FraudScore != nil {
		score = pgtype.Float8{Float64: *rec.FraudScore, Valid: true}
	}

	msg := rec.ErrorMessage
	if r := []rune(msg); len(r) > maxErrorMessageLen {
		msg = string(r[:maxErrorMessageLen])
	}

	return []any{
		nullText(rec.TransactionID),
		nullText(rec.AccountNumber),
		amount,
		nullText(string(rec.TransactionType)),
		nullText(rec.Description),
		ts,
		nullText(rec.MerchantID),
		string(rec.Status),
		score,
		nullText(msg),
		runID,
		rec.Duplicate,
	}
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
