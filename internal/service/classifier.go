package service

import (
	"context"
	"fmt"
	"log/slog"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"
)

const duplicateTransactionMessage = "Duplicate transaction ID"

type DuplicateChecker interface {
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
}

// Classifier проводит одну запись через проверку дубликата, валидацию и оценку риска
type Classifier struct {
	dedup     DuplicateChecker
	validator RecordValidator
	scorer    RiskScorer
	cutoff    float64
	log       *slog.Logger
}

func NewClassifier(dedup DuplicateChecker, validator RecordValidator, scorer RiskScorer, cutoff float64, log *slog.Logger) *Classifier {
	return &Classifier{
		dedup:     dedup,
		validator: validator,
		scorer:    scorer,
		cutoff:    cutoff,
		log:       log,
	}
}

// Classify возвращает запись в терминальном статусе. Ненулевая ошибка означает сбой
// обработки (ErrProcessingFault): запись при этом все равно классифицирована как INVALID.
func (c *Classifier) Classify(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	const op = "service.Classify"

	if rec.HasMappingError() {
		c.apply(&rec, models.Invalid(rec.MappingError))
		return rec, nil
	}

	outcome, err := c.evaluate(ctx, rec)
	if err != nil && ctx.Err() != nil {
		// запуск прерван, запись остается без статуса и не считается сбоем
		return rec, fmt.Errorf("%s: %w", op, ctx.Err())
	}
	if err != nil {
		c.log.Error("error processing transaction",
			slog.String("op", op),
			slog.String("transaction_id", rec.TransactionID),
			slog.Int("line", rec.Line),
			slog.String("error", err.Error()))
		c.apply(&rec, models.Invalid("Processing error: "+err.Error()))
		return rec, fmt.Errorf("%s: %w: %v", op, custom_err.ErrProcessingFault, err)
	}

	c.apply(&rec, outcome)
	return rec, nil
}

func (c *Classifier) evaluate(ctx context.Context, rec models.TransactionRecord) (outcome models.Classification, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	// пустой ID хранится как NULL и не участвует в уникальности
	if rec.TransactionID != "" {
		exists, err := c.dedup.ExistsByTransactionID(ctx, rec.TransactionID)
		if err != nil {
			return models.Classification{}, err
		}
		if exists {
			return models.DuplicateOf(duplicateTransactionMessage), nil
		}
	}

	if ok, diagnostics := c.validator.Validate(rec); !ok {
		c.log.Debug("validation failed",
			slog.String("transaction_id", rec.TransactionID),
			slog.String("diagnostics", diagnostics))
		return models.Invalid(diagnostics), nil
	}

	score := c.scorer.Score(rec)
	if score > c.cutoff {
		c.log.Warn("fraudulent transaction detected",
			slog.String("transaction_id", rec.TransactionID),
			slog.Float64("fraud_score", score))
		return models.Fraudulent(score), nil
	}

	return models.Valid(score), nil
}

func (c *Classifier) apply(rec *models.TransactionRecord, outcome models.Classification) {
	if err := rec.Apply(outcome); err != nil {
		// запись пришла уже классифицированной; статус не меняем
		c.log.Warn("classification ignored",
			slog.String("transaction_id", rec.TransactionID),
			slog.String("status", string(rec.Status)),
			slog.String("error", err.Error()))
	}
}
