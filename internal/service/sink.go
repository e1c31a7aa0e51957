package service

import (
	"context"
	"fmt"
	"log/slog"

	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BatchWriter interface {
	SaveBatchTx(ctx context.Context, tx pgx.Tx, runID uuid.UUID, records []models.TransactionRecord) (int64, error)
}

// TransactionSink пишет чанк в одной транзакции БД
type TransactionSink struct {
	writer    BatchWriter
	txManager TxManager
	log       *slog.Logger
}

func NewTransactionSink(writer BatchWriter, txManager TxManager, log *slog.Logger) *TransactionSink {
	return &TransactionSink{writer: writer, txManager: txManager, log: log}
}

func (s *TransactionSink) Commit(ctx context.Context, runID uuid.UUID, records []models.TransactionRecord) error {
	const op = "service.TransactionSink.Commit"

	if len(records) == 0 {
		return nil
	}

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		n, err := s.writer.SaveBatchTx(ctx, tx, runID, records)
		if err != nil {
			return err
		}
		if n != int64(len(records)) {
			return fmt.Errorf("written %d of %d records", n, len(records))
		}
		return nil
	})
	if err != nil {
		s.log.Error("chunk write rolled back",
			slog.String("op", op),
			slog.String("run_id", runID.String()),
			slog.Int("records", len(records)),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("chunk written", slog.String("run_id", runID.String()), slog.Int("records", len(records)))
	return nil
}
