package service

import (
	"context"
	"errors"
	"testing"

	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransactionSink_Commit(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	writer := new(MockBatchWriter)
	sink := NewTransactionSink(writer, NewPgxTxManager(pool), testLogger())

	runID := uuid.New()
	records := []models.TransactionRecord{validRecord(), validRecord()}

	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	writer.On("SaveBatchTx", mock.Anything, mock.Anything, runID, records).Return(int64(2), nil)
	pool.ExpectCommit()

	require.NoError(t, sink.Commit(context.Background(), runID, records))
	assert.NoError(t, pool.ExpectationsWereMet())
	writer.AssertExpectations(t)
}

func TestTransactionSink_Commit_RollsBackOnWriteError(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	writer := new(MockBatchWriter)
	sink := NewTransactionSink(writer, NewPgxTxManager(pool), testLogger())

	writeErr := errors.New("duplicate key")
	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	writer.On("SaveBatchTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), writeErr)
	pool.ExpectRollback()

	err = sink.Commit(context.Background(), uuid.New(), []models.TransactionRecord{validRecord()})

	assert.ErrorIs(t, err, writeErr)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestTransactionSink_Commit_ShortWriteRollsBack(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	writer := new(MockBatchWriter)
	sink := NewTransactionSink(writer, NewPgxTxManager(pool), testLogger())

	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	writer.On("SaveBatchTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	pool.ExpectRollback()

	err = sink.Commit(context.Background(), uuid.New(), []models.TransactionRecord{validRecord(), validRecord()})

	assert.ErrorContains(t, err, "written 1 of 2")
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestTransactionSink_Commit_Empty(t *testing.T) {
	writer := new(MockBatchWriter)
	sink := NewTransactionSink(writer, nil, testLogger())

	assert.NoError(t, sink.Commit(context.Background(), uuid.New(), nil))
	writer.AssertNotCalled(t, "SaveBatchTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
