package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func newTxMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPgxTxManager_WithTx(t *testing.T) {
	chunkErr := errors.New("copy failed")

	tests := []struct {
		name    string
		setup   func(m pgxmock.PgxPoolIface)
		fn      func(tx pgx.Tx) error
		wantErr error
		wantMsg string
	}{
		{
			name: "commit on success",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted)
				m.ExpectCommit()
			},
			fn: func(tx pgx.Tx) error { return nil },
		},
		{
			name: "rollback on chunk error",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted)
				m.ExpectRollback()
			},
			fn:      func(tx pgx.Tx) error { return chunkErr },
			wantErr: chunkErr,
		},
		{
			name: "rollback failure is joined",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted)
				m.ExpectRollback().WillReturnError(errors.New("conn lost"))
			},
			fn:      func(tx pgx.Tx) error { return chunkErr },
			wantErr: chunkErr,
			wantMsg: "rollback",
		},
		{
			name: "begin error",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted).WillReturnError(errors.New("cannot begin transaction"))
			},
			fn: func(tx pgx.Tx) error {
				t.Fatal("function should not be called")
				return nil
			},
			wantMsg: "begin",
		},
		{
			name: "commit error",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted)
				m.ExpectCommit().WillReturnError(errors.New("cannot commit transaction"))
			},
			fn:      func(tx pgx.Tx) error { return nil },
			wantMsg: "commit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newTxMock(t)
			tt.setup(mock)

			err := NewPgxTxManager(mock).WithTx(context.Background(), tt.fn)

			if tt.wantErr == nil && tt.wantMsg == "" {
				assert.NoError(t, err)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgxTxManager_WithTx_IsoLevelOption(t *testing.T) {
	mock := newTxMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectCommit()

	err := NewPgxTxManager(mock, WithIsoLevel(pgx.Serializable)).WithTx(context.Background(), func(tx pgx.Tx) error {
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxTxManager_WithTx_CancelledContext(t *testing.T) {
	mock := newTxMock(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPgxTxManager(mock).WithTx(ctx, func(tx pgx.Tx) error {
		t.Fatal("function should not be called")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxTxManager_WithTx_PanicRollsBack(t *testing.T) {
	mock := newTxMock(t)
	mock.ExpectBeginTx(readCommitted)
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = NewPgxTxManager(mock).WithTx(context.Background(), func(tx pgx.Tx) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
