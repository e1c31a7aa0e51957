package mongodb

import (
	"context"
	"testing"
	"time"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStorage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create run", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := s.CreateRun(ctx, models.RunHistory{RunID: uuid.NewString(), Status: models.RunStarted})
		assert.NoError(mt, err)
	})

	mt.Run("create run duplicate is ignored", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := s.CreateRun(ctx, models.RunHistory{RunID: "run-1"})
		assert.NoError(mt, err)
	})

	mt.Run("append chunk", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := s.AppendChunk(ctx, "run-1", models.ChunkEvent{Index: 0, Read: 10, Written: 10})
		assert.NoError(mt, err)
	})

	mt.Run("append chunk unknown run", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.AppendChunk(ctx, "missing", models.ChunkEvent{})
		assert.ErrorIs(mt, err, custom_err.ErrNotFound)
	})

	mt.Run("finish run", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := s.FinishRun(ctx, models.RunResult{
			RunID:   uuid.New(),
			Status:  models.RunCompleted,
			EndedAt: time.Now(),
			Summary: models.RunSummary{Read: 5, Written: 5},
		})
		assert.NoError(mt, err)
	})

	mt.Run("get run", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "run_id", Value: "run-1"},
			{Key: "job_name", Value: models.JobName},
			{Key: "status", Value: "COMPLETED"},
			{Key: "summary", Value: bson.D{{Key: "read", Value: int64(12)}, {Key: "written", Value: int64(11)}}},
			{Key: "chunks", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "written", Value: 11}}}},
		}))

		run, err := s.GetRun(ctx, "run-1")
		require.NoError(mt, err)
		assert.Equal(mt, "run-1", run.RunID)
		assert.Equal(mt, models.RunCompleted, run.Status)
		assert.Equal(mt, int64(12), run.Summary.Read)
		require.Len(mt, run.Chunks, 1)
		assert.Equal(mt, 11, run.Chunks[0].Written)
	})

	mt.Run("get run not found", func(mt *mtest.T) {
		s := newMongoStorage(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.GetRun(ctx, "missing")
		assert.ErrorIs(mt, err, custom_err.ErrNotFound)
	})

	mt.Run("close without client", func(mt *mtest.T) {
		assert.NoError(mt, newMongoStorage(mt.Coll).Close(ctx))
	})
}
