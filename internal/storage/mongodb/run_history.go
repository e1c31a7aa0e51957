package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStorage struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
}

func NewMongoStorage(ctx context.Context, uri, database, collection string, timeout time.Duration) (*MongoStorage, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	ctxIndex, cancelIndex := context.WithTimeout(ctx, timeout)
	defer cancelIndex()

	if _, err := coll.Indexes().CreateOne(ctxIndex, indexModel); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &MongoStorage{
		client:     client,
		database:   db,
		collection: coll,
	}, nil
}

func newMongoStorage(coll *mongo.Collection) *MongoStorage {
	return &MongoStorage{database: coll.Database(), collection: coll}
}

// CreateRun повторная запись с тем же run_id игнорируется
func (s *MongoStorage) CreateRun(ctx context.Context, run models.RunHistory) error {
	if run.Chunks == nil {
		run.Chunks = []models.ChunkEvent{}
	}

	_, err := s.collection.InsertOne(ctx, run)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

func (s *MongoStorage) AppendChunk(ctx context.Context, runID string, chunk models.ChunkEvent) error {
	filter := bson.M{"run_id": runID}
	update := bson.M{"$push": bson.M{"chunks": chunk}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append chunk: %w", err)
	}
	if res.MatchedCount == 0 {
		return custom_err.ErrNotFound
	}

	return nil
}

func (s *MongoStorage) FinishRun(ctx context.Context, result models.RunResult) error {
	filter := bson.M{"run_id": result.RunID.String()}
	update := bson.M{"$set": bson.M{
		"status":         result.Status,
		"ended_at":       result.EndedAt,
		"summary":        result.Summary,
		"failure_reason": result.FailureReason,
	}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if res.MatchedCount == 0 {
		return custom_err.ErrNotFound
	}

	return nil
}

func (s *MongoStorage) GetRun(ctx context.Context, runID string) (*models.RunHistory, error) {
	var run models.RunHistory

	filter := bson.M{"run_id": runID}
	err := s.collection.FindOne(ctx, filter).Decode(&run)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, custom_err.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.client.Disconnect(ctx)
}
