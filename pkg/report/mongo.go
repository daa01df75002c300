package report

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB location of stored reports.
const (
	DefaultMongoDatabase   = "dazed"
	DefaultMongoCollection = "reports"
)

const mongoTimeout = 10 * time.Second

// MongoSink stores reports as documents in a MongoDB collection, keyed by
// report ID.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to uri and verifies the connection. Empty database
// and collection names select the defaults.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Store implements Sink. A report stored twice replaces the earlier copy.
func (s *MongoSink) Store(ctx context.Context, r *Report) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store report %s: %w", r.ID, err)
	}
	return nil
}

// Latest returns the most recently started report for host.
func (s *MongoSink) Latest(ctx context.Context, host string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var r Report
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if err := s.collection.FindOne(ctx, bson.M{"host": host}, opts).Decode(&r); err != nil {
		return nil, fmt.Errorf("load latest report: %w", err)
	}
	return &r, nil
}

// Close disconnects from MongoDB.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
