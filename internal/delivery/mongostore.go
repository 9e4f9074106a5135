package delivery

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const outcomesCollection = "delivery_outcomes"

// MongoStore implements Store on top of a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a store backed by the "delivery_outcomes" collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(outcomesCollection)}
}

// EnsureIndexes creates the driver lookup index used for history reads.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "driverId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

func (s *MongoStore) Append(ctx context.Context, o *Outcome) error {
	_, err := s.coll.InsertOne(ctx, o)
	return err
}

var _ Store = (*MongoStore)(nil)
