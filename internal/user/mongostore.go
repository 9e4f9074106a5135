package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

// MongoStore implements Store on top of a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a store backed by the "users" collection of the given
// database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index that enforces the single-user-
// per-email invariant, plus the sparse lookup index for the cancellation
// fallback by subscription id.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "entitlement.subscriptionId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error) {
	return s.findOne(ctx, bson.M{"entitlement.subscriptionId": subscriptionID})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) Insert(ctx context.Context, u *User) error {
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *MongoStore) UpdateEntitlement(ctx context.Context, email string, ent Entitlement, now time.Time) (bool, error) {
	return s.updateEntitlement(ctx, bson.M{"email": email}, ent, now)
}

func (s *MongoStore) UpdateEntitlementBySubscriptionID(ctx context.Context, subscriptionID string, ent Entitlement, now time.Time) (bool, error) {
	return s.updateEntitlement(ctx, bson.M{"entitlement.subscriptionId": subscriptionID}, ent, now)
}

func (s *MongoStore) updateEntitlement(ctx context.Context, filter bson.M, ent Entitlement, now time.Time) (bool, error) {
	set := bson.M{
		"entitlement.planType": ent.PlanType,
		"entitlement.isPro":    ent.IsPro,
		"updatedAt":            now,
	}
	// A downgrade carries no subscription id; the stored link survives so a
	// replayed cancellation can still find the user.
	if ent.SubscriptionID != "" {
		set["entitlement.subscriptionId"] = ent.SubscriptionID
	}

	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) RecordLogin(ctx context.Context, email, localAuthID, displayName, photo string, now time.Time) (*User, error) {
	// One-time link: matches only while localAuthId is still null.
	if localAuthID != "" {
		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"email": email, "localAuthId": nil},
			bson.M{"$set": bson.M{"localAuthId": localAuthID, "updatedAt": now}},
		); err != nil {
			return nil, err
		}
	}

	set := bson.M{"lastLogin": now, "updatedAt": now}
	if displayName != "" {
		set["displayName"] = displayName
	}
	if photo != "" {
		set["photo"] = photo
	}

	var u User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) SetHomeAddress(ctx context.Context, email string, addr *Address, now time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"homeAddress": addr, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) IncrementStats(ctx context.Context, email string, delivered bool, now time.Time) (bool, error) {
	field := "stats.failed"
	if delivered {
		field = "stats.delivered"
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$inc": bson.M{field: 1},
			"$set": bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) ResetQuota(ctx context.Context, email string, dayStart time.Time) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email, "quota.lastUseDate": bson.M{"$lt": dayStart}},
		bson.M{"$set": bson.M{"quota.dailyUseCount": 0}},
	)
	return err
}

func (s *MongoStore) ConsumeQuota(ctx context.Context, email string, limit int, now time.Time) (int, bool, error) {
	var u User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"email": email, "quota.dailyUseCount": bson.M{"$lt": limit}},
		bson.M{
			"$inc": bson.M{"quota.dailyUseCount": 1},
			"$set": bson.M{"quota.lastUseDate": now, "updatedAt": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the cap is spent or the user vanished; the caller
			// already verified existence, so report the allowance as used up.
			return 0, false, nil
		}
		return 0, false, err
	}
	return u.Quota.DailyUseCount, true, nil
}

var _ Store = (*MongoStore)(nil)
