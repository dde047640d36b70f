package mongodb

import (
	"context"
	"errors"
	"time"

	"backoffice-events/internal/domain/orders"
	"backoffice-events/internal/domain/stats"

	"github.com/walletera/werrors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserBSON struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	Active    bool      `bson:"active"`
	Points    int64     `bson:"points"`
	CreatedAt time.Time `bson:"createdAt"`
}

type UsersRepository struct {
	client         *mongo.Client
	dbName         string
	collectionName string
}

var (
	_ orders.Ledger     = (*UsersRepository)(nil)
	_ stats.UserCounter = (*UsersRepository)(nil)
)

func NewUsersRepository(client *mongo.Client, dbName string, collectionName string) *UsersRepository {
	return &UsersRepository{client: client, dbName: dbName, collectionName: collectionName}
}

// CreditPoints increments the member's balance atomically and returns the
// new balance.
func (r *UsersRepository) CreditPoints(ctx context.Context, userID string, points int64) (int64, werrors.WError) {
	coll := r.collection()

	update := bson.M{"$inc": bson.M{"points": points}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	result := coll.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, werrors.NewNonRetryableInternalError("user not found: %s", userID)
		}
		return 0, werrors.NewRetryableInternalError("failed crediting points for user %s: %s", userID, err.Error())
	}

	var user UserBSON
	if err := result.Decode(&user); err != nil {
		return 0, werrors.NewNonRetryableInternalError("failed decoding user %s: %s", userID, err.Error())
	}
	return user.Points, nil
}

func (r *UsersRepository) UserCounts(ctx context.Context, newSince time.Time) (stats.UserCounts, werrors.WError) {
	coll := r.collection()

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats.UserCounts{}, werrors.NewRetryableInternalError("failed counting users: %s", err.Error())
	}
	active, err := coll.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return stats.UserCounts{}, werrors.NewRetryableInternalError("failed counting active users: %s", err.Error())
	}
	newUsers, err := coll.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": newSince}})
	if err != nil {
		return stats.UserCounts{}, werrors.NewRetryableInternalError("failed counting new users: %s", err.Error())
	}

	return stats.UserCounts{Total: total, Active: active, NewSince: newUsers}, nil
}

func (r *UsersRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collectionName)
}
