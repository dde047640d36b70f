package mongodb

import (
	"context"
	"time"

	"backoffice-events/internal/domain/orders"

	"github.com/walletera/werrors"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type PointsEntryBSON struct {
	ID       string    `bson:"_id"`
	UserID   string    `bson:"userId"`
	OrderID  string    `bson:"orderId"`
	Points   int64     `bson:"points"`
	Reason   string    `bson:"reason"`
	EarnedAt time.Time `bson:"earnedAt"`
}

// PointsHistoryRepository appends immutable point-award records; entries
// are never updated or deleted.
type PointsHistoryRepository struct {
	client         *mongo.Client
	dbName         string
	collectionName string
}

var _ orders.PointsHistory = (*PointsHistoryRepository)(nil)

func NewPointsHistoryRepository(client *mongo.Client, dbName string, collectionName string) *PointsHistoryRepository {
	return &PointsHistoryRepository{client: client, dbName: dbName, collectionName: collectionName}
}

func (r *PointsHistoryRepository) Append(ctx context.Context, entry orders.PointsEntry) werrors.WError {
	coll := r.client.Database(r.dbName).Collection(r.collectionName)

	_, err := coll.InsertOne(ctx, PointsEntryBSON(entry))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return werrors.NewNonRetryableInternalError("duplicate points entry %s: %s", entry.ID, err.Error())
		}
		return werrors.NewRetryableInternalError("failed appending points entry: %s", err.Error())
	}
	return nil
}
