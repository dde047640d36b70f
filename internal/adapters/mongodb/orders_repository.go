package mongodb

import (
	"context"
	"time"

	"backoffice-events/internal/domain/stats"

	"github.com/walletera/werrors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type OrdersRepository struct {
	client         *mongo.Client
	dbName         string
	collectionName string
}

var _ stats.OrderAggregator = (*OrdersRepository)(nil)

func NewOrdersRepository(client *mongo.Client, dbName string, collectionName string) *OrdersRepository {
	return &OrdersRepository{client: client, dbName: dbName, collectionName: collectionName}
}

func (r *OrdersRepository) OrderTotalsSince(ctx context.Context, since time.Time) (stats.OrderTotals, werrors.WError) {
	coll := r.client.Database(r.dbName).Collection(r.collectionName)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"orders":  bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return stats.OrderTotals{}, werrors.NewRetryableInternalError("failed aggregating orders: %s", err.Error())
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return stats.OrderTotals{}, werrors.NewRetryableInternalError("failed reading order aggregation: %s", err.Error())
		}
		// no orders in the window
		return stats.OrderTotals{}, nil
	}

	var totals struct {
		Orders  int64   `bson:"orders"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.Decode(&totals); err != nil {
		return stats.OrderTotals{}, werrors.NewNonRetryableInternalError("failed decoding order aggregation: %s", err.Error())
	}
	return stats.OrderTotals{Orders: totals.Orders, Revenue: totals.Revenue}, nil
}
