package mongodb

import (
	"context"
	"errors"
	"time"

	"backoffice-events/internal/domain/catalog"
	"backoffice-events/internal/domain/orders"
	"backoffice-events/internal/domain/stats"

	"github.com/walletera/werrors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ProductBSON struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Category  string    `bson:"category"`
	Price     float64   `bson:"price"`
	Stock     int64     `bson:"stock"`
	Sold      int64     `bson:"sold"`
	CreatedAt time.Time `bson:"createdAt"`
}

type ProductsRepository struct {
	client         *mongo.Client
	dbName         string
	collectionName string
}

var (
	_ orders.Inventory     = (*ProductsRepository)(nil)
	_ stats.ProductCounter = (*ProductsRepository)(nil)
)

func NewProductsRepository(client *mongo.Client, dbName string, collectionName string) *ProductsRepository {
	return &ProductsRepository{client: client, dbName: dbName, collectionName: collectionName}
}

// ReserveStock applies the decrement as a single server-side update so
// concurrent orders against the same product cannot lose writes.
func (r *ProductsRepository) ReserveStock(ctx context.Context, productID string, quantity int64) (orders.StockLevel, werrors.WError) {
	coll := r.collection()

	update := bson.M{"$inc": bson.M{"stock": -quantity, "sold": quantity}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	result := coll.FindOneAndUpdate(ctx, bson.M{"_id": productID}, update, opts)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return orders.StockLevel{}, werrors.NewNonRetryableInternalError("product not found: %s", productID)
		}
		return orders.StockLevel{}, werrors.NewRetryableInternalError("failed reserving stock for product %s: %s", productID, err.Error())
	}

	var product ProductBSON
	if err := result.Decode(&product); err != nil {
		return orders.StockLevel{}, werrors.NewNonRetryableInternalError("failed decoding product %s: %s", productID, err.Error())
	}
	return orders.StockLevel{Stock: product.Stock, Sold: product.Sold}, nil
}

// ReleaseStock reverses a reservation with an aggregation-pipeline update
// so the sold counter is clamped at zero atomically.
func (r *ProductsRepository) ReleaseStock(ctx context.Context, productID string, quantity int64) werrors.WError {
	coll := r.collection()

	update := bson.A{
		bson.M{"$set": bson.M{
			"stock": bson.M{"$add": bson.A{"$stock", quantity}},
			"sold":  bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$sold", quantity}}}},
		}},
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return werrors.NewRetryableInternalError("failed releasing stock for product %s: %s", productID, err.Error())
	}
	if result.MatchedCount == 0 {
		return werrors.NewNonRetryableInternalError("product not found: %s", productID)
	}
	return nil
}

func (r *ProductsRepository) ProductCounts(ctx context.Context) (stats.ProductCounts, werrors.WError) {
	coll := r.collection()

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats.ProductCounts{}, werrors.NewRetryableInternalError("failed counting products: %s", err.Error())
	}
	inStock, err := coll.CountDocuments(ctx, bson.M{"stock": bson.M{"$gt": 0}})
	if err != nil {
		return stats.ProductCounts{}, werrors.NewRetryableInternalError("failed counting in-stock products: %s", err.Error())
	}
	lowStock, err := coll.CountDocuments(ctx, bson.M{"stock": bson.M{"$lt": catalog.LowStockThreshold}})
	if err != nil {
		return stats.ProductCounts{}, werrors.NewRetryableInternalError("failed counting low-stock products: %s", err.Error())
	}

	return stats.ProductCounts{Total: total, InStock: inStock, LowStock: lowStock}, nil
}

func (r *ProductsRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collectionName)
}
