package orders

import (
	"context"
	"time"

	"github.com/walletera/werrors"
)

// StockLevel is a product's inventory position after a mutation.
type StockLevel struct {
	Stock int64
	Sold  int64
}

// Inventory mutates product stock. Both operations must be atomic at the
// backing store; concurrent orders against the same product must not lose
// updates.
type Inventory interface {
	// ReserveStock decrements stock and increments sold by quantity,
	// returning the resulting level.
	ReserveStock(ctx context.Context, productID string, quantity int64) (StockLevel, werrors.WError)
	// ReleaseStock reverses a reservation: stock grows by quantity, sold
	// shrinks by quantity but never below zero.
	ReleaseStock(ctx context.Context, productID string, quantity int64) werrors.WError
}

// Ledger credits loyalty points atomically and returns the new balance.
type Ledger interface {
	CreditPoints(ctx context.Context, userID string, points int64) (int64, werrors.WError)
}

// PointsEntry is an immutable record of a single point award.
type PointsEntry struct {
	ID       string
	UserID   string
	OrderID  string
	Points   int64
	Reason   string
	EarnedAt time.Time
}

type PointsHistory interface {
	Append(ctx context.Context, entry PointsEntry) werrors.WError
}
