// Package state defines the key-value store used for rollup caches,
// per-entity snapshots and idempotency marks. Values are JSON, last write
// wins.
package state

import (
	"context"
	"time"

	"github.com/walletera/werrors"
)

// Rollup keys.
const (
	KeyProductStats  = "product-stats"
	KeyOrderStats    = "order-stats"
	KeyUserStats     = "user-stats"
	KeyRealtimeStats = "realtime-stats"
)

// ProcessedMarkTTL bounds how long an event id is remembered for
// duplicate suppression.
const ProcessedMarkTTL = 24 * time.Hour

func ProductKey(productID string) string {
	return "product:" + productID
}

func UserKey(userID string) string {
	return "user:" + userID
}

func ProcessedKey(eventID string) string {
	return "processed:" + eventID
}

type Store interface {
	// Save marshals value as JSON and stores it under key, replacing any
	// previous entry.
	Save(ctx context.Context, key string, value any) werrors.WError
	// Get returns the raw JSON stored under key; found is false when the
	// key does not exist.
	Get(ctx context.Context, key string) (value []byte, found bool, werr werrors.WError)
	Delete(ctx context.Context, key string) werrors.WError
	// SetOnce records key with the given TTL and reports whether this call
	// created it. Handlers use it as an idempotency guard keyed by event id.
	SetOnce(ctx context.Context, key string, ttl time.Duration) (created bool, werr werrors.WError)
}
