// Package stats recomputes the rollup statistics cached in the state
// store. Rollups are eventually consistent: each relevant event triggers a
// full recompute from the backing collections and the last write wins.
package stats

import (
	"context"
	"log/slog"
	"time"

	"backoffice-events/internal/domain/state"
	"backoffice-events/internal/events"
	"backoffice-events/pkg/logattr"

	"github.com/walletera/werrors"
)

type ProductCounts struct {
	Total    int64
	InStock  int64
	LowStock int64
}

type OrderTotals struct {
	Orders  int64
	Revenue float64
}

type UserCounts struct {
	Total    int64
	Active   int64
	NewSince int64
}

type ProductStats struct {
	TotalProducts int64     `json:"totalProducts"`
	InStock       int64     `json:"inStock"`
	LowStock      int64     `json:"lowStock"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

type OrderStats struct {
	OrdersToday  int64     `json:"ordersToday"`
	RevenueToday float64   `json:"revenueToday"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

type UserStats struct {
	TotalUsers  int64     `json:"totalUsers"`
	ActiveUsers int64     `json:"activeUsers"`
	NewToday    int64     `json:"newToday"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type RealtimeStats struct {
	OrdersToday   int64     `json:"ordersToday"`
	RevenueToday  float64   `json:"revenueToday"`
	NewUsersToday int64     `json:"newUsersToday"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

type ProductCounter interface {
	ProductCounts(ctx context.Context) (ProductCounts, werrors.WError)
}

type OrderAggregator interface {
	OrderTotalsSince(ctx context.Context, since time.Time) (OrderTotals, werrors.WError)
}

type UserCounter interface {
	UserCounts(ctx context.Context, newSince time.Time) (UserCounts, werrors.WError)
}

type Publisher interface {
	PublishStatsEvent(ctx context.Context, event events.StatsEvent) error
}

type Recorder struct {
	products  ProductCounter
	orders    OrderAggregator
	users     UserCounter
	store     state.Store
	publisher Publisher
	now       func() time.Time
	logger    *slog.Logger
}

type RecorderOption func(r *Recorder)

func WithClock(now func() time.Time) func(r *Recorder) {
	return func(r *Recorder) {
		r.now = now
	}
}

func NewRecorder(
	products ProductCounter,
	orders OrderAggregator,
	users UserCounter,
	store state.Store,
	publisher Publisher,
	logger *slog.Logger,
	opts ...RecorderOption,
) *Recorder {
	r := &Recorder{
		products:  products,
		orders:    orders,
		users:     users,
		store:     store,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) RecordProductStats(ctx context.Context) werrors.WError {
	counts, werr := r.products.ProductCounts(ctx)
	if werr != nil {
		return werr
	}
	rollup := ProductStats{
		TotalProducts: counts.Total,
		InStock:       counts.InStock,
		LowStock:      counts.LowStock,
		GeneratedAt:   r.now(),
	}
	return r.save(ctx, state.KeyProductStats, rollup)
}

// RecordOrderStats refreshes both the order rollup and the realtime
// rollup using a window starting at local midnight.
func (r *Recorder) RecordOrderStats(ctx context.Context) werrors.WError {
	now := r.now()
	since := Midnight(now)

	totals, werr := r.orders.OrderTotalsSince(ctx, since)
	if werr != nil {
		return werr
	}
	werr = r.save(ctx, state.KeyOrderStats, OrderStats{
		OrdersToday:  totals.Orders,
		RevenueToday: totals.Revenue,
		GeneratedAt:  now,
	})
	if werr != nil {
		return werr
	}

	userCounts, werr := r.users.UserCounts(ctx, since)
	if werr != nil {
		return werr
	}
	return r.save(ctx, state.KeyRealtimeStats, RealtimeStats{
		OrdersToday:   totals.Orders,
		RevenueToday:  totals.Revenue,
		NewUsersToday: userCounts.NewSince,
		GeneratedAt:   now,
	})
}

func (r *Recorder) RecordUserStats(ctx context.Context) werrors.WError {
	now := r.now()
	counts, werr := r.users.UserCounts(ctx, Midnight(now))
	if werr != nil {
		return werr
	}
	return r.save(ctx, state.KeyUserStats, UserStats{
		TotalUsers:  counts.Total,
		ActiveUsers: counts.Active,
		NewToday:    counts.NewSince,
		GeneratedAt: now,
	})
}

func (r *Recorder) save(ctx context.Context, key string, rollup any) werrors.WError {
	if werr := r.store.Save(ctx, key, rollup); werr != nil {
		return werr
	}
	// the stats feed is advisory; a publish failure does not invalidate
	// the refreshed rollup
	err := r.publisher.PublishStatsEvent(ctx, events.NewStatsUpdated(events.StatsUpdatedPayload{Name: key}))
	if err != nil {
		r.logger.Error("failed publishing stats update", logattr.StateKey(key), logattr.Error(err.Error()))
	}
	return nil
}

// Midnight truncates t to the start of its day in t's location.
func Midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
