// Package orders reacts to order events: inventory movements, loyalty
// point awards and the daily order rollup.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"backoffice-events/internal/domain/catalog"
	"backoffice-events/internal/domain/state"
	"backoffice-events/internal/events"
	"backoffice-events/pkg/logattr"

	"github.com/google/uuid"
	"github.com/walletera/werrors"
)

type Publisher interface {
	PublishNotificationEvent(ctx context.Context, event events.NotificationEvent) error
	PublishMarketingEvent(ctx context.Context, event events.MarketingEvent) error
}

type StatsRecorder interface {
	RecordOrderStats(ctx context.Context) werrors.WError
}

type EventsHandler struct {
	inventory Inventory
	ledger    Ledger
	history   PointsHistory
	store     state.Store
	stats     StatsRecorder
	publisher Publisher
	now       func() time.Time
	logger    *slog.Logger
}

var _ events.OrderEventsHandler = (*EventsHandler)(nil)

type HandlerOption func(h *EventsHandler)

func WithClock(now func() time.Time) func(h *EventsHandler) {
	return func(h *EventsHandler) {
		h.now = now
	}
}

func NewEventsHandler(
	inventory Inventory,
	ledger Ledger,
	history PointsHistory,
	store state.Store,
	stats StatsRecorder,
	publisher Publisher,
	logger *slog.Logger,
	opts ...HandlerOption,
) *EventsHandler {
	h := &EventsHandler{
		inventory: inventory,
		ledger:    ledger,
		history:   history,
		store:     store,
		stats:     stats,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *EventsHandler) HandleOrderCreated(ctx context.Context, event events.OrderCreated) werrors.WError {
	first, werr := h.markProcessed(ctx, event.ID())
	if werr != nil {
		return werr
	}
	if !first {
		h.logDuplicate(event.ID(), event.Data.OrderID)
		return nil
	}

	for _, item := range event.Data.Items {
		level, werr := h.inventory.ReserveStock(ctx, item.ProductID, item.Quantity)
		if werr != nil {
			h.logger.Error(
				"failed reserving stock",
				logattr.OrderId(event.Data.OrderID),
				logattr.ProductId(item.ProductID),
				logattr.Error(werr.Message()),
			)
			// drop the mark so a redelivery can retry the reservation
			h.unmarkProcessed(ctx, event.ID())
			return werr
		}
		if level.Stock < catalog.LowStockThreshold {
			h.notify(ctx, event.Data.OrderID, catalog.LowStockNotification(item.ProductID, item.ProductID, level.Stock))
		}
	}

	h.notify(ctx, event.Data.OrderID, events.NotificationPayload{
		Channel:   events.NotificationChannelEmail,
		Recipient: event.Data.CustomerID,
		Title:     "order confirmed",
		Body:      fmt.Sprintf("order %s has been received", event.Data.OrderID),
	})

	h.logger.Info("order created processed", logattr.OrderId(event.Data.OrderID))
	return nil
}

func (h *EventsHandler) HandleOrderCompleted(ctx context.Context, event events.OrderCompleted) werrors.WError {
	first, werr := h.markProcessed(ctx, event.ID())
	if werr != nil {
		return werr
	}
	if !first {
		h.logDuplicate(event.ID(), event.Data.OrderID)
		return nil
	}

	points := int64(math.Floor(event.Data.TotalAmount))
	balance, werr := h.ledger.CreditPoints(ctx, event.Data.CustomerID, points)
	if werr != nil {
		h.logger.Error(
			"failed crediting points",
			logattr.OrderId(event.Data.OrderID),
			logattr.UserId(event.Data.CustomerID),
			logattr.Error(werr.Message()),
		)
		h.unmarkProcessed(ctx, event.ID())
		return werr
	}

	entry := PointsEntry{
		ID:       uuid.NewString(),
		UserID:   event.Data.CustomerID,
		OrderID:  event.Data.OrderID,
		Points:   points,
		Reason:   "order completed",
		EarnedAt: h.now(),
	}
	if werr := h.history.Append(ctx, entry); werr != nil {
		h.logger.Error(
			"failed appending points history",
			logattr.OrderId(event.Data.OrderID),
			logattr.UserId(event.Data.CustomerID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	// the balance mutation is already applied; a stale rollup self-heals
	// on the next order event
	if werr := h.stats.RecordOrderStats(ctx); werr != nil {
		h.logger.Error(
			"failed refreshing order stats",
			logattr.OrderId(event.Data.OrderID),
			logattr.Error(werr.Message()),
		)
	}

	err := h.publisher.PublishMarketingEvent(ctx, events.NewPointsEarned(events.PointsEarnedPayload{
		UserID:  event.Data.CustomerID,
		OrderID: event.Data.OrderID,
		Points:  points,
		Balance: balance,
	}))
	if err != nil {
		h.logger.Error(
			"failed publishing points earned",
			logattr.OrderId(event.Data.OrderID),
			logattr.Error(err.Error()),
		)
	}

	h.notify(ctx, event.Data.OrderID, events.NotificationPayload{
		Channel:   events.NotificationChannelEmail,
		Recipient: event.Data.CustomerID,
		Title:     "points earned",
		Body:      fmt.Sprintf("order %s earned %d loyalty points", event.Data.OrderID, points),
	})

	h.logger.Info(
		"points credited",
		logattr.OrderId(event.Data.OrderID),
		logattr.UserId(event.Data.CustomerID),
		logattr.Points(points),
	)
	return nil
}

func (h *EventsHandler) HandleOrderCancelled(ctx context.Context, event events.OrderCancelled) werrors.WError {
	first, werr := h.markProcessed(ctx, event.ID())
	if werr != nil {
		return werr
	}
	if !first {
		h.logDuplicate(event.ID(), event.Data.OrderID)
		return nil
	}

	for _, item := range event.Data.Items {
		if werr := h.inventory.ReleaseStock(ctx, item.ProductID, item.Quantity); werr != nil {
			h.logger.Error(
				"failed releasing stock",
				logattr.OrderId(event.Data.OrderID),
				logattr.ProductId(item.ProductID),
				logattr.Error(werr.Message()),
			)
			h.unmarkProcessed(ctx, event.ID())
			return werr
		}
	}

	h.notify(ctx, event.Data.OrderID, events.NotificationPayload{
		Channel:   events.NotificationChannelEmail,
		Recipient: event.Data.CustomerID,
		Title:     "order cancelled",
		Body:      fmt.Sprintf("order %s has been cancelled", event.Data.OrderID),
	})

	h.logger.Info("order cancelled processed", logattr.OrderId(event.Data.OrderID))
	return nil
}

// markProcessed reports whether this event id is seen for the first time.
// Delivery is at-least-once; the mark suppresses duplicate side effects.
func (h *EventsHandler) markProcessed(ctx context.Context, eventID string) (bool, werrors.WError) {
	return h.store.SetOnce(ctx, state.ProcessedKey(eventID), state.ProcessedMarkTTL)
}

func (h *EventsHandler) unmarkProcessed(ctx context.Context, eventID string) {
	if werr := h.store.Delete(ctx, state.ProcessedKey(eventID)); werr != nil {
		h.logger.Error(
			"failed removing processed mark",
			logattr.EventId(eventID),
			logattr.Error(werr.Message()),
		)
	}
}

func (h *EventsHandler) logDuplicate(eventID, orderID string) {
	h.logger.Info(
		"skipping duplicate event",
		logattr.EventId(eventID),
		logattr.OrderId(orderID),
	)
}

func (h *EventsHandler) notify(ctx context.Context, orderID string, payload events.NotificationPayload) {
	err := h.publisher.PublishNotificationEvent(ctx, events.NewNotificationSend(payload))
	if err != nil {
		h.logger.Error(
			"failed publishing notification",
			logattr.OrderId(orderID),
			logattr.Error(err.Error()),
		)
	}
}
