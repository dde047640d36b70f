// Package catalog reacts to product events: rollup refreshes, per-product
// snapshots and low-stock alerts.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"backoffice-events/internal/domain/state"
	"backoffice-events/internal/events"
	"backoffice-events/pkg/logattr"

	"github.com/walletera/werrors"
)

// LowStockThreshold is the stock level below which a product triggers an
// admin alert.
const LowStockThreshold = 10

type Publisher interface {
	PublishNotificationEvent(ctx context.Context, event events.NotificationEvent) error
}

type StatsRecorder interface {
	RecordProductStats(ctx context.Context) werrors.WError
}

type EventsHandler struct {
	store     state.Store
	stats     StatsRecorder
	publisher Publisher
	logger    *slog.Logger
}

var _ events.ProductEventsHandler = (*EventsHandler)(nil)

func NewEventsHandler(store state.Store, stats StatsRecorder, publisher Publisher, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		store:     store,
		stats:     stats,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *EventsHandler) HandleProductCreated(ctx context.Context, event events.ProductCreated) werrors.WError {
	if werr := h.stats.RecordProductStats(ctx); werr != nil {
		h.logger.Error(
			"failed refreshing product stats",
			logattr.ProductId(event.Data.ID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	h.notify(ctx, event.Data.ID, events.NotificationPayload{
		Channel:   events.NotificationChannelAdmin,
		Recipient: events.RecipientAdmins,
		Title:     "product added",
		Body:      fmt.Sprintf("product %s (%s) is now in the catalog", event.Data.Name, event.Data.ID),
	})

	h.logger.Info("product created processed", logattr.ProductId(event.Data.ID))
	return nil
}

func (h *EventsHandler) HandleProductUpdated(ctx context.Context, event events.ProductUpdated) werrors.WError {
	if werr := h.store.Save(ctx, state.ProductKey(event.Data.ID), event.Data); werr != nil {
		h.logger.Error(
			"failed saving product snapshot",
			logattr.ProductId(event.Data.ID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	if event.Data.Stock < LowStockThreshold {
		h.notify(ctx, event.Data.ID, LowStockNotification(event.Data.ID, event.Data.Name, event.Data.Stock))
	}

	h.logger.Info("product updated processed", logattr.ProductId(event.Data.ID), logattr.Stock(event.Data.Stock))
	return nil
}

func (h *EventsHandler) HandleProductDeleted(ctx context.Context, event events.ProductDeleted) werrors.WError {
	if werr := h.store.Delete(ctx, state.ProductKey(event.Data.ID)); werr != nil {
		h.logger.Error(
			"failed deleting product snapshot",
			logattr.ProductId(event.Data.ID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	if werr := h.stats.RecordProductStats(ctx); werr != nil {
		h.logger.Error(
			"failed refreshing product stats",
			logattr.ProductId(event.Data.ID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	h.logger.Info("product deleted processed", logattr.ProductId(event.Data.ID))
	return nil
}

// notify publishes a follow-on notification; a failure is logged and does
// not fail the handled event.
func (h *EventsHandler) notify(ctx context.Context, productID string, payload events.NotificationPayload) {
	err := h.publisher.PublishNotificationEvent(ctx, events.NewNotificationSend(payload))
	if err != nil {
		h.logger.Error(
			"failed publishing notification",
			logattr.ProductId(productID),
			logattr.Error(err.Error()),
		)
	}
}

// LowStockNotification is shared with the order handler, which raises the
// same alert when a sale drains stock below the threshold.
func LowStockNotification(productID, name string, stock int64) events.NotificationPayload {
	return events.NotificationPayload{
		Channel:   events.NotificationChannelAdmin,
		Recipient: events.RecipientAdmins,
		Title:     "low stock",
		Body:      fmt.Sprintf("product %s (%s) is down to %d units", name, productID, stock),
	}
}
