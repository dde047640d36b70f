// Package members reacts to user events: welcome notifications, the user
// rollup and per-user snapshots.
package members

import (
	"context"
	"fmt"
	"log/slog"

	"backoffice-events/internal/domain/state"
	"backoffice-events/internal/events"
	"backoffice-events/pkg/logattr"

	"github.com/walletera/werrors"
)

type Publisher interface {
	PublishNotificationEvent(ctx context.Context, event events.NotificationEvent) error
}

type StatsRecorder interface {
	RecordUserStats(ctx context.Context) werrors.WError
}

type EventsHandler struct {
	store     state.Store
	stats     StatsRecorder
	publisher Publisher
	logger    *slog.Logger
}

var _ events.UserEventsHandler = (*EventsHandler)(nil)

func NewEventsHandler(store state.Store, stats StatsRecorder, publisher Publisher, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		store:     store,
		stats:     stats,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *EventsHandler) HandleUserCreated(ctx context.Context, event events.UserCreated) werrors.WError {
	err := h.publisher.PublishNotificationEvent(ctx, events.NewNotificationSend(events.NotificationPayload{
		Channel:   events.NotificationChannelEmail,
		Recipient: event.Data.ID,
		Title:     "welcome",
		Body:      fmt.Sprintf("welcome aboard, %s", event.Data.Name),
	}))
	if err != nil {
		h.logger.Error(
			"failed publishing welcome notification",
			logattr.UserId(event.Data.ID),
			logattr.Error(err.Error()),
		)
	}

	if werr := h.stats.RecordUserStats(ctx); werr != nil {
		h.logger.Error(
			"failed refreshing user stats",
			logattr.UserId(event.Data.ID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	h.logger.Info("user created processed", logattr.UserId(event.Data.ID))
	return nil
}

func (h *EventsHandler) HandleUserUpdated(ctx context.Context, event events.UserUpdated) werrors.WError {
	if werr := h.store.Save(ctx, state.UserKey(event.Data.ID), event.Data); werr != nil {
		h.logger.Error(
			"failed saving user snapshot",
			logattr.UserId(event.Data.ID),
			logattr.Error(werr.Message()),
		)
		return werr
	}

	h.logger.Info("user updated processed", logattr.UserId(event.Data.ID))
	return nil
}
