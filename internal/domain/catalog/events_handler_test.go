package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"backoffice-events/internal/domain/state"
	"backoffice-events/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletera/werrors"
)

type fakeStore struct {
	entries map[string]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]json.RawMessage{}}
}

func (s *fakeStore) Save(_ context.Context, key string, value any) werrors.WError {
	raw, err := json.Marshal(value)
	if err != nil {
		return werrors.NewNonRetryableInternalError(err.Error())
	}
	s.entries[key] = raw
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, werrors.WError) {
	raw, found := s.entries[key]
	return raw, found, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) werrors.WError {
	delete(s.entries, key)
	return nil
}

func (s *fakeStore) SetOnce(_ context.Context, key string, _ time.Duration) (bool, werrors.WError) {
	if _, found := s.entries[key]; found {
		return false, nil
	}
	s.entries[key] = json.RawMessage("1")
	return true, nil
}

type fakeStats struct {
	refreshes int
}

func (s *fakeStats) RecordProductStats(_ context.Context) werrors.WError {
	s.refreshes++
	return nil
}

type fakePublisher struct {
	notifications []*events.NotificationSend
}

func (p *fakePublisher) PublishNotificationEvent(_ context.Context, event events.NotificationEvent) error {
	p.notifications = append(p.notifications, event.(*events.NotificationSend))
	return nil
}

func newHandler() (*EventsHandler, *fakeStore, *fakeStats, *fakePublisher) {
	store := newFakeStore()
	stats := &fakeStats{}
	publisher := &fakePublisher{}
	handler := NewEventsHandler(store, stats, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return handler, store, stats, publisher
}

func TestProductCreatedRefreshesStatsAndNotifiesAdmins(t *testing.T) {
	handler, _, stats, publisher := newHandler()

	werr := handler.HandleProductCreated(context.Background(), *events.NewProductCreated(events.ProductPayload{
		ID:   "P1",
		Name: "lamp",
	}))

	require.Nil(t, werr)
	assert.Equal(t, 1, stats.refreshes)
	require.Len(t, publisher.notifications, 1)
	assert.Equal(t, events.NotificationChannelAdmin, publisher.notifications[0].Data.Channel)
	assert.Equal(t, "product added", publisher.notifications[0].Data.Title)
}

func TestProductUpdatedSavesSnapshot(t *testing.T) {
	handler, store, _, publisher := newHandler()

	werr := handler.HandleProductUpdated(context.Background(), *events.NewProductUpdated(events.ProductPayload{
		ID:    "P1",
		Name:  "lamp",
		Stock: 42,
	}))

	require.Nil(t, werr)
	raw, found, _ := store.Get(context.Background(), state.ProductKey("P1"))
	require.True(t, found)

	var snapshot events.ProductPayload
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, int64(42), snapshot.Stock)

	assert.Empty(t, publisher.notifications)
}

func TestProductUpdatedBelowThresholdPublishesLowStockAlert(t *testing.T) {
	handler, _, _, publisher := newHandler()

	werr := handler.HandleProductUpdated(context.Background(), *events.NewProductUpdated(events.ProductPayload{
		ID:    "P1",
		Name:  "lamp",
		Stock: 9,
	}))

	require.Nil(t, werr)
	require.Len(t, publisher.notifications, 1)
	assert.Equal(t, "low stock", publisher.notifications[0].Data.Title)
}

func TestProductDeletedRemovesSnapshotAndRefreshesStats(t *testing.T) {
	handler, store, stats, _ := newHandler()
	require.Nil(t, store.Save(context.Background(), state.ProductKey("P1"), events.ProductPayload{ID: "P1"}))

	werr := handler.HandleProductDeleted(context.Background(), *events.NewProductDeleted(events.ProductPayload{ID: "P1"}))

	require.Nil(t, werr)
	_, found, _ := store.Get(context.Background(), state.ProductKey("P1"))
	assert.False(t, found)
	assert.Equal(t, 1, stats.refreshes)
}

func TestStatsFailurePropagates(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	handler := NewEventsHandler(store, failingStats{}, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	werr := handler.HandleProductCreated(context.Background(), *events.NewProductCreated(events.ProductPayload{ID: "P1"}))

	require.NotNil(t, werr)
	assert.Empty(t, publisher.notifications)
}

type failingStats struct{}

func (failingStats) RecordProductStats(_ context.Context) werrors.WError {
	return werrors.NewRetryableInternalError("store unavailable")
}
