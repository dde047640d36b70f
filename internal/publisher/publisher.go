// Package publisher emits typed domain events onto the per-family topics.
// Every publish, single or batch, goes through the same bounded linear
// retry before the error is surfaced to the caller.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"backoffice-events/internal/events"
	"backoffice-events/pkg/backoff"
	"backoffice-events/pkg/logattr"

	"github.com/google/uuid"
	eventskit "github.com/walletera/eventskit/events"
	"golang.org/x/sync/errgroup"
)

type Publisher struct {
	broker eventskit.Publisher
	policy backoff.Policy
	now    func() time.Time
	logger *slog.Logger
}

type Option func(p *Publisher)

func WithRetryPolicy(policy backoff.Policy) func(p *Publisher) {
	return func(p *Publisher) {
		p.policy = policy
	}
}

// WithClock overrides the timestamp source. Tests use it to pin OccurredAt.
func WithClock(now func() time.Time) func(p *Publisher) {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(broker eventskit.Publisher, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		broker: broker,
		policy: backoff.NewPolicy(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) PublishProductEvent(ctx context.Context, event events.ProductEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, event events.OrderEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) PublishUserEvent(ctx context.Context, event events.UserEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) PublishMarketingEvent(ctx context.Context, event events.MarketingEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) PublishNotificationEvent(ctx context.Context, event events.NotificationEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) PublishStatsEvent(ctx context.Context, event events.StatsEvent) error {
	return p.publish(ctx, event)
}

// PublishBatch publishes all events concurrently and waits for every one
// of them; each member publish is retried with the same policy as a single
// publish. The first failure is returned after the whole batch settled.
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.Publishable) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, event := range batch {
		event := event
		group.Go(func() error {
			return p.publish(groupCtx, event)
		})
	}
	return group.Wait()
}

func (p *Publisher) publish(ctx context.Context, event events.Publishable) error {
	stamp(event.EventMeta(), p.now())

	err := p.policy.Retry(ctx, func(ctx context.Context) error {
		return p.broker.Publish(ctx, event, eventskit.RoutingInfo{
			Topic:      events.Exchange,
			RoutingKey: event.Topic(),
		})
	})
	if err != nil {
		p.logger.Error(
			"failed publishing event",
			logattr.Topic(event.Topic()),
			logattr.EventType(event.Type()),
			logattr.EventId(event.ID()),
			logattr.Error(err.Error()),
		)
		return fmt.Errorf("publishing %s on %s: %w", event.Type(), event.Topic(), err)
	}
	p.logger.Debug(
		"event published",
		logattr.Topic(event.Topic()),
		logattr.EventType(event.Type()),
		logattr.EventId(event.ID()),
	)
	return nil
}

// stamp fills the envelope fields assigned at publish time. The timestamp
// is set once; broker retries reuse the same envelope.
func stamp(meta *events.Meta, now time.Time) {
	if meta.EventID == uuid.Nil {
		meta.EventID = uuid.New()
	}
	if meta.UserID == "" {
		meta.UserID = events.SystemUser
	}
	meta.OccurredAt = now
}
