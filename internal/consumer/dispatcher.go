// Package consumer subscribes the per-domain handlers to their broker
// topics and dispatches incoming events to them.
package consumer

import (
	"context"
	"log/slog"
	"sync"

	"backoffice-events/internal/events"
	"backoffice-events/pkg/logattr"

	"github.com/walletera/eventskit/messages"
	"github.com/walletera/werrors"
)

// ConsumerFactory opens a broker consumer bound to the given topic (queue
// and routing key share the topic name).
type ConsumerFactory func(topic string) (messages.Consumer, error)

type subscription struct {
	topic   string
	handler any
	start   func(ctx context.Context, consumer messages.Consumer) error
}

// Dispatcher holds the fixed topic→handler registry. The registry is
// closed at construction; Start is idempotent and subscription failures
// are best-effort: a failing topic is logged and the rest still start.
type Dispatcher struct {
	newConsumer ConsumerFactory
	logger      *slog.Logger

	mu      sync.Mutex
	started bool
	subs    []subscription
}

type Option func(d *Dispatcher)

func NewDispatcher(newConsumer ConsumerFactory, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		newConsumer: newConsumer,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func WithProductHandler(handler events.ProductEventsHandler) Option {
	return func(d *Dispatcher) {
		d.register(events.ProductTopic, handler, func(ctx context.Context, consumer messages.Consumer) error {
			processor := messages.NewProcessor[events.ProductEventsHandler](
				consumer,
				events.NewProductEventsDeserializer(d.topicLogger(events.ProductTopic)),
				handler,
				messages.WithErrorCallback(d.errorCallback(events.ProductTopic)),
			)
			return processor.Start(ctx)
		})
	}
}

func WithOrderHandler(handler events.OrderEventsHandler) Option {
	return func(d *Dispatcher) {
		d.register(events.OrderTopic, handler, func(ctx context.Context, consumer messages.Consumer) error {
			processor := messages.NewProcessor[events.OrderEventsHandler](
				consumer,
				events.NewOrderEventsDeserializer(d.topicLogger(events.OrderTopic)),
				handler,
				messages.WithErrorCallback(d.errorCallback(events.OrderTopic)),
			)
			return processor.Start(ctx)
		})
	}
}

func WithUserHandler(handler events.UserEventsHandler) Option {
	return func(d *Dispatcher) {
		d.register(events.UserTopic, handler, func(ctx context.Context, consumer messages.Consumer) error {
			processor := messages.NewProcessor[events.UserEventsHandler](
				consumer,
				events.NewUserEventsDeserializer(d.topicLogger(events.UserTopic)),
				handler,
				messages.WithErrorCallback(d.errorCallback(events.UserTopic)),
			)
			return processor.Start(ctx)
		})
	}
}

func (d *Dispatcher) register(topic string, handler any, start func(ctx context.Context, consumer messages.Consumer) error) {
	d.subs = append(d.subs, subscription{topic: topic, handler: handler, start: start})
}

// Start subscribes every registered topic. Calling it again is a no-op.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}

	for _, sub := range d.subs {
		consumer, err := d.newConsumer(sub.topic)
		if err != nil {
			d.logger.Error(
				"failed opening consumer, topic will not receive events",
				logattr.Topic(sub.topic),
				logattr.Error(err.Error()),
			)
			continue
		}
		if err := sub.start(ctx, consumer); err != nil {
			d.logger.Error(
				"failed starting processor, topic will not receive events",
				logattr.Topic(sub.topic),
				logattr.Error(err.Error()),
			)
			continue
		}
		d.logger.Info("subscribed", logattr.Topic(sub.topic))
	}

	d.started = true
	return nil
}

// Handler returns the handler registered for topic, or nil.
func (d *Dispatcher) Handler(topic string) any {
	for _, sub := range d.subs {
		if sub.topic == topic {
			return sub.handler
		}
	}
	return nil
}

func (d *Dispatcher) Topics() []string {
	topics := make([]string, 0, len(d.subs))
	for _, sub := range d.subs {
		topics = append(topics, sub.topic)
	}
	return topics
}

func (d *Dispatcher) topicLogger(topic string) *slog.Logger {
	return d.logger.With(logattr.Topic(topic))
}

// Handler failures end here: logged, message nacked by the processor, no
// propagation past the dispatch boundary.
func (d *Dispatcher) errorCallback(topic string) messages.ErrorCallback {
	return func(processingError werrors.WError) {
		d.logger.Error(
			"failed processing event",
			logattr.Topic(topic),
			logattr.Error(processingError.Message()),
		)
	}
}
