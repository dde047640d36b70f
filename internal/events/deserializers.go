package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"backoffice-events/pkg/logattr"

	eventskit "github.com/walletera/eventskit/events"
)

// The deserializers validate the closed subtype set at the consume
// boundary. A malformed envelope or payload is an error (the message is
// unprocessable); an unknown subtype is logged as a warning and yields a
// nil event, which the message processor treats as consumed without side
// effects.

type ProductEventsDeserializer struct {
	logger *slog.Logger
}

func NewProductEventsDeserializer(logger *slog.Logger) ProductEventsDeserializer {
	return ProductEventsDeserializer{logger: logger}
}

func (d ProductEventsDeserializer) Deserialize(rawEvent []byte) (eventskit.Event[ProductEventsHandler], error) {
	env, err := parseEnvelope(rawEvent)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case TypeProductCreated:
		data, err := parsePayload[ProductPayload](env)
		if err != nil {
			return nil, err
		}
		return &ProductCreated{Meta: metaFromEnvelope(env), Data: data}, nil
	case TypeProductUpdated:
		data, err := parsePayload[ProductPayload](env)
		if err != nil {
			return nil, err
		}
		return &ProductUpdated{Meta: metaFromEnvelope(env), Data: data}, nil
	case TypeProductDeleted:
		data, err := parsePayload[ProductPayload](env)
		if err != nil {
			return nil, err
		}
		return &ProductDeleted{Meta: metaFromEnvelope(env), Data: data}, nil
	default:
		d.logger.Warn("ignoring event with unknown type", logattr.EventType(env.Type))
		return nil, nil
	}
}

type OrderEventsDeserializer struct {
	logger *slog.Logger
}

func NewOrderEventsDeserializer(logger *slog.Logger) OrderEventsDeserializer {
	return OrderEventsDeserializer{logger: logger}
}

func (d OrderEventsDeserializer) Deserialize(rawEvent []byte) (eventskit.Event[OrderEventsHandler], error) {
	env, err := parseEnvelope(rawEvent)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case TypeOrderCreated:
		data, err := parsePayload[OrderPayload](env)
		if err != nil {
			return nil, err
		}
		return &OrderCreated{Meta: metaFromEnvelope(env), Data: data}, nil
	case TypeOrderCompleted:
		data, err := parsePayload[OrderPayload](env)
		if err != nil {
			return nil, err
		}
		return &OrderCompleted{Meta: metaFromEnvelope(env), Data: data}, nil
	case TypeOrderCancelled:
		data, err := parsePayload[OrderPayload](env)
		if err != nil {
			return nil, err
		}
		return &OrderCancelled{Meta: metaFromEnvelope(env), Data: data}, nil
	default:
		d.logger.Warn("ignoring event with unknown type", logattr.EventType(env.Type))
		return nil, nil
	}
}

type UserEventsDeserializer struct {
	logger *slog.Logger
}

func NewUserEventsDeserializer(logger *slog.Logger) UserEventsDeserializer {
	return UserEventsDeserializer{logger: logger}
}

func (d UserEventsDeserializer) Deserialize(rawEvent []byte) (eventskit.Event[UserEventsHandler], error) {
	env, err := parseEnvelope(rawEvent)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case TypeUserCreated:
		data, err := parsePayload[UserPayload](env)
		if err != nil {
			return nil, err
		}
		return &UserCreated{Meta: metaFromEnvelope(env), Data: data}, nil
	case TypeUserUpdated:
		data, err := parsePayload[UserPayload](env)
		if err != nil {
			return nil, err
		}
		return &UserUpdated{Meta: metaFromEnvelope(env), Data: data}, nil
	default:
		d.logger.Warn("ignoring event with unknown type", logattr.EventType(env.Type))
		return nil, nil
	}
}

func parseEnvelope(rawEvent []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(rawEvent, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed event envelope: %w", err)
	}
	return env, nil
}

func parsePayload[T any](env Envelope) (T, error) {
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return data, fmt.Errorf("malformed %s payload: %w", env.Type, err)
	}
	return data, nil
}
