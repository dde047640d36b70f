// Package events defines the closed set of domain events moved through the
// back-office pipeline: the wire envelope, one typed event per subtype and
// per-family deserializers that validate subtypes at the boundary.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SystemUser marks events not triggered by a concrete back-office user.
const SystemUser = "system"

// Envelope is the wire shape of every published event.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	UserID        string          `json:"userId"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// Meta carries the envelope fields of a typed event. The publisher stamps
// EventID, UserID and OccurredAt right before handing the event to the
// broker; after that the event is immutable.
type Meta struct {
	EventID     uuid.UUID
	EventType   string
	UserID      string
	OccurredAt  time.Time
	Correlation string
}

func (m Meta) ID() string {
	return m.EventID.String()
}

func (m Meta) Type() string {
	return m.EventType
}

func (m Meta) AggregateVersion() uint64 {
	return 0
}

func (m Meta) CorrelationID() string {
	return m.Correlation
}

func (m Meta) DataContentType() string {
	return "application/json"
}

func (m Meta) CreatedAt() time.Time {
	return m.OccurredAt
}

type MetaOpt func(m *Meta)

// TriggeredBy records the back-office user behind the event. Events built
// without it are attributed to SystemUser at publish time.
func TriggeredBy(userID string) MetaOpt {
	return func(m *Meta) {
		m.UserID = userID
	}
}

func WithCorrelationID(correlationID string) MetaOpt {
	return func(m *Meta) {
		m.Correlation = correlationID
	}
}

func newMeta(eventType string, opts []MetaOpt) Meta {
	m := Meta{EventType: eventType}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func serialize(m Meta, data any) ([]byte, error) {
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:            m.EventID,
		Type:          m.EventType,
		UserID:        m.UserID,
		Timestamp:     m.OccurredAt,
		CorrelationID: m.Correlation,
		Data:          rawData,
	})
}

func metaFromEnvelope(env Envelope) Meta {
	return Meta{
		EventID:     env.ID,
		EventType:   env.Type,
		UserID:      env.UserID,
		OccurredAt:  env.Timestamp,
		Correlation: env.CorrelationID,
	}
}
