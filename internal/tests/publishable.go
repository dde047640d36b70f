package tests

import (
	"time"

	"github.com/walletera/eventskit/events"
)

var _ events.EventData = rawPublishable{}

// rawPublishable hands a pre-serialized envelope to the broker as-is.
// The rabbitmq publish path only calls Serialize.
type rawPublishable struct {
	rawEvent []byte
}

func (p rawPublishable) ID() string { return "" }

func (p rawPublishable) Type() string { return "" }

func (p rawPublishable) AggregateVersion() uint64 { return 0 }

func (p rawPublishable) CorrelationID() string { return "" }

func (p rawPublishable) DataContentType() string { return "application/json" }

func (p rawPublishable) CreatedAt() time.Time { return time.Time{} }

func (p rawPublishable) Serialize() ([]byte, error) {
	return p.rawEvent, nil
}
