package events

import (
	eventskit "github.com/walletera/eventskit/events"
)

// Publishable is what the publisher accepts: broker-serializable event data
// plus the family topic it belongs to. EventMeta exposes the envelope
// fields for stamping; once published the event must not be modified.
type Publishable interface {
	eventskit.EventData

	Topic() string
	EventMeta() *Meta
}

// One closed interface per family so publish call sites stay typed.
type (
	ProductEvent interface {
		Publishable
		isProductEvent()
	}

	OrderEvent interface {
		Publishable
		isOrderEvent()
	}

	UserEvent interface {
		Publishable
		isUserEvent()
	}

	MarketingEvent interface {
		Publishable
		isMarketingEvent()
	}

	NotificationEvent interface {
		Publishable
		isNotificationEvent()
	}

	StatsEvent interface {
		Publishable
		isStatsEvent()
	}
)
