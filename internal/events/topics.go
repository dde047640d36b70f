package events

// Exchange is the single durable topic exchange all pipeline events go
// through; the per-family topic doubles as routing key and queue name.
const Exchange = "backoffice.events"

const (
	ProductTopic      = "product-events"
	OrderTopic        = "order-events"
	UserTopic         = "user-events"
	MarketingTopic    = "marketing-events"
	NotificationTopic = "notification-events"
	StatsTopic        = "stats-updates"
)

// ConsumedTopics lists the topics the back office itself subscribes to.
// Marketing, notification and stats topics are publish-only here; they are
// consumed by downstream services.
func ConsumedTopics() []string {
	return []string{ProductTopic, OrderTopic, UserTopic}
}
