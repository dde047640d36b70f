package events

const TypeNotificationSend = "notification.send"

const (
	NotificationChannelAdmin = "admin"
	NotificationChannelEmail = "email"
)

// RecipientAdmins addresses the whole back-office staff instead of a
// single user id.
const RecipientAdmins = "admins"

type NotificationPayload struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

type NotificationSend struct {
	Meta
	Data NotificationPayload
}

func NewNotificationSend(data NotificationPayload, opts ...MetaOpt) *NotificationSend {
	return &NotificationSend{Meta: newMeta(TypeNotificationSend, opts), Data: data}
}

func (e *NotificationSend) Topic() string        { return NotificationTopic }
func (e *NotificationSend) EventMeta() *Meta     { return &e.Meta }
func (e *NotificationSend) isNotificationEvent() {}

func (e *NotificationSend) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}
