package events

const (
	TypeMarketingPointsEarned      = "marketing.points_earned"
	TypeMarketingCampaignTriggered = "marketing.campaign_triggered"
)

type PointsEarnedPayload struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
	Points  int64  `json:"points"`
	Balance int64  `json:"balance"`
}

// PointsEarned feeds the loyalty campaigns downstream; it is publish-only
// within the back office.
type PointsEarned struct {
	Meta
	Data PointsEarnedPayload
}

func NewPointsEarned(data PointsEarnedPayload, opts ...MetaOpt) *PointsEarned {
	return &PointsEarned{Meta: newMeta(TypeMarketingPointsEarned, opts), Data: data}
}

func (e *PointsEarned) Topic() string     { return MarketingTopic }
func (e *PointsEarned) EventMeta() *Meta  { return &e.Meta }
func (e *PointsEarned) isMarketingEvent() {}

func (e *PointsEarned) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

type CampaignPayload struct {
	CampaignID string `json:"campaignId"`
	Name       string `json:"name"`
	Audience   string `json:"audience"`
}

type CampaignTriggered struct {
	Meta
	Data CampaignPayload
}

func NewCampaignTriggered(data CampaignPayload, opts ...MetaOpt) *CampaignTriggered {
	return &CampaignTriggered{Meta: newMeta(TypeMarketingCampaignTriggered, opts), Data: data}
}

func (e *CampaignTriggered) Topic() string     { return MarketingTopic }
func (e *CampaignTriggered) EventMeta() *Meta  { return &e.Meta }
func (e *CampaignTriggered) isMarketingEvent() {}

func (e *CampaignTriggered) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}
