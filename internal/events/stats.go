package events

const TypeStatsUpdated = "stats.updated"

type StatsUpdatedPayload struct {
	// Name is the state-store key of the refreshed rollup, e.g. "order-stats".
	Name string `json:"name"`
}

type StatsUpdated struct {
	Meta
	Data StatsUpdatedPayload
}

func NewStatsUpdated(data StatsUpdatedPayload, opts ...MetaOpt) *StatsUpdated {
	return &StatsUpdated{Meta: newMeta(TypeStatsUpdated, opts), Data: data}
}

func (e *StatsUpdated) Topic() string    { return StatsTopic }
func (e *StatsUpdated) EventMeta() *Meta { return &e.Meta }
func (e *StatsUpdated) isStatsEvent()    {}

func (e *StatsUpdated) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}
