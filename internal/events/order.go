package events

import (
	"context"

	"github.com/walletera/werrors"
)

const (
	TypeOrderCreated   = "order.created"
	TypeOrderCompleted = "order.completed"
	TypeOrderCancelled = "order.cancelled"
)

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderPayload struct {
	OrderID     string      `json:"orderId"`
	CustomerID  string      `json:"customerId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
}

type OrderCreated struct {
	Meta
	Data OrderPayload
}

func NewOrderCreated(data OrderPayload, opts ...MetaOpt) *OrderCreated {
	return &OrderCreated{Meta: newMeta(TypeOrderCreated, opts), Data: data}
}

func (e *OrderCreated) Topic() string    { return OrderTopic }
func (e *OrderCreated) EventMeta() *Meta { return &e.Meta }
func (e *OrderCreated) isOrderEvent()    {}

func (e *OrderCreated) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *OrderCreated) Accept(ctx context.Context, handler OrderEventsHandler) werrors.WError {
	return handler.HandleOrderCreated(ctx, *e)
}

type OrderCompleted struct {
	Meta
	Data OrderPayload
}

func NewOrderCompleted(data OrderPayload, opts ...MetaOpt) *OrderCompleted {
	return &OrderCompleted{Meta: newMeta(TypeOrderCompleted, opts), Data: data}
}

func (e *OrderCompleted) Topic() string    { return OrderTopic }
func (e *OrderCompleted) EventMeta() *Meta { return &e.Meta }
func (e *OrderCompleted) isOrderEvent()    {}

func (e *OrderCompleted) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *OrderCompleted) Accept(ctx context.Context, handler OrderEventsHandler) werrors.WError {
	return handler.HandleOrderCompleted(ctx, *e)
}

type OrderCancelled struct {
	Meta
	Data OrderPayload
}

func NewOrderCancelled(data OrderPayload, opts ...MetaOpt) *OrderCancelled {
	return &OrderCancelled{Meta: newMeta(TypeOrderCancelled, opts), Data: data}
}

func (e *OrderCancelled) Topic() string    { return OrderTopic }
func (e *OrderCancelled) EventMeta() *Meta { return &e.Meta }
func (e *OrderCancelled) isOrderEvent()    {}

func (e *OrderCancelled) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *OrderCancelled) Accept(ctx context.Context, handler OrderEventsHandler) werrors.WError {
	return handler.HandleOrderCancelled(ctx, *e)
}
