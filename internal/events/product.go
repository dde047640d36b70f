package events

import (
	"context"

	"github.com/walletera/werrors"
)

const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"
)

type ProductPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int64   `json:"stock"`
	Sold     int64   `json:"sold"`
}

type ProductCreated struct {
	Meta
	Data ProductPayload
}

func NewProductCreated(data ProductPayload, opts ...MetaOpt) *ProductCreated {
	return &ProductCreated{Meta: newMeta(TypeProductCreated, opts), Data: data}
}

func (e *ProductCreated) Topic() string   { return ProductTopic }
func (e *ProductCreated) EventMeta() *Meta { return &e.Meta }
func (e *ProductCreated) isProductEvent() {}

func (e *ProductCreated) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *ProductCreated) Accept(ctx context.Context, handler ProductEventsHandler) werrors.WError {
	return handler.HandleProductCreated(ctx, *e)
}

type ProductUpdated struct {
	Meta
	Data ProductPayload
}

func NewProductUpdated(data ProductPayload, opts ...MetaOpt) *ProductUpdated {
	return &ProductUpdated{Meta: newMeta(TypeProductUpdated, opts), Data: data}
}

func (e *ProductUpdated) Topic() string   { return ProductTopic }
func (e *ProductUpdated) EventMeta() *Meta { return &e.Meta }
func (e *ProductUpdated) isProductEvent() {}

func (e *ProductUpdated) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *ProductUpdated) Accept(ctx context.Context, handler ProductEventsHandler) werrors.WError {
	return handler.HandleProductUpdated(ctx, *e)
}

type ProductDeleted struct {
	Meta
	Data ProductPayload
}

func NewProductDeleted(data ProductPayload, opts ...MetaOpt) *ProductDeleted {
	return &ProductDeleted{Meta: newMeta(TypeProductDeleted, opts), Data: data}
}

func (e *ProductDeleted) Topic() string   { return ProductTopic }
func (e *ProductDeleted) EventMeta() *Meta { return &e.Meta }
func (e *ProductDeleted) isProductEvent() {}

func (e *ProductDeleted) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *ProductDeleted) Accept(ctx context.Context, handler ProductEventsHandler) werrors.WError {
	return handler.HandleProductDeleted(ctx, *e)
}
