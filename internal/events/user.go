package events

import (
	"context"

	"github.com/walletera/werrors"
)

const (
	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
)

type UserPayload struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type UserCreated struct {
	Meta
	Data UserPayload
}

func NewUserCreated(data UserPayload, opts ...MetaOpt) *UserCreated {
	return &UserCreated{Meta: newMeta(TypeUserCreated, opts), Data: data}
}

func (e *UserCreated) Topic() string    { return UserTopic }
func (e *UserCreated) EventMeta() *Meta { return &e.Meta }
func (e *UserCreated) isUserEvent()     {}

func (e *UserCreated) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *UserCreated) Accept(ctx context.Context, handler UserEventsHandler) werrors.WError {
	return handler.HandleUserCreated(ctx, *e)
}

type UserUpdated struct {
	Meta
	Data UserPayload
}

func NewUserUpdated(data UserPayload, opts ...MetaOpt) *UserUpdated {
	return &UserUpdated{Meta: newMeta(TypeUserUpdated, opts), Data: data}
}

func (e *UserUpdated) Topic() string    { return UserTopic }
func (e *UserUpdated) EventMeta() *Meta { return &e.Meta }
func (e *UserUpdated) isUserEvent()     {}

func (e *UserUpdated) Serialize() ([]byte, error) {
	return serialize(e.Meta, e.Data)
}

func (e *UserUpdated) Accept(ctx context.Context, handler UserEventsHandler) werrors.WError {
	return handler.HandleUserUpdated(ctx, *e)
}
