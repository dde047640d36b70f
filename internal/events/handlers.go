package events

import (
	"context"

	"github.com/walletera/werrors"
)

// Visitor interfaces implemented by the domain handlers. The deserializers
// guarantee a consumed event reaches exactly one of these methods.

type ProductEventsHandler interface {
	HandleProductCreated(ctx context.Context, event ProductCreated) werrors.WError
	HandleProductUpdated(ctx context.Context, event ProductUpdated) werrors.WError
	HandleProductDeleted(ctx context.Context, event ProductDeleted) werrors.WError
}

type OrderEventsHandler interface {
	HandleOrderCreated(ctx context.Context, event OrderCreated) werrors.WError
	HandleOrderCompleted(ctx context.Context, event OrderCompleted) werrors.WError
	HandleOrderCancelled(ctx context.Context, event OrderCancelled) werrors.WError
}

type UserEventsHandler interface {
	HandleUserCreated(ctx context.Context, event UserCreated) werrors.WError
	HandleUserUpdated(ctx context.Context, event UserUpdated) werrors.WError
}
