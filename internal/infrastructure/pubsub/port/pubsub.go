package port

import "context"

// Handler receives the raw payload published on a topic. Handlers must not
// block for long; slow consumers stall delivery for their own subscription.
type Handler func(payload []byte)

// Subscription is an acquired resource. Close must be called on every exit
// path; after Close returns no further Handler invocations happen for this
// subscription. Close is safe to call more than once.
type Subscription interface {
	Close() error
}

// Bus is a minimal publish/subscribe contract. Delivery guarantee is
// at-most-once per active subscription with no cross-subscriber ordering;
// consumers needing order must sort on their own keys.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, h Handler) (Subscription, error)
	Close() error
}
