package queue

import "context"

// Client publishes enhancement run events to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Noop discards every message. It is used when EVENTS_BACKEND=none.
type Noop struct{}

// Send discards msg.
func (Noop) Send(ctx context.Context, msg Message) error {
	return ctx.Err()
}

// Close is a no-op.
func (Noop) Close() error {
	return nil
}

var _ Client = Noop{}
