package tasks

import (
	"context"

	"github.com/iliyamo/bus-seat-reservation/internal/queue"
)

// Publisher delivers reservation events.  Delivery is best-effort: callers
// log a failed publish and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.Event) error { return nil }
