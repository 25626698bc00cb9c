// Package audit captures append-only audit events. Events flow through an
// async worker into the record store, so the trail shares the durability of
// everything else without a dedicated backend.
package audit

import (
	"context"
	"time"

	"buslink/pkg/requestcontext"
)

// Recorder is what services depend on. The worker implements it for
// production; tests can use the synchronous Publisher directly.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Sink persists one event. Append-only; there is no update or delete path.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher enriches events from the request context and hands them to a
// sink synchronously.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit fills defaults and appends the event. Enrichment pulls request id,
// device, and client IP from the context when the caller left them empty.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.DeviceName(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	return p.sink.Append(ctx, event)
}
