package audit

import (
	"context"
	"log/slog"
	"time"

	"buslink/internal/platform/metrics"
	"buslink/pkg/requestcontext"
)

// Worker decouples request handling from audit persistence. Record never
// blocks: when the buffer is full the event is dropped, counted, and logged.
// Audit here is best-effort observability, not a compliance ledger.
type Worker struct {
	publisher *Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	events chan Event
	done   chan struct{}
}

func NewWorker(publisher *Publisher, logger *slog.Logger, m *metrics.Metrics, bufferSize int) *Worker {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Worker{
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		events:    make(chan Event, bufferSize),
		done:      make(chan struct{}),
	}
}

// Record queues an event for persistence, filling context-derived fields
// first since the request context dies with the request.
func (w *Worker) Record(ctx context.Context, event Event) {
	event = w.enrich(ctx, event)
	select {
	case w.events <- event:
	default:
		w.metrics.IncAuditDropped()
		w.logger.Warn("audit buffer full, dropping event", "action", event.Action)
	}
}

func (w *Worker) enrich(ctx context.Context, event Event) Event {
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
	return event
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case event := <-w.events:
			w.append(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-w.events:
					w.append(event)
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) append(event Event) {
	// Detached context: the originating request is long gone.
	if err := w.publisher.Emit(context.Background(), event); err != nil {
		w.logger.Error("failed to persist audit event", "action", event.Action, "error", err)
	}
}

// Wait blocks until Run has returned. Call after cancelling Run's context.
func (w *Worker) Wait() {
	<-w.done
}
