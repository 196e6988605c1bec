package audit

import (
	"context"
	"log/slog"
)

// Sink receives mirrored events. The Kafka producer implements it; tests use
// an in-process fake.
type Sink interface {
	Publish(ctx context.Context, store string, event Event) error
}

type mirrorEntry struct {
	store string
	event Event
}

// Mirror fans audit events out to an external sink from a buffered channel so
// store operations never block on the broker. Mirroring is fail-open: the
// store-local log is the source of truth and a full buffer drops the mirror
// copy, never the operation.
type Mirror struct {
	sink   Sink
	inbox  chan mirrorEntry
	logger *slog.Logger
}

func NewMirror(sink Sink, buffer int, logger *slog.Logger) *Mirror {
	return &Mirror{
		sink:   sink,
		inbox:  make(chan mirrorEntry, buffer),
		logger: logger,
	}
}

// Emit queues an event for mirroring without blocking the caller.
func (m *Mirror) Emit(store string, event Event) {
	select {
	case m.inbox <- mirrorEntry{store: store, event: event}:
	default:
		m.logger.Warn("audit mirror buffer full, dropping event",
			"store", store,
			"event_id", event.ID,
			"event_type", event.Type,
		)
	}
}

// Run drains the inbox until the context is cancelled. Publish failures are
// logged and skipped; the local log already holds the event.
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case entry := <-m.inbox:
			if err := m.sink.Publish(ctx, entry.store, entry.event); err != nil {
				m.logger.Error("audit mirror publish failed",
					"store", entry.store,
					"event_id", entry.event.ID,
					"error", err,
				)
			}
		}
	}
}
