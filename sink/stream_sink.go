// Package sink provides delivery channel implementations consumed by the
// fan-out engine.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"escape-chat/domain/event"
	"escape-chat/errors"
)

// StreamSink bridges the fan-out engine and one long-lived connection
// (SSE or websocket). The transport handler drains Events; Consume is
// called by the sequencer.
type StreamSink struct {
	Events chan event.DomainEvent
	log    *slog.Logger
}

func NewStreamSink(log *slog.Logger, bufferSize int) *StreamSink {
	return &StreamSink{
		Events: make(chan event.DomainEvent, bufferSize),
		log:    log,
	}
}

// Consume hands the event to the connection's channel, waiting at most
// for the caller's delivery timeout when the buffer is saturated. A
// client that stopped reading produces an error, which tells the
// sequencer to drop this channel rather than stall other subscribers.
func (s *StreamSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		s.log.Debug("Backpressure on subscriber channel", "room_id", e.RoomID())
		return fmt.Errorf("%w: %v", errors.ErrSlowSubscriber, ctx.Err())
	}
}
