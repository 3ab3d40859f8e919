package workers

import (
	"context"
	"log/slog"
	"time"
)

// Keepaliver is satisfied by the sequencer.
type Keepaliver interface {
	Keepalive(ctx context.Context)
}

// HeartbeatWorker pushes a periodic liveness signal to every subscribed
// room. Clients that miss a few intervals know to reconnect; the
// transport layer uses the same signal to flush out stalled channels.
type HeartbeatWorker struct {
	log       *slog.Logger
	sequencer Keepaliver
	interval  time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, sequencer Keepaliver, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, sequencer: sequencer, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sequencer.Keepalive(ctx)
		}
	}
}
