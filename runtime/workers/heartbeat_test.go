package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type countingKeepaliver struct {
	calls atomic.Int32
}

func (c *countingKeepaliver) Keepalive(ctx context.Context) {
	c.calls.Add(1)
}

func TestHeartbeatWorker_TicksUntilCanceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	keepaliver := &countingKeepaliver{}

	w := NewHeartbeatWorker(log, keepaliver, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
	req.GreaterOrEqual(keepaliver.calls.Load(), int32(3))
}
