package history

import (
	"context"
	"log/slog"

	"github.com/mossy-p/chat-gateway/internal/metrics"
	"github.com/mossy-p/chat-gateway/internal/protocol"
)

// Degrading serves from the shared cache and falls back to an in-memory
// ring when it is unreachable. Appends are mirrored into the ring so a
// fallback read still has this instance's recent traffic.
type Degrading struct {
	cache Cache
	ring  *Ring
	log   *slog.Logger
}

func NewDegrading(cache Cache, ring *Ring, log *slog.Logger) *Degrading {
	return &Degrading{cache: cache, ring: ring, log: log}
}

func (d *Degrading) Append(ctx context.Context, room string, msg protocol.Message) error {
	_ = d.ring.Append(ctx, room, msg)
	if err := d.cache.Append(ctx, room, msg); err != nil {
		metrics.CacheDegradedOps.Inc()
		d.log.Warn("message cache unavailable, caching in memory", "room", room, "error", err)
	}
	return nil
}

func (d *Degrading) Recent(ctx context.Context, room string) ([]protocol.Message, error) {
	messages, err := d.cache.Recent(ctx, room)
	if err != nil {
		metrics.CacheDegradedOps.Inc()
		d.log.Warn("message cache unavailable, serving in-memory history", "room", room, "error", err)
		return d.ring.Recent(ctx, room)
	}
	return messages, nil
}
