package presence

import (
	"context"
	"log/slog"

	"github.com/mossy-p/chat-gateway/internal/metrics"
)

// LocalIndex supplies this instance's own view of a room, used when the
// shared store is unreachable. The gateway's hub implements it.
type LocalIndex interface {
	LocalMembers(room string) []string
}

// Degrading wraps a shared Store so that store failures degrade the
// deployment to single-instance presence instead of failing connection
// handling. Failures are logged and counted; they are never returned to
// the event loop.
type Degrading struct {
	store Store
	local LocalIndex
	log   *slog.Logger
}

func NewDegrading(store Store, local LocalIndex, log *slog.Logger) *Degrading {
	return &Degrading{store: store, local: local, log: log}
}

func (d *Degrading) Add(ctx context.Context, room, user string) error {
	if err := d.store.Add(ctx, room, user); err != nil {
		metrics.StoreDegradedOps.Inc()
		d.log.Warn("presence store unavailable, membership is local only", "room", room, "user", user, "error", err)
	}
	return nil
}

func (d *Degrading) Remove(ctx context.Context, room, user string) error {
	if err := d.store.Remove(ctx, room, user); err != nil {
		metrics.StoreDegradedOps.Inc()
		d.log.Warn("presence store unavailable, removal is local only", "room", room, "user", user, "error", err)
	}
	return nil
}

func (d *Degrading) Members(ctx context.Context, room string) ([]string, error) {
	members, err := d.store.Members(ctx, room)
	if err != nil {
		metrics.StoreDegradedOps.Inc()
		d.log.Warn("presence store unavailable, serving local membership", "room", room, "error", err)
		return d.local.LocalMembers(room), nil
	}
	return members, nil
}
