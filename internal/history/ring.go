package history

import (
	"context"
	"sync"
	"time"

	"github.com/mossy-p/chat-gateway/internal/protocol"
)

// Ring is the in-memory cache used when the shared cache is unreachable.
// Each room holds at most size messages, oldest evicted first; a room's
// buffer expires ttl after its last write.
type Ring struct {
	mu    sync.Mutex
	size  int
	ttl   time.Duration
	rooms map[string]*roomBuffer
	now   func() time.Time
}

type roomBuffer struct {
	messages []protocol.Message
	expires  time.Time
}

func NewRing(size int, ttl time.Duration) *Ring {
	return &Ring{
		size:  size,
		ttl:   ttl,
		rooms: make(map[string]*roomBuffer),
		now:   time.Now,
	}
}

func (r *Ring) Append(_ context.Context, room string, msg protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := r.rooms[room]
	if buf == nil || buf.expires.Before(r.now()) {
		buf = &roomBuffer{}
		r.rooms[room] = buf
	}
	buf.messages = append(buf.messages, msg)
	if len(buf.messages) > r.size {
		buf.messages = buf.messages[len(buf.messages)-r.size:]
	}
	buf.expires = r.now().Add(r.ttl)
	return nil
}

func (r *Ring) Recent(_ context.Context, room string) ([]protocol.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := r.rooms[room]
	if buf == nil {
		return nil, nil
	}
	if buf.expires.Before(r.now()) {
		delete(r.rooms, room)
		return nil, nil
	}
	out := make([]protocol.Message, len(buf.messages))
	copy(out, buf.messages)
	return out, nil
}
