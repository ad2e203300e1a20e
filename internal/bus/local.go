package bus

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/mossy-p/chat-gateway/internal/metrics"
)

// LocalBus is the in-process fallback when the shared transport is
// unreachable: the deployment degrades to single-instance fanout without
// blocking local delivery. It mirrors the shared bus contract, including
// redelivery of the instance's own publishes.
type LocalBus struct {
	origin string

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{
		origin:   uuid.New().String(),
		handlers: make(map[string][]Handler),
	}
}

func (b *LocalBus) Origin() string { return b.origin }

func (b *LocalBus) Publish(topic, key string, data []byte) {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()

	env := Envelope{Origin: b.origin, Data: json.RawMessage(data)}
	for _, h := range handlers {
		h(key, env)
	}
	metrics.BusPublishes.WithLabelValues(topic).Inc()
}

func (b *LocalBus) Subscribe(topic string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
	return nil
}

func (b *LocalBus) Close() {}
