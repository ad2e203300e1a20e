package bus_test

import (
	"testing"

	"github.com/mossy-p/chat-gateway/internal/bus"
)

func TestLocalBus_DeliversToSubscribers(t *testing.T) {
	b := bus.NewLocalBus()

	var gotKey string
	var gotEnv bus.Envelope
	if err := b.Subscribe(bus.TopicMessages, func(key string, env bus.Envelope) {
		gotKey = key
		gotEnv = env
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	b.Publish(bus.TopicMessages, "general", []byte(`{"content":"hi"}`))

	if gotKey != "general" {
		t.Errorf("key = %q, want %q", gotKey, "general")
	}
	if string(gotEnv.Data) != `{"content":"hi"}` {
		t.Errorf("data = %s, want original payload", gotEnv.Data)
	}
	if gotEnv.Origin != b.Origin() {
		t.Errorf("origin = %q, want bus origin %q", gotEnv.Origin, b.Origin())
	}
}

func TestLocalBus_TopicsAreIsolated(t *testing.T) {
	b := bus.NewLocalBus()

	delivered := 0
	b.Subscribe(bus.TopicPresence, func(string, bus.Envelope) { delivered++ })

	b.Publish(bus.TopicMessages, "general", []byte(`{}`))
	if delivered != 0 {
		t.Errorf("presence handler saw %d messages-topic payloads, want 0", delivered)
	}

	b.Publish(bus.TopicPresence, "general", []byte(`{}`))
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

func TestLocalBus_AllSubscribersReceive(t *testing.T) {
	b := bus.NewLocalBus()

	first, second := 0, 0
	b.Subscribe(bus.TopicMessages, func(string, bus.Envelope) { first++ })
	b.Subscribe(bus.TopicMessages, func(string, bus.Envelope) { second++ })

	b.Publish(bus.TopicMessages, "general", []byte(`{}`))

	if first != 1 || second != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", first, second)
	}
}
