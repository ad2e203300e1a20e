// Package bus is the fanout transport between gateway instances. Payloads
// are published to named topics partitioned by room id, so ordering holds
// per room but never across rooms. Delivery is at-least-once and includes
// the publishing instance's own messages; envelopes carry the origin
// instance id so subscribers can drop their own publishes instead of
// delivering them twice.
package bus

import "encoding/json"

// Topics carried by the bus.
const (
	TopicMessages      = "messages"
	TopicPresence      = "presence"
	TopicNotifications = "notifications"
)

// Envelope wraps every bus payload with the id of the instance that
// published it.
type Envelope struct {
	Origin string          `json:"origin"`
	Data   json.RawMessage `json:"data"`
}

// Handler receives a payload published under a topic. Key is the partition
// key the publisher used (the room id, or user id for notifications).
type Handler func(key string, env Envelope)

// Bus publishes and subscribes to topic streams shared by all gateway
// instances. Publish is fire and forget.
type Bus interface {
	Publish(topic, key string, data []byte)
	Subscribe(topic string, h Handler) error
	// Origin is this instance's id, stamped on everything it publishes.
	Origin() string
	Close()
}
