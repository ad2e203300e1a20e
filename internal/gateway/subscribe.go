package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/mossy-p/chat-gateway/internal/bus"
	"github.com/mossy-p/chat-gateway/internal/protocol"
)

// SubscribeBus attaches the gateway to the fanout topics. Every instance
// receives every published payload, including its own; locally originated
// envelopes are dropped because local broadcast already happened at
// publish time.
func (gw *Gateway) SubscribeBus() error {
	if err := gw.bus.Subscribe(bus.TopicMessages, gw.onBusMessage); err != nil {
		return fmt.Errorf("subscribe %s: %w", bus.TopicMessages, err)
	}
	if err := gw.bus.Subscribe(bus.TopicPresence, gw.onBusPresence); err != nil {
		return fmt.Errorf("subscribe %s: %w", bus.TopicPresence, err)
	}
	if err := gw.bus.Subscribe(bus.TopicNotifications, gw.onBusNotification); err != nil {
		return fmt.Errorf("subscribe %s: %w", bus.TopicNotifications, err)
	}
	return nil
}

func (gw *Gateway) onBusMessage(room string, env bus.Envelope) {
	if env.Origin == gw.bus.Origin() {
		return
	}
	var msg protocol.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		gw.log.Warn("dropping malformed bus message", "room", room, "error", err)
		return
	}
	gw.deliverMessage(msg, nil)
}

func (gw *Gateway) onBusPresence(room string, env bus.Envelope) {
	if env.Origin == gw.bus.Origin() {
		return
	}
	var ev protocol.PresenceEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		gw.log.Warn("dropping malformed presence event", "room", room, "error", err)
		return
	}

	var frame []byte
	switch ev.Action {
	case protocol.PresenceJoin:
		frame = protocol.Encode(protocol.UserJoined{
			Type:     protocol.TypeUserJoined,
			RoomID:   ev.RoomID,
			UserID:   ev.UserID,
			Username: ev.Username,
		})
	case protocol.PresenceLeave:
		frame = protocol.Encode(protocol.UserLeft{
			Type:   protocol.TypeUserLeft,
			RoomID: ev.RoomID,
			UserID: ev.UserID,
		})
	default:
		return
	}
	gw.hub.Broadcast(roomKey(NamespaceChat, ev.RoomID), frame, nil)
}

// onBusNotification relays user-addressed payloads published by
// collaborator services to the user's live sessions on this instance.
func (gw *Gateway) onBusNotification(user string, env bus.Envelope) {
	var ev protocol.NotificationEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		gw.log.Warn("dropping malformed notification", "user", user, "error", err)
		return
	}
	if ev.UserID == "" {
		ev.UserID = user
	}
	gw.hub.SendToUser(ev.UserID, protocol.Encode(protocol.Notification{
		Type:    protocol.TypeNotification,
		Event:   ev.Event,
		Payload: ev.Payload,
	}))
}
