// Package gateway accepts client connections and dispatches their events
// to the presence store, the message cache, the call coordinator and the
// fanout bus. Each connection runs its own receive loop; shared state is
// reached only through non-blocking, per-key-serialized operations.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mossy-p/chat-gateway/internal/bus"
	"github.com/mossy-p/chat-gateway/internal/call"
	"github.com/mossy-p/chat-gateway/internal/history"
	"github.com/mossy-p/chat-gateway/internal/metrics"
	"github.com/mossy-p/chat-gateway/internal/presence"
	"github.com/mossy-p/chat-gateway/internal/protocol"
)

type Gateway struct {
	hub      *Hub
	presence presence.Store
	history  history.Cache
	bus      bus.Bus
	calls    *call.Coordinator
	log      *slog.Logger
	now      func() time.Time
}

func New(hub *Hub, store presence.Store, cache history.Cache, b bus.Bus, log *slog.Logger) *Gateway {
	return &Gateway{
		hub:      hub,
		presence: store,
		history:  cache,
		bus:      b,
		calls:    call.NewCoordinator(),
		log:      log,
		now:      time.Now,
	}
}

// Hub exposes the local membership index, which also serves as the
// presence store's degraded-mode fallback.
func (gw *Gateway) Hub() *Hub { return gw.hub }

// Dispatch decodes and routes one inbound frame. Validation failures are
// answered with a single error event to the sender and mutate nothing.
func (gw *Gateway) Dispatch(c *Client, raw []byte) {
	ev, err := protocol.Decode(raw)
	if err != nil {
		metrics.ValidationFailures.Inc()
		c.enqueue(protocol.NewErrorEvent(err.Error()))
		return
	}

	switch ev := ev.(type) {
	case *protocol.Ping:
		c.enqueue(protocol.NewPong())
	case *protocol.JoinRoom:
		if !gw.requireNamespace(c, NamespaceChat) {
			return
		}
		gw.joinRoom(c, ev.RoomID)
	case *protocol.LeaveRoom:
		if !gw.requireNamespace(c, NamespaceChat) {
			return
		}
		gw.leaveRoom(c, ev.RoomID, true)
	case *protocol.SendMessage:
		if !gw.requireNamespace(c, NamespaceChat) {
			return
		}
		gw.sendMessage(c, ev)
	case *protocol.JoinCall:
		if !gw.requireNamespace(c, NamespaceWebRTC) {
			return
		}
		gw.joinCall(c, ev.RoomID)
	case *protocol.Signal:
		if !gw.requireNamespace(c, NamespaceWebRTC) {
			return
		}
		gw.signal(c, ev)
	case *protocol.LeaveCall:
		if !gw.requireNamespace(c, NamespaceWebRTC) {
			return
		}
		gw.leaveCall(c, ev.RoomID, true)
	}
}

func (gw *Gateway) requireNamespace(c *Client, namespace string) bool {
	if c.Namespace != namespace {
		metrics.ValidationFailures.Inc()
		c.enqueue(protocol.NewErrorEvent("event not supported on this channel"))
		return false
	}
	return true
}

func (gw *Gateway) joinRoom(c *Client, room string) {
	ctx := context.Background()
	identity := c.Identity

	wasNew := gw.hub.Add(roomKey(NamespaceChat, room), c)

	// Register (or refresh) shared presence. Failures degrade to local
	// membership inside the store wrapper.
	gw.presence.Add(ctx, room, identity.UserID)

	// The joiner alone receives the room's recent history.
	recent, err := gw.history.Recent(ctx, room)
	if err != nil {
		gw.log.Warn("history read failed", "room", room, "error", err)
	}
	if recent == nil {
		recent = []protocol.Message{}
	}
	c.enqueue(protocol.Encode(protocol.CachedMessages{
		Type:     protocol.TypeCachedMessages,
		RoomID:   room,
		Messages: recent,
	}))

	members, err := gw.presence.Members(ctx, room)
	if err != nil {
		members = gw.hub.LocalMembers(room)
	}
	c.enqueue(protocol.Encode(protocol.RoomUsers{
		Type:   protocol.TypeRoomUsers,
		RoomID: room,
		Users:  withUser(members, identity.UserID),
	}))

	if !wasNew {
		return
	}

	joined := protocol.Encode(protocol.UserJoined{
		Type:     protocol.TypeUserJoined,
		RoomID:   room,
		UserID:   identity.UserID,
		Username: identity.Username,
	})
	gw.hub.Broadcast(roomKey(NamespaceChat, room), joined, c)
	gw.publishPresence(room, identity.UserID, identity.Username, protocol.PresenceJoin)

	gw.log.Info("joined room", "user", identity.UserID, "room", room)
}

// leaveRoom handles both an explicit leave_room and the per-room part of
// disconnect cleanup. An event for a room the client never joined is a
// silent no-op.
func (gw *Gateway) leaveRoom(c *Client, room string, removeFromHub bool) {
	if removeFromHub && !gw.hub.Remove(roomKey(NamespaceChat, room), c) {
		return
	}

	identity := c.Identity

	// The user may hold other connections into the same room on this
	// instance; presence and notifications go out only when the last one
	// is gone.
	if gw.hub.UserInRoom(roomKey(NamespaceChat, room), identity.UserID) {
		return
	}

	gw.presence.Remove(context.Background(), room, identity.UserID)

	left := protocol.Encode(protocol.UserLeft{
		Type:   protocol.TypeUserLeft,
		RoomID: room,
		UserID: identity.UserID,
	})
	gw.hub.Broadcast(roomKey(NamespaceChat, room), left, c)
	gw.publishPresence(room, identity.UserID, identity.Username, protocol.PresenceLeave)

	gw.log.Info("left room", "user", identity.UserID, "room", room)
}

func (gw *Gateway) sendMessage(c *Client, ev *protocol.SendMessage) {
	msg := protocol.Message{
		RoomID:    ev.RoomID,
		UserID:    c.Identity.UserID,
		Username:  c.Identity.Username,
		Content:   ev.Content,
		Timestamp: protocol.Timestamp(gw.now()),
	}
	metrics.MessagesSent.Inc()

	gw.history.Append(context.Background(), ev.RoomID, msg)

	data, err := json.Marshal(msg)
	if err == nil {
		gw.bus.Publish(bus.TopicMessages, ev.RoomID, data)
	}

	gw.deliverMessage(msg, nil)
}

// deliverMessage fans a chat message out to the room's locally attached
// clients, including the sender.
func (gw *Gateway) deliverMessage(msg protocol.Message, except *Client) {
	frame := protocol.Encode(protocol.NewMessage{Type: protocol.TypeNewMessage, Message: msg})
	n := gw.hub.Broadcast(roomKey(NamespaceChat, msg.RoomID), frame, except)
	metrics.MessagesDelivered.Add(float64(n))
}

func (gw *Gateway) joinCall(c *Client, room string) {
	identity := c.Identity

	// Pre-join roster: empty when the joiner starts the call.
	roster := gw.calls.Join(room, identity.UserID)
	gw.hub.Add(roomKey(NamespaceWebRTC, room), c)

	c.enqueue(protocol.Encode(protocol.UsersInCall{
		Type:   protocol.TypeUsersInCall,
		RoomID: room,
		Users:  roster,
	}))

	if len(roster) == 0 {
		return
	}

	joined := protocol.Encode(protocol.UserJoinedCall{
		Type:      protocol.TypeUserJoinedCall,
		RoomID:    room,
		UserID:    identity.UserID,
		Username:  identity.Username,
		Timestamp: protocol.Timestamp(gw.now()),
	})
	gw.hub.Broadcast(roomKey(NamespaceWebRTC, room), joined, c)

	gw.log.Info("joined call", "user", identity.UserID, "room", room)
}

// signal relays an opaque payload to the other call participants. The
// payload is broadcast to the room; unicast to a target peer is a known
// open question in the protocol.
func (gw *Gateway) signal(c *Client, ev *protocol.Signal) {
	if !gw.calls.InCall(ev.RoomID, c.Identity.UserID) {
		return
	}

	frame := protocol.Encode(protocol.SignalOut{
		Type:      protocol.TypeSignal,
		RoomID:    ev.RoomID,
		UserID:    c.Identity.UserID,
		Username:  c.Identity.Username,
		Signal:    ev.Payload,
		Timestamp: protocol.Timestamp(gw.now()),
	})
	gw.hub.Broadcast(roomKey(NamespaceWebRTC, ev.RoomID), frame, c)
	metrics.SignalsRelayed.Inc()
}

func (gw *Gateway) leaveCall(c *Client, room string, removeFromHub bool) {
	if removeFromHub {
		gw.hub.Remove(roomKey(NamespaceWebRTC, room), c)
	}

	// The user may hold the call open through another connection on this
	// instance; the roster entry and the leave notification belong to the
	// last one out.
	if gw.hub.UserInRoom(roomKey(NamespaceWebRTC, room), c.Identity.UserID) {
		return
	}

	if !gw.calls.Leave(room, c.Identity.UserID) {
		return
	}

	left := protocol.Encode(protocol.UserLeftCall{
		Type:      protocol.TypeUserLeftCall,
		RoomID:    room,
		UserID:    c.Identity.UserID,
		Timestamp: protocol.Timestamp(gw.now()),
	})
	gw.hub.Broadcast(roomKey(NamespaceWebRTC, room), left, c)

	gw.log.Info("left call", "user", c.Identity.UserID, "room", room)
}

// disconnect performs the equivalent of leave_room/leave_call for every
// room and call the session was part of. The client's closeOnce guarantees
// it runs exactly once, so each remaining member sees exactly one leave
// notification.
func (gw *Gateway) disconnect(c *Client) {
	keys := gw.hub.RemoveClient(c)
	for _, key := range keys {
		switch namespace, room := splitRoomKey(key); namespace {
		case NamespaceChat:
			gw.leaveRoom(c, room, false)
		case NamespaceWebRTC:
			gw.leaveCall(c, room, false)
		}
	}
	metrics.Disconnects.WithLabelValues(c.Namespace).Inc()
	gw.log.Info("disconnected", "conn", c.ID, "user", c.Identity.UserID)
}

func (gw *Gateway) publishPresence(room, userID, username, action string) {
	data, err := json.Marshal(protocol.PresenceEvent{
		RoomID:   room,
		UserID:   userID,
		Username: username,
		Action:   action,
	})
	if err != nil {
		return
	}
	gw.bus.Publish(bus.TopicPresence, room, data)
}

func splitRoomKey(key string) (namespace, room string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return "", key
}

func withUser(members []string, userID string) []string {
	for _, m := range members {
		if m == userID {
			return members
		}
	}
	return append(members, userID)
}
