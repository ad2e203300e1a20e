package protocol

import (
	"encoding/json"
	"time"
)

// Outbound event type tags.
const (
	TypeCachedMessages = "cached_messages"
	TypeNewMessage     = "new_message"
	TypeUserJoined     = "user_joined"
	TypeUserLeft       = "user_left"
	TypeRoomUsers      = "room_users"
	TypeUsersInCall    = "users_in_call"
	TypeUserJoinedCall = "user_joined_call"
	TypeUserLeftCall   = "user_left_call"
	TypeNotification   = "notification"
	TypeError          = "error"
	TypePong           = "pong"
)

// Message is a chat message as cached and relayed. Timestamp is RFC3339,
// stamped at relay time.
type Message struct {
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// CachedMessages delivers a room's recent history to a joining client,
// oldest first.
type CachedMessages struct {
	Type     string    `json:"type"`
	RoomID   string    `json:"roomId"`
	Messages []Message `json:"messages"`
}

type NewMessage struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

type UserJoined struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type UserLeft struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// RoomUsers is the authoritative membership snapshot sent to a client after
// it joins a room.
type RoomUsers struct {
	Type   string   `json:"type"`
	RoomID string   `json:"roomId"`
	Users  []string `json:"users"`
}

// UsersInCall is the roster reply sent to a client joining a call.
type UsersInCall struct {
	Type   string   `json:"type"`
	RoomID string   `json:"roomId"`
	Users  []string `json:"users"`
}

type UserJoinedCall struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

type UserLeftCall struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
}

// SignalOut relays an opaque signaling payload to call participants.
type SignalOut struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId"`
	UserID    string          `json:"userId"`
	Username  string          `json:"username"`
	Signal    json.RawMessage `json:"signal"`
	Timestamp string          `json:"timestamp"`
}

// Notification is a user-addressed event relayed from the notifications
// topic.
type Notification struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type Pong struct {
	Type string `json:"type"`
}

// Timestamp formats a relay time the way clients expect.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Encode marshals an outbound event for the wire. Outbound events are
// plain structs; marshaling them cannot fail.
func Encode(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

func NewErrorEvent(msg string) []byte {
	return Encode(ErrorEvent{Type: TypeError, Error: msg})
}

func NewPong() []byte {
	return Encode(Pong{Type: TypePong})
}
