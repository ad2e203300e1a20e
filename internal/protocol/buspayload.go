package protocol

import "encoding/json"

// Payloads carried across the fanout bus between gateway instances.

// Presence event actions.
const (
	PresenceJoin  = "join"
	PresenceLeave = "leave"
)

// PresenceEvent announces a room join or leave to remote instances.
type PresenceEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Action   string `json:"action"`
}

// NotificationEvent is a user-addressed payload published by collaborator
// services (persistence, mentions) and relayed to the user's live sessions.
type NotificationEvent struct {
	UserID  string          `json:"userId"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}
