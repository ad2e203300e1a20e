// Package protocol defines the wire events exchanged with clients and the
// payloads carried across the fanout bus. Inbound frames are decoded and
// validated once here; handlers downstream only ever see typed, well-formed
// events.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound event type tags.
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeSendMessage = "send_message"
	TypeJoinCall    = "join_call"
	TypeSignal      = "signal"
	TypeLeaveCall   = "leave_call"
	TypePing        = "ping"
)

// ValidationError describes a malformed or incomplete inbound frame. It is
// reported to the sender only and never mutates state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// JoinRoom registers the sender in a chat room.
type JoinRoom struct {
	RoomID   string
	Username string
}

// LeaveRoom removes the sender from a chat room.
type LeaveRoom struct {
	RoomID string
}

// SendMessage posts a chat message to a room. Content is guaranteed
// non-empty after trimming.
type SendMessage struct {
	RoomID  string
	Content string
}

// JoinCall adds the sender to a call roster.
type JoinCall struct {
	RoomID string
}

// Signal relays an opaque WebRTC negotiation payload to the sender's call
// room. The payload is never interpreted.
type Signal struct {
	RoomID  string
	Payload json.RawMessage
}

// LeaveCall removes the sender from a call roster.
type LeaveCall struct {
	RoomID string
}

// Ping requests a pong.
type Ping struct{}

type frame struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"roomId"`
	UserID   string          `json:"userId"`
	Username string          `json:"username"`
	Content  string          `json:"content"`
	Signal   json.RawMessage `json:"signal"`
}

// rawNull reports whether a raw JSON value is absent or the null literal.
func rawNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Decode parses a single inbound frame into one of the typed events above.
// A *ValidationError is returned for unknown types and missing or malformed
// fields; no event is returned alongside an error.
func Decode(data []byte) (any, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, invalid("", "malformed JSON")
	}

	switch f.Type {
	case TypeJoinRoom:
		if f.RoomID == "" {
			return nil, invalid("roomId", "required")
		}
		if f.Username == "" {
			return nil, invalid("username", "required")
		}
		return &JoinRoom{RoomID: f.RoomID, Username: f.Username}, nil

	case TypeLeaveRoom:
		if f.RoomID == "" {
			return nil, invalid("roomId", "required")
		}
		return &LeaveRoom{RoomID: f.RoomID}, nil

	case TypeSendMessage:
		if f.RoomID == "" {
			return nil, invalid("roomId", "required")
		}
		if strings.TrimSpace(f.Content) == "" {
			return nil, invalid("content", "must not be empty")
		}
		return &SendMessage{RoomID: f.RoomID, Content: f.Content}, nil

	case TypeJoinCall:
		if f.RoomID == "" {
			return nil, invalid("roomId", "required")
		}
		return &JoinCall{RoomID: f.RoomID}, nil

	case TypeSignal:
		if f.RoomID == "" {
			return nil, invalid("roomId", "required")
		}
		if rawNull(f.Signal) {
			return nil, invalid("signal", "required")
		}
		return &Signal{RoomID: f.RoomID, Payload: f.Signal}, nil

	case TypeLeaveCall:
		if f.RoomID == "" {
			return nil, invalid("roomId", "required")
		}
		return &LeaveCall{RoomID: f.RoomID}, nil

	case TypePing:
		return &Ping{}, nil

	case "":
		return nil, invalid("type", "required")

	default:
		return nil, invalid("type", fmt.Sprintf("unknown event %q", f.Type))
	}
}
