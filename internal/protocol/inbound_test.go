package protocol_test

import (
	"errors"
	"testing"

	"github.com/mossy-p/chat-gateway/internal/protocol"
)

func TestDecode_JoinRoom(t *testing.T) {
	ev, err := protocol.Decode([]byte(`{"type":"join_room","roomId":"general","username":"alice"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	join, ok := ev.(*protocol.JoinRoom)
	if !ok {
		t.Fatalf("Decode() = %T, want *JoinRoom", ev)
	}
	if join.RoomID != "general" {
		t.Errorf("RoomID = %q, want %q", join.RoomID, "general")
	}
	if join.Username != "alice" {
		t.Errorf("Username = %q, want %q", join.Username, "alice")
	}
}

func TestDecode_SendMessage(t *testing.T) {
	ev, err := protocol.Decode([]byte(`{"type":"send_message","roomId":"general","content":"hi there"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	msg, ok := ev.(*protocol.SendMessage)
	if !ok {
		t.Fatalf("Decode() = %T, want *SendMessage", ev)
	}
	if msg.Content != "hi there" {
		t.Errorf("Content = %q, want %q", msg.Content, "hi there")
	}
}

func TestDecode_SendMessage_RejectsEmptyContent(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", `{"type":"send_message","roomId":"general","content":""}`},
		{"whitespace", `{"type":"send_message","roomId":"general","content":"   \t\n"}`},
		{"missing", `{"type":"send_message","roomId":"general"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := protocol.Decode([]byte(tc.raw))
			if ev != nil {
				t.Errorf("Decode() returned event %T, want nil", ev)
			}
			var verr *protocol.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Decode() error = %v, want *ValidationError", err)
			}
			if verr.Field != "content" {
				t.Errorf("Field = %q, want %q", verr.Field, "content")
			}
		})
	}
}

func TestDecode_Signal(t *testing.T) {
	ev, err := protocol.Decode([]byte(`{"type":"signal","roomId":"call-1","signal":{"sdp":"offer"}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	sig, ok := ev.(*protocol.Signal)
	if !ok {
		t.Fatalf("Decode() = %T, want *Signal", ev)
	}
	if string(sig.Payload) != `{"sdp":"offer"}` {
		t.Errorf("Payload = %s, want untouched raw payload", sig.Payload)
	}
}

func TestDecode_Signal_RequiresPayload(t *testing.T) {
	for _, raw := range []string{
		`{"type":"signal","roomId":"call-1"}`,
		`{"type":"signal","roomId":"call-1","signal":null}`,
	} {
		if _, err := protocol.Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%s) error = nil, want validation error", raw)
		}
	}
}

func TestDecode_MissingRoomID(t *testing.T) {
	for _, typ := range []string{"join_room", "leave_room", "send_message", "join_call", "signal", "leave_call"} {
		raw := `{"type":"` + typ + `","username":"alice","content":"hi","signal":{}}`
		ev, err := protocol.Decode([]byte(raw))
		if err == nil {
			t.Errorf("Decode(%s) = %T, want roomId validation error", typ, ev)
		}
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := protocol.Decode([]byte(`{"type":"shout","roomId":"general"}`))
	var verr *protocol.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Decode() error = %v, want *ValidationError", err)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := protocol.Decode([]byte(`{"type":`)); err == nil {
		t.Fatal("Decode() error = nil, want validation error")
	}
}

func TestDecode_Ping(t *testing.T) {
	ev, err := protocol.Decode([]byte(`{"type":"ping"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, ok := ev.(*protocol.Ping); !ok {
		t.Fatalf("Decode() = %T, want *Ping", ev)
	}
}
