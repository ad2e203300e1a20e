package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mossy-p/chat-gateway/internal/protocol"
)

func msg(content string) protocol.Message {
	return protocol.Message{RoomID: "general", UserID: "u1", Username: "alice", Content: content}
}

func TestRing_CapacityAndOrder(t *testing.T) {
	ring := NewRing(100, 24*time.Hour)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		ring.Append(ctx, "general", msg(fmt.Sprintf("m%d", i)))
	}

	recent, err := ring.Recent(ctx, "general")
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 100 {
		t.Fatalf("len(Recent()) = %d, want 100", len(recent))
	}
	if recent[0].Content != "m50" {
		t.Errorf("oldest = %q, want %q", recent[0].Content, "m50")
	}
	if recent[99].Content != "m149" {
		t.Errorf("newest = %q, want %q", recent[99].Content, "m149")
	}
}

func TestRing_RoomsAreIndependent(t *testing.T) {
	ring := NewRing(100, 24*time.Hour)
	ctx := context.Background()

	ring.Append(ctx, "a", msg("in-a"))
	ring.Append(ctx, "b", msg("in-b"))

	recent, _ := ring.Recent(ctx, "a")
	if len(recent) != 1 || recent[0].Content != "in-a" {
		t.Errorf("Recent(a) = %v, want [in-a]", recent)
	}
}

func TestRing_ExpiresAfterTTL(t *testing.T) {
	ring := NewRing(100, 24*time.Hour)
	now := time.Now()
	ring.now = func() time.Time { return now }
	ctx := context.Background()

	ring.Append(ctx, "general", msg("old"))

	now = now.Add(25 * time.Hour)
	recent, err := ring.Recent(ctx, "general")
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Recent() after TTL = %v, want empty", recent)
	}
}

func TestRing_AppendRefreshesTTL(t *testing.T) {
	ring := NewRing(100, 24*time.Hour)
	now := time.Now()
	ring.now = func() time.Time { return now }
	ctx := context.Background()

	ring.Append(ctx, "general", msg("first"))
	now = now.Add(23 * time.Hour)
	ring.Append(ctx, "general", msg("second"))
	now = now.Add(23 * time.Hour)

	recent, _ := ring.Recent(ctx, "general")
	if len(recent) != 2 {
		t.Errorf("len(Recent()) = %d, want 2 (TTL refreshed by second append)", len(recent))
	}
}
