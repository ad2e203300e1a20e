package presence

import (
	"context"
	"sort"
	"testing"
	"time"
)

func TestMemoryStore_AddIsIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	s.Add(ctx, "general", "alice")
	s.Add(ctx, "general", "alice")
	s.Add(ctx, "general", "bob")

	members, err := s.Members(ctx, "general")
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	sort.Strings(members)
	if len(members) != 2 || members[0] != "alice" || members[1] != "bob" {
		t.Errorf("Members() = %v, want [alice bob]", members)
	}
}

func TestMemoryStore_RemoveIsIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	s.Add(ctx, "general", "alice")
	if err := s.Remove(ctx, "general", "alice"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "general", "alice"); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "nowhere", "alice"); err != nil {
		t.Fatalf("Remove() on unknown room error = %v", err)
	}

	members, _ := s.Members(ctx, "general")
	if len(members) != 0 {
		t.Errorf("Members() = %v, want empty", members)
	}
}

func TestMemoryStore_EntriesExpire(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Add(ctx, "general", "alice")
	now = now.Add(30 * time.Minute)
	s.Add(ctx, "general", "alice") // refresh
	s.Add(ctx, "general", "bob")

	now = now.Add(45 * time.Minute)
	members, _ := s.Members(ctx, "general")
	sort.Strings(members)
	if len(members) != 2 {
		t.Fatalf("Members() = %v, want both before expiry", members)
	}

	now = now.Add(30 * time.Minute)
	members, _ = s.Members(ctx, "general")
	if len(members) != 0 {
		t.Errorf("Members() = %v, want empty after TTL", members)
	}
}
