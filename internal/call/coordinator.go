// Package call tracks active call rosters. A call session exists only
// while it has participants and is deleted the instant its roster empties.
// The registry covers locally connected participants; it is exact in a
// single-instance deployment and a partial view otherwise.
package call

import "sync"

// Coordinator is the explicitly owned registry of call sessions, keyed by
// room id. All roster mutation goes through its lock, so concurrent
// join/leave on the same room never lose updates.
type Coordinator struct {
	mu    sync.Mutex
	rooms map[string]map[string]bool // room -> participant user ids
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		rooms: make(map[string]map[string]bool),
	}
}

// Join adds the user to the room's roster and returns the roster as it was
// before the join. An empty result means the joiner started the call.
func (c *Coordinator) Join(room, user string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := make([]string, 0, len(c.rooms[room]))
	for uid := range c.rooms[room] {
		if uid != user {
			existing = append(existing, uid)
		}
	}

	if c.rooms[room] == nil {
		c.rooms[room] = make(map[string]bool)
	}
	c.rooms[room][user] = true

	return existing
}

// Leave removes the user from the room's roster, deleting the session when
// it empties. It reports whether the user was actually a participant, so an
// event referencing an untracked call stays a silent no-op.
func (c *Coordinator) Leave(room, user string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leaveLocked(room, user)
}

func (c *Coordinator) leaveLocked(room, user string) bool {
	participants, ok := c.rooms[room]
	if !ok || !participants[user] {
		return false
	}
	delete(participants, user)
	if len(participants) == 0 {
		delete(c.rooms, room)
	}
	return true
}

// Participants returns the current roster, or nil for an untracked room.
func (c *Coordinator) Participants(room string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	participants := c.rooms[room]
	if len(participants) == 0 {
		return nil
	}
	result := make([]string, 0, len(participants))
	for uid := range participants {
		result = append(result, uid)
	}
	return result
}

// InCall reports whether the user is a participant of the room's call.
func (c *Coordinator) InCall(room, user string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[room][user]
}
