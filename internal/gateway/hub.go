package gateway

import "sync"

// roomKey scopes a room id to its namespace so chat rooms and call rooms
// with the same id never share broadcasts.
func roomKey(namespace, room string) string {
	return namespace + ":" + room
}

// Hub is this instance's index of locally attached connections: which
// clients sit in which namespaced rooms, and which connections belong to
// which user. It is purely local state; the presence store holds the
// cross-instance truth.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Client]bool
	clientRooms map[*Client]map[string]bool
	users       map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]bool),
		users:       make(map[string]map[*Client]bool),
	}
}

// Register indexes a new connection by user id.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.Identity.UserID] == nil {
		h.users[c.Identity.UserID] = make(map[*Client]bool)
	}
	h.users[c.Identity.UserID][c] = true
}

// Add puts a client in a room and reports whether it was newly added.
func (h *Hub) Add(key string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[key][c] {
		return false
	}
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Client]bool)
	}
	h.rooms[key][c] = true
	if h.clientRooms[c] == nil {
		h.clientRooms[c] = make(map[string]bool)
	}
	h.clientRooms[c][key] = true
	return true
}

// Remove takes a client out of a room and reports whether it was a member.
func (h *Hub) Remove(key string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(key, c)
}

func (h *Hub) removeLocked(key string, c *Client) bool {
	members, ok := h.rooms[key]
	if !ok || !members[c] {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, key)
	}
	if rooms, ok := h.clientRooms[c]; ok {
		delete(rooms, key)
		if len(rooms) == 0 {
			delete(h.clientRooms, c)
		}
	}
	return true
}

// RemoveClient drops a connection from every index and returns the room
// keys it was in, for disconnect cleanup.
func (h *Hub) RemoveClient(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	keys := make([]string, 0, len(h.clientRooms[c]))
	for key := range h.clientRooms[c] {
		keys = append(keys, key)
	}
	for _, key := range keys {
		h.removeLocked(key, c)
	}

	if conns, ok := h.users[c.Identity.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.Identity.UserID)
		}
	}
	return keys
}

// Broadcast sends a frame to every client in the room except one, and
// returns how many clients it reached.
func (h *Hub) Broadcast(key string, data []byte, except *Client) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[key]))
	for c := range h.rooms[key] {
		if c != except {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.enqueue(data)
	}
	return len(clients)
}

// SendToUser delivers a frame to every connection the user has on this
// instance.
func (h *Hub) SendToUser(userID string, data []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.enqueue(data)
	}
}

// LocalMembers returns the distinct user ids locally joined to a chat
// room. It backs the presence store's degraded mode.
func (h *Hub) LocalMembers(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	for c := range h.rooms[roomKey(NamespaceChat, room)] {
		seen[c.Identity.UserID] = true
	}
	members := make([]string, 0, len(seen))
	for uid := range seen {
		members = append(members, uid)
	}
	return members
}

// UserInRoom reports whether any of the user's local connections is still
// joined to the namespaced room.
func (h *Hub) UserInRoom(key, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[key] {
		if c.Identity.UserID == userID {
			return true
		}
	}
	return false
}
