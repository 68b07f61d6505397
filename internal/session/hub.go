package session

import (
	"sync"

	"codesync/internal/models"
)

// Hub is the delivery side of the transport. It tracks live connections
// and the room groups they subscribed to, and exposes the emit
// primitives the event router fans out through. Delivery is best-effort:
// frames to unknown connections or empty groups are dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister drops the connection and any group subscriptions left
// behind by an unclean teardown.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
	for room, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, room)
		}
	}
}

func (h *Hub) Client(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// JoinGroup subscribes a connection to a room group. Groups come into
// existence on first join and vanish once empty.
func (h *Hub) JoinGroup(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	members := h.groups[room]
	if members == nil {
		members = make(map[string]*Client)
		h.groups[room] = members
	}
	members[id] = c
}

func (h *Hub) LeaveGroup(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

// EmitToConnection delivers one frame to a single connection.
func (h *Hub) EmitToConnection(id string, frame models.WSFrame) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.Send(frame)
}

// EmitToGroupExcluding delivers a frame to every member of a room group
// except the excluded connection. The recipient set is snapshotted under
// the lock; the writes happen outside it.
func (h *Hub) EmitToGroupExcluding(room, excludedID string, frame models.WSFrame) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.groups[room]))
	for id, c := range h.groups[room] {
		if id == excludedID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Send(frame)
	}
}
