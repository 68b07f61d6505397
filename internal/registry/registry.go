package registry

import (
	"sync"

	"codesync/internal/models"
)

// Registry is the source of truth for which connections are in which
// room under which username. Records are indexed by socket id; a
// secondary slice preserves join order for room snapshots. It is the
// only shared mutable state in the relay and every access goes through
// its lock.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*models.User
	order []string
}

func New() *Registry {
	return &Registry{users: make(map[string]*models.User)}
}

// ListByRoom returns the participants of a room in join order.
func (r *Registry) ListByRoom(roomID string) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0)
	for _, id := range r.order {
		if u, ok := r.users[id]; ok && u.RoomID == roomID {
			out = append(out, *u)
		}
	}
	return out
}

// FindByConnection looks up the participant for a socket id. A missing
// id is a normal outcome after a disconnect race; callers check ok and
// no-op.
func (r *Registry) FindByConnection(socketID string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[socketID]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// UsernameTaken reports whether a display name is already registered in
// a room. Uniqueness is scoped per room and the match is case-sensitive.
func (r *Registry) UsernameTaken(roomID, username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.RoomID == roomID && u.Username == username {
			return true
		}
	}
	return false
}

// Insert adds a participant. Re-inserting a socket id replaces the
// record and keeps its join-order slot; the map and the order slice
// always name the same ids.
func (r *Registry) Insert(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := u
	if _, ok := r.users[u.SocketID]; !ok {
		r.order = append(r.order, u.SocketID)
	}
	r.users[u.SocketID] = &rec
}

// UpdateStatus sets the online/offline flag; no-op if the connection is
// unknown.
func (r *Registry) UpdateStatus(socketID string, status models.UserStatus) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[socketID]
	if !ok {
		return models.User{}, false
	}
	u.Status = status
	return *u, true
}

// StartTyping marks the participant as typing at the given cursor
// offset and returns the updated record.
func (r *Registry) StartTyping(socketID string, cursorPosition int) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[socketID]
	if !ok {
		return models.User{}, false
	}
	u.Typing = true
	u.CursorPosition = cursorPosition
	return *u, true
}

// PauseTyping clears the typing flag. The last cursor offset is kept.
func (r *Registry) PauseTyping(socketID string) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[socketID]
	if !ok {
		return models.User{}, false
	}
	u.Typing = false
	return *u, true
}

// Remove deletes the record for a connection; no-op if absent.
func (r *Registry) Remove(socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[socketID]; !ok {
		return
	}
	delete(r.users, socketID)
	for i, id := range r.order {
		if id == socketID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the total number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
