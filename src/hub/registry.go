package hub

import (
	"sync"
	"time"
)

// Socket is the hub's view of one live connection.
type Socket interface {
	// ID identifies the connection in logs and snapshots.
	ID() string
	IsOpen() bool
	// Send queues a frame without blocking and reports whether it was accepted.
	Send(data []byte) bool
	Close(code int, reason string) error
}

// Entry is one Connection Registry record.
type Entry struct {
	UserID   string
	UserName string
	Socket   Socket
	JoinedAt time.Time
}

// Registry maps a user ID to its single live socket. Iteration follows
// first-registration order; re-registering a user keeps its position.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
	now     func() time.Time
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry), now: time.Now}
}

// Register stores s for userID. A previous, different socket for the same
// user is closed gracefully and returned; the new mapping is stored even if
// that close fails.
func (r *Registry) Register(userID, userName string, s Socket, code int, reason string) (Socket, error) {
	var prev Socket
	r.mu.Lock()
	if e, ok := r.entries[userID]; ok {
		prev = e.Socket
	} else {
		r.order = append(r.order, userID)
	}
	r.entries[userID] = &Entry{UserID: userID, UserName: userName, Socket: s, JoinedAt: r.now()}
	r.mu.Unlock()

	if prev == nil || prev == s {
		return nil, nil
	}
	if !prev.IsOpen() {
		return prev, nil
	}
	return prev, prev.Close(code, reason)
}

// Unregister removes userID. It reports whether an entry existed.
func (r *Registry) Unregister(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[userID]; !ok {
		return false
	}
	delete(r.entries, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the socket registered for userID.
func (r *Registry) Get(userID string) (Socket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return e.Socket, true
}

// Lookup returns a copy of the full entry for userID.
func (r *Registry) Lookup(userID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// UsersOf returns every user ID currently mapped to s.
func (r *Registry) UsersOf(s Socket) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, id := range r.order {
		if r.entries[id].Socket == s {
			ids = append(ids, id)
		}
	}
	return ids
}

// Snapshot copies all entries in iteration order.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
