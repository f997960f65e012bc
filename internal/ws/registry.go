package ws

import (
	"sort"
	"sync"
)

// Registry maps logical users to at most one live connection each and
// tracks every live connection, including unidentified observers that
// only receive broadcasts.
//
// A second login for the same user silently replaces the mapping; the
// first connection stays in the live set until its own disconnect.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn  // all live connections by conn id
	users map[int64]string // userID -> conn id, last connect wins
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]Conn),
		users: make(map[int64]string),
	}
}

// Add places a connection in the live set without identity.
func (r *Registry) Add(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
}

// Register binds a user to a connection, overwriting any existing
// mapping for that user.
func (r *Registry) Register(userID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
	r.users[userID] = conn.ID()
}

// Unregister removes the connection from the live set and drops the
// user mapping only if it still points at this connection. A late
// disconnect from a replaced connection must not evict the newer one.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
	for userID, id := range r.users {
		if id == connID {
			delete(r.users, userID)
			break
		}
	}
}

// Lookup resolves a user to their live connection.
func (r *Registry) Lookup(userID int64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.users[userID]
	if !ok {
		return nil, false
	}
	conn, ok := r.conns[connID]
	return conn, ok
}

// OnlineUserIDs returns a sorted snapshot of users with a live
// connection.
func (r *Registry) OnlineUserIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.users))
	for userID := range r.users {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Conns returns a snapshot of every live connection, observers
// included.
func (r *Registry) Conns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}
