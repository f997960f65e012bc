package ws

import (
	"log"

	"chatlink-service/internal/models"
	"chatlink-service/internal/observability"
)

// Router resolves logical user ids to live connections and emits named
// events to them. Delivery is fire-and-forget: an offline recipient is
// silently skipped, a failed write closes and evicts the connection,
// and neither case surfaces an error to the caller.
type Router struct {
	registry *Registry
}

// NewRouter constructs a Router over a registry.
func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// ToUser emits one event to the user's live connection, if any.
func (rt *Router) ToUser(userID int64, event string, payload any) {
	conn, ok := rt.registry.Lookup(userID)
	if !ok {
		observability.IncRoutedEvent(event, "dropped")
		return
	}
	rt.send(conn, event, payload)
}

// ToUsers routes to each user independently, continuing past any
// individual absence.
func (rt *Router) ToUsers(userIDs []int64, event string, payload any) {
	for _, id := range userIDs {
		rt.ToUser(id, event, payload)
	}
}

// ToAll emits to every live connection, observers included.
func (rt *Router) ToAll(event string, payload any) {
	for _, conn := range rt.registry.Conns() {
		rt.send(conn, event, payload)
	}
}

// BroadcastPresence sends the current online-user snapshot to every
// live connection. Callers invoke it strictly after the registry
// mutation so the snapshot reflects the triggering event.
func (rt *Router) BroadcastPresence() {
	rt.ToAll(models.EventOnlineUsers, rt.registry.OnlineUserIDs())
}

func (rt *Router) send(conn Conn, event string, payload any) {
	if err := conn.Send(event, payload); err != nil {
		log.Printf("websocket write error: %v", err)
		conn.Close()
		rt.registry.Unregister(conn.ID())
		observability.IncRoutedEvent(event, "failed")
		return
	}
	observability.IncRoutedEvent(event, "sent")
}
