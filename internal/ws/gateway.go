package ws

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chatlink-service/internal/observability"
)

// TokenVerifier validates a bearer token and yields the user id it was
// issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Gateway handles the websocket handshake and owns the read loop of
// every connection.
type Gateway struct {
	registry *Registry
	router   *Router
	relay    *WatchRelay
	verifier TokenVerifier
}

// NewGateway constructs a Gateway.
func NewGateway(registry *Registry, router *Router, relay *WatchRelay, verifier TokenVerifier) *Gateway {
	return &Gateway{registry: registry, router: router, relay: relay, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers it. A connection without
// a user_id parameter is kept as an unregistered observer: it receives
// broadcast events only, never presence-targeted ones.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chatlink-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var userID int64
	registered := false
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
			if token != "" {
				token = "Bearer " + token
			}
		}
		tokenUserID, err := g.validateToken(token)
		if err != nil || tokenUserID != parsed {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID = parsed
		registered = true
	}

	rawConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	conn := NewConn(info.ConnID, rawConn)

	if registered {
		g.registry.Register(userID, conn)
		g.router.BroadcastPresence()
	} else {
		g.registry.Add(conn)
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	g.publishConnEvent(ctx, "ws_connect", info, "")

	go g.readLoop(ctx, conn, info, registered)
}

func (g *Gateway) readLoop(ctx context.Context, conn Conn, info ConnInfo, registered bool) {
	raw := conn.(*wsConn).conn
	var closeReason string
	defer func() {
		g.registry.Unregister(conn.ID())
		if registered {
			g.router.BroadcastPresence()
		}
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		g.publishConnEvent(ctx, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				g.publishConnEvent(ctx, "ws_error", info, closeReason)
			}
			return
		}

		var frame Frame
		if err := decodeFrame(data, &frame); err != nil {
			continue
		}
		g.relay.Handle(frame)
	}
}

func (g *Gateway) validateToken(header string) (int64, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return g.verifier.Verify(parts[1])
	}
	return 0, fmt.Errorf("invalid token")
}

func (g *Gateway) publishConnEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	_ = observability.PublishEvent(ctx, "ws_events.connections", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
