package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one live, addressable channel to a connected client.
type Conn interface {
	ID() string
	Send(event string, payload any) error
	Close() error
}

// Frame is the JSON envelope exchanged in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ConnInfo carries handshake metadata for observability events.
type ConnInfo struct {
	ConnID      string
	UserID      int64
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

type wsConn struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewConn wraps a websocket connection. The write lock serializes
// concurrent sends from the router and the dispatcher.
func NewConn(id string, conn *websocket.Conn) Conn {
	return &wsConn{id: id, conn: conn}
}

func (c *wsConn) ID() string {
	return c.id
}

func (c *wsConn) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func decodeFrame(data []byte, frame *Frame) error {
	return json.Unmarshal(data, frame)
}
