package realtime

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxMessage   = 64 << 10
	writeTimeout = 10 * time.Second
)

var ErrClosed = errors.New("websocket connection closed")

// Event is the JSON document pushed to a connected client.
type Event struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// clients authenticate with a bearer token, never a cookie
	CheckOrigin: func(*http.Request) bool { return true },
	// callers write their own error response
	Error: func(http.ResponseWriter, *http.Request, int, error) {},
}

// Conn is a server side WebSocket connection. Writes are serialized, so Push
// may be called from any goroutine.
type Conn struct {
	ws *websocket.Conn

	wmu    sync.Mutex
	closed bool
}

// Upgrade completes the handshake. On failure nothing has been written to w.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(ws), nil
}

// NewConn wraps an established connection.
func NewConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxMessage)
	return &Conn{ws: ws}
}

// Push sends message as a notification event.
func (c *Conn) Push(message string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(Event{Type: "notification", Message: message, SentAt: time.Now().UTC()})
}

// ReadMessage blocks until the client sends a data message. Pings are
// answered by the library; a close from the client yields io.EOF.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err,
			websocket.CloseNormalClosure,
			websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived,
		) {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

func (c *Conn) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.ws.Close()
}
