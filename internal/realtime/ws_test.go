package realtime

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve upgrades every request and hands the connection to fn.
func serve(t *testing.T, fn func(*Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestConnPushWritesNotificationEvent(t *testing.T) {
	pushed := make(chan error, 1)
	url := serve(t, func(c *Conn) {
		pushed <- c.Push("task due soon")
		_, _ = c.ReadMessage()
	})
	client := dial(t, url)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, client.ReadJSON(&ev))
	require.NoError(t, <-pushed)
	assert.Equal(t, "notification", ev.Type)
	assert.Equal(t, "task due soon", ev.Message)
	assert.False(t, ev.SentAt.IsZero())
}

func TestConnReadMessageAnswersPingAndStopsOnClose(t *testing.T) {
	type read struct {
		msg string
		err error
	}
	reads := make(chan read, 2)
	url := serve(t, func(c *Conn) {
		defer c.Close()
		for i := 0; i < 2; i++ {
			msg, err := c.ReadMessage()
			reads <- read{string(msg), err}
			if err != nil {
				return
			}
		}
	})
	client := dial(t, url)

	pong := make(chan string, 1)
	client.SetPongHandler(func(data string) error {
		pong <- data
		return nil
	})
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.NoError(t, client.WriteControl(websocket.PingMessage, []byte("hi"), time.Now().Add(time.Second)))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello")))

	select {
	case got := <-pong:
		assert.Equal(t, "hi", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no pong")
	}

	first := <-reads
	require.NoError(t, first.err)
	assert.Equal(t, "hello", first.msg)

	require.NoError(t, client.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	second := <-reads
	assert.ErrorIs(t, second.err, io.EOF)
}

func TestConnPushAfterCloseFails(t *testing.T) {
	result := make(chan [2]error, 1)
	url := serve(t, func(c *Conn) {
		first := c.Close()
		result <- [2]error{first, c.Push("late")}
		assert.NoError(t, c.Close(), "close is idempotent")
	})
	dial(t, url)

	select {
	case errs := <-result:
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
}

func TestHandshakeAcceptKey(t *testing.T) {
	url := serve(t, func(c *Conn) { _, _ = c.ReadMessage() })

	conn, err := net.Dial("tcp", strings.TrimPrefix(url, "http://"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: test\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\nSec-WebSocket-Version: 13\r\n\r\n")
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	// RFC 6455 section 1.3 example
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", resp.Header.Get("Sec-WebSocket-Accept"))
}

func TestUpgradeRejectsPlainRequests(t *testing.T) {
	url := serve(t, func(*Conn) { t.Error("plain request must not upgrade") })

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Sec-WebSocket-Version", "8")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode, "unsupported protocol version")
}
