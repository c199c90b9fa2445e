package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingEvery      = pongWait * 9 / 10 // must stay below pongWait
	queueDepth     = 16
	maxRequestSize = 512
)

// client is one WebSocket connection. The hub owns send and closes it on
// removal; writeLoop is the only writer to conn.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, queueDepth),
		remote: conn.RemoteAddr().String(),
	}
}

func (c *client) write(kind int, payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return c.conn.WriteMessage(kind, payload)
}

// writeLoop forwards queued messages and keeps the connection alive with
// pings. It returns, closing conn, when send is closed or a write fails.
func (c *client) writeLoop() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, open := <-c.send:
			if !open {
				c.write(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop passes every data frame to onFrame until the connection fails or
// onFrame returns false.
func (c *client) readLoop(onFrame func([]byte) bool) {
	defer c.conn.Close()

	extend := func() { c.conn.SetReadDeadline(time.Now().Add(pongWait)) } //nolint:errcheck
	c.conn.SetReadLimit(maxRequestSize)
	extend()
	c.conn.SetPongHandler(func(string) error { extend(); return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		extend()
		if !onFrame(raw) {
			return
		}
	}
}
