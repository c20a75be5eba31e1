package server

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 10 * time.Second
	pingPeriod     = 5 * time.Second
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is one realtime connection. The hub owns send and closes it on
// unregister; ready is closed once the broadcaster knows the connection.
type Client struct {
	id    string
	hub   *APIServer
	conn  *websocket.Conn
	send  chan interface{}
	ready chan struct{}
}

func newClient(id string, hub *APIServer, conn *websocket.Conn) *Client {
	return &Client{
		id:    id,
		hub:   hub,
		conn:  conn,
		send:  make(chan interface{}, sendBufferSize),
		ready: make(chan struct{}),
	}
}

// serve runs both pumps; it returns immediately.
func (c *Client) serve() {
	go c.writePump()
	go c.readPump()
}

// -----------------------------------------------------------------------------

// readPump feeds inbound text frames to the hub and unregisters the client
// when the peer goes away or stops answering pings.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.Logger.Warning("WebSocket error on %s: %v", c.id, err)
			}
			return
		}
		if kind != websocket.TextMessage {
			c.hub.Logger.Debug("Ignoring non-text frame from %s", c.id)
			continue
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------

// writePump is the only writer on the connection. Events that queued up
// while a write was in flight are flushed before the next select.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "connection closed by server"))
				return
			}
			if !c.write(event) {
				return
			}
			for pending := len(c.send); pending > 0; pending-- {
				event, ok := <-c.send
				if !ok || !c.write(event) {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(event interface{}) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(event); err != nil {
		c.hub.Logger.Info("Write error on %s: %v", c.id, err)
		return false
	}
	return true
}
