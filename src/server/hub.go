package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"coin-market-api/src/helpers"
	"coin-market-api/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. Registration and removal are
// serialised here; the broadcaster is told about both outside clientsMu.
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			if s.addClient(client) {
				s.Feed.Connect(client.id)
			}
			close(client.ready)

		case client := <-s.unregister:
			s.clientsMu.Lock()
			_, ok := s.clients[client.id]
			if ok {
				delete(s.clients, client.id)
				close(client.send)
			}
			s.clientsMu.Unlock()

			if ok {
				s.Feed.Disconnect(client.id)
			}

		case <-s.quit:
			return
		}
	}
}

// -----------------------------------------------------------------------------

// addClient stores client and queues its connected event. Both happen under
// clientsMu so Stop cannot close send in between; it reports false once the
// server is shutting down.
func (s *APIServer) addClient(client *Client) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	select {
	case <-s.quit:
		return false
	default:
	}

	s.clients[client.id] = client
	client.send <- models.MOutboundEvent{
		Event: models.EventConnected,
		Data:  gin.H{"sid": client.id},
	}
	return true
}

// -----------------------------------------------------------------------------
// Event Emitter Implementation
// -----------------------------------------------------------------------------

// Emit queues one event for connID without blocking the caller.
func (s *APIServer) Emit(connID string, event string, payload interface{}) error {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	client, ok := s.clients[connID]
	if !ok {
		return helpers.ErrUnknownConnection
	}

	select {
	case client.send <- models.MOutboundEvent{Event: event, Data: payload}:
		return nil
	default:
		// Slow consumer: drop the tick rather than stall the loop
		s.Metrics.TicksDropped.Inc()
		return fmt.Errorf("%s: %w", connID, helpers.ErrSlowConsumer)
	}
}

// -----------------------------------------------------------------------------

// ConnectionCount is the number of open WebSocket clients.
func (s *APIServer) ConnectionCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(uuid.NewString(), s, conn)

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}
	<-client.ready

	select {
	case <-s.quit:
		conn.Close()
		return
	default:
	}
	client.serve()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var evt models.MEvent
	if err := json.Unmarshal(message, &evt); err != nil {
		s.Logger.Warning("Failed to parse message from %s: %v", client.id, err)
		s.replyError(client, "malformed message")
		return
	}

	switch evt.Event {
	case models.EventSubscribe:
		coinIDs, err := parseCoinIDs(evt.Data)
		if err != nil {
			s.Logger.Warning("Invalid subscribe payload from %s: %v", client.id, err)
			s.replyError(client, err.Error())
			return
		}
		if err := s.Feed.Subscribe(client.id, coinIDs); err != nil {
			s.Logger.Error("Error in subscribe handler for %s: %v", client.id, err)
		}
	default:
		s.Logger.Debug("Ignoring event %q from %s", evt.Event, client.id)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) replyError(client *Client, msg string) {
	if err := s.Emit(client.id, models.EventError, gin.H{"error": msg}); err != nil {
		s.Logger.Debug("Could not deliver error to %s: %v", client.id, err)
	}
}
