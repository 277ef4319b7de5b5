package server

import (
	"context"
	"net/http"
	"strings"

	"token-pulse/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// Run is the hub loop. It owns the client set and returns when ctx is done.
// Only the first call runs the loop.
func (s *FastAPIServer) Run(ctx context.Context) {
	s.hubOnce.Do(func() { s.run(ctx) })
}

func (s *FastAPIServer) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			for client := range s.clients {
				s.drop(client)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.updateClientCount()
			// Send the full state on connect
			if env, err := models.NewEnvelope(models.MessageSnapshot, s.store.Snapshot()); err == nil {
				client.send <- env
			} else {
				s.Logger.Error("Snapshot encode failed: %v", err)
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.drop(client)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Too slow, disconnect so the hub never blocks
					s.drop(client)
					s.metrics.ObserveSlowClient()
					s.Logger.Warning("Dropped slow websocket client")
				}
			}
			s.metrics.ObserveBroadcast(string(message.Type))
		}
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) drop(client *Client) {
	delete(s.clients, client)
	close(client.send)
	s.updateClientCount()
}

func (s *FastAPIServer) updateClientCount() {
	s.clientCount.Store(int64(len(s.clients)))
	s.metrics.SetClients(len(s.clients))
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues msg for every client. Once the hub has stopped it is a no-op.
func (s *FastAPIServer) Broadcast(msg models.Envelope) {
	select {
	case s.broadcast <- msg:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) ClientCount() int {
	return int(s.clientCount.Load())
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || s.Config.Server.AllowedOriginPrefix == "" {
				return true
			}
			return strings.HasPrefix(origin, s.Config.Server.AllowedOriginPrefix)
		},
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered so the hub loop never waits on a socket
		send: make(chan models.Envelope, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
