package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/skillbridge/platform/internal/api/metrics"
)

// MessageFunc receives inbound message.send operations. Message routing and
// persistence belong to the messaging domain; the hub only guarantees the
// sender was authenticated and named a conversation.
type MessageFunc func(senderID, conversationID, body string)

// Hub fans outbound events out to every connected client. It implements
// ports.Broadcaster for the presence registry. Membership changes flow
// through the register/unregister channels and are applied by the Run loop;
// the mutex protects the clients set against concurrent broadcast reads.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	// done is closed when Run exits so late join/leave calls never block on
	// channels nobody drains.
	done chan struct{}

	// seq numbers every outbound frame so clients can detect drops.
	seq atomic.Int64

	// OnMessage, when set, receives inbound message.send operations. Set it
	// before Run starts.
	OnMessage MessageFunc

	log zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run applies membership changes until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// join registers the client with the running hub. It reports false when the
// hub has shut down, in which case the caller owns the connection teardown.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave asks the hub to drop the client. Safe to call after shutdown.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketConnections.Set(float64(total))
	h.log.Debug().
		Str("connection_id", client.id).
		Str("user_id", client.userID).
		Int("connections", total).
		Msg("websocket client registered")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	client.close()
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketConnections.Set(float64(total))
	h.log.Debug().
		Str("connection_id", client.id).
		Str("user_id", client.userID).
		Int("connections", total).
		Msg("websocket client unregistered")
}

// Publish satisfies ports.Broadcaster: the topic becomes the frame op and the
// payload carries the bare user id. Delivery is at-most-once; a client whose
// send buffer is full is dropped rather than blocking the broadcast.
func (h *Hub) Publish(topic, userID string) {
	payload, err := json.Marshal(PresenceData{UserID: userID})
	if err != nil {
		return
	}
	h.broadcast(Event{Op: topic, Data: payload})
}

func (h *Hub) broadcast(event Event) {
	event.Seq = h.seq.Add(1)
	frame, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("op", event.Op).Msg("broadcast marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			// Slow consumer: sever it asynchronously, the Run loop owns removal.
			go h.leave(client)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]struct{})
	metrics.WebsocketConnections.Set(0)
	h.log.Info().Msg("websocket hub shut down")
}
