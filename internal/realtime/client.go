package realtime

import (
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var connSeq atomic.Int64

// Client is one websocket connection bound to an authenticated user. Reads
// and writes run on separate goroutines because gorilla/websocket supports at
// most one concurrent reader and one concurrent writer per connection.
type Client struct {
	id       string
	userID   string
	hub      *Hub
	presence *Registry
	conn     *websocket.Conn
	send     chan []byte

	// done is closed when the hub severs the client. send itself is never
	// closed: inbound handlers may still race the removal, and a send on a
	// buffered channel with no reader is a dropped frame, not a panic.
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, presence *Registry, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:       "conn-" + strconv.FormatInt(connSeq.Add(1), 10),
		userID:   userID,
		hub:      hub,
		presence: presence,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// close marks the client severed. Idempotent.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump consumes inbound frames until the connection dies. The transport's
// connection-close notification is what drives the presence disconnect.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.presence.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Str("user_id", c.userID).Msg("websocket closed unexpectedly")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.hub.log.Debug().Str("user_id", c.userID).Msg("dropping unparseable frame")
			continue
		}
		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpMessageSend:
		var msg MessageSendData
		if err := json.Unmarshal(event.Data, &msg); err != nil || msg.ConversationID == "" {
			c.hub.log.Debug().Str("user_id", c.userID).Msg("message.send without conversation id")
			return
		}
		if c.hub.OnMessage != nil {
			c.hub.OnMessage(c.userID, msg.ConversationID, msg.Body)
		}

	default:
		c.hub.log.Debug().Str("user_id", c.userID).Str("op", event.Op).Msg("unknown op")
	}
}

func (c *Client) sendEvent(event Event) {
	frame, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- frame:
	default:
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with periodic pings. It exits when the hub severs the client or a
// write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
