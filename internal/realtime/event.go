package realtime

import "encoding/json"

// Client-initiated operations.
const (
	OpHeartbeat    = "heartbeat"
	OpHeartbeatAck = "heartbeat_ack"
	OpMessageSend  = "message.send"
)

// Event is the wire frame for both directions of the websocket channel.
// Presence broadcasts reuse the topic name as the op.
type Event struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  int64           `json:"seq,omitempty"`
}

// PresenceData is the payload of user.online / user.offline broadcasts: the
// bare user identifier, nothing else.
type PresenceData struct {
	UserID string `json:"user_id"`
}

// MessageSendData is the payload of an inbound message.send operation.
type MessageSendData struct {
	ConversationID string `json:"conversation_id"`
	Body           string `json:"body"`
}
