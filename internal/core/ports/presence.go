package ports

// Broadcast topics emitted by the presence registry. Each message carries a
// bare user id, delivered at-most-once to current subscribers, no replay.
const (
	TopicUserOnline  = "user.online"
	TopicUserOffline = "user.offline"
)

// Broadcaster fans a presence transition out to all current subscribers.
// Implementations must not block on slow consumers: the registry publishes
// while holding no lock but from connection-handling goroutines.
//
// Because publishing happens outside the registry's critical section, racing
// transitions for the same user may be delivered out of order (a reconnect's
// user.online can arrive before the previous session's user.offline).
// Subscribers that need the terminal state should query PresenceView rather
// than fold the event stream.
type Broadcaster interface {
	Publish(topic, userID string)
}

// PresenceView exposes read-only snapshots of the presence registry. Reads
// are safe under concurrent mutation and eventually consistent with in-flight
// connect/disconnect events.
type PresenceView interface {
	IsOnline(userID string) bool
	Count() int
	OnlineUserIDs() []string
}
