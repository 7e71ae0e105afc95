package realtime

import "github.com/skillbridge/platform/internal/core/ports"

// MultiBroadcaster publishes to several broadcasters in order. Used to pair
// the in-process hub with the redis publisher so presence transitions reach
// both local clients and other instances.
type MultiBroadcaster []ports.Broadcaster

func (m MultiBroadcaster) Publish(topic, userID string) {
	for _, b := range m {
		b.Publish(topic, userID)
	}
}
