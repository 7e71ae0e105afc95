package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// PresencePublisher fans presence transitions out to other instances over
// redis pub/sub. It satisfies ports.Broadcaster. Delivery is at-most-once
// with no replay, matching the channel contract: a publish failure is logged
// and dropped, never retried.
type PresencePublisher struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewPresencePublisher(client *redis.Client, log zerolog.Logger) *PresencePublisher {
	return &PresencePublisher{client: client, log: log}
}

func (p *PresencePublisher) Publish(topic, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, topic, userID).Err(); err != nil {
		p.log.Warn().Err(err).
			Str("topic", topic).
			Str("user_id", userID).
			Msg("presence publish failed")
	}
}
