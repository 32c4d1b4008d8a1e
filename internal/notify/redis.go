package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"visit-service/internal/model"
)

const defaultInboxSize = 100

// RedisGateway publishes every notification on a channel and keeps a capped
// inbox list per recipient (user id, or role for broadcasts).
type RedisGateway struct {
	client    redis.Cmdable
	channel   string
	inboxSize int64
}

func NewRedisGateway(client redis.Cmdable, channel string) *RedisGateway {
	return &RedisGateway{client: client, channel: channel, inboxSize: defaultInboxSize}
}

func (g *RedisGateway) Name() string {
	return "redis"
}

func (g *RedisGateway) Notify(ctx context.Context, n model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	key := InboxKey(n)
	_, err = g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, g.channel, payload)
		if key != "" {
			pipe.LPush(ctx, key, payload)
			pipe.LTrim(ctx, key, 0, g.inboxSize-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// InboxKey names the list a notification is pushed to; empty when it has no recipient.
func InboxKey(n model.Notification) string {
	switch {
	case n.UserID != nil:
		return "visit:inbox:user:" + n.UserID.String()
	case n.Audience != "":
		return "visit:inbox:role:" + string(n.Audience)
	}
	return ""
}
