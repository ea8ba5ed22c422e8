package matchmaker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultEventChannel 默认的 Redis 发布频道
const DefaultEventChannel = "mm:events"

type redisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher 通过 PUBLISH 把事件 JSON 发到频道，只做分发，不保存任何队列状态
func NewRedisPublisher(rdb *redis.Client, channel string) Publisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &redisPublisher{rdb: rdb, channel: channel}
}

func (p *redisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return nil
}
