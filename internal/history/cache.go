// Package history keeps each room's recent messages: a bounded buffer of
// the last 100 messages, expiring 24 hours after the last write. Joining
// clients receive this buffer before any live traffic.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mossy-p/chat-gateway/internal/protocol"
)

// Cache stores recent messages per room. Recent returns oldest first.
type Cache interface {
	Append(ctx context.Context, room string, msg protocol.Message) error
	Recent(ctx context.Context, room string) ([]protocol.Message, error)
}

const opTimeout = 2 * time.Second

// RedisCache keeps one list per room under messages:<room>, newest at the
// head, trimmed to capacity on every append.
type RedisCache struct {
	client *redis.Client
	size   int
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, size int, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, size: size, ttl: ttl}
}

func key(room string) string {
	return "messages:" + room
}

func (c *RedisCache) Append(ctx context.Context, room string, msg protocol.Message) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key(room), data)
	pipe.LTrim(ctx, key(room), 0, int64(c.size-1))
	pipe.Expire(ctx, key(room), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache append: %w", err)
	}
	return nil
}

func (c *RedisCache) Recent(ctx context.Context, room string) ([]protocol.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.LRange(ctx, key(room), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache read: %w", err)
	}

	// The list is newest-first; callers expect arrival order.
	messages := make([]protocol.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg protocol.Message
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
