// Package presence tracks room membership in a shared store. The store is
// the only cross-instance source of truth for who is in a room; set
// semantics make concurrent add/remove from different instances converge
// without locking.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records which users are joined to which rooms. Add is idempotent
// and refreshes the room's TTL; Remove is idempotent.
type Store interface {
	Add(ctx context.Context, room, user string) error
	Remove(ctx context.Context, room, user string) error
	Members(ctx context.Context, room string) ([]string, error)
}

// opTimeout bounds every store round trip so a slow store never blocks a
// connection's event loop.
const opTimeout = 2 * time.Second

// RedisStore keeps one set per room under presence:<room>, expiring after
// the configured TTL so entries for crashed clients eventually vanish.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(room string) string {
	return "presence:" + room
}

func (s *RedisStore) Add(ctx context.Context, room, user string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key(room), user)
	pipe.Expire(ctx, key(room), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("presence add: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, room, user string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.SRem(ctx, key(room), user).Err(); err != nil {
		return fmt.Errorf("presence remove: %w", err)
	}
	return nil
}

func (s *RedisStore) Members(ctx context.Context, room string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	members, err := s.client.SMembers(ctx, key(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence members: %w", err)
	}
	return members, nil
}
