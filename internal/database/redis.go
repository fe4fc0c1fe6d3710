package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis serves two unrelated concerns here: the refresh-token store that every
// auth request touches, and the per-user stage-update channels behind the
// WebSocket hub. Each role gets its own client so a stalled subscriber can
// never starve token lookups of connections.
type RedisClients struct {
	Tokens *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	tokens, err := connectRole(opt, 10)
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}

	// Subscriptions each pin a dedicated connection, so this pool only covers
	// publishes and the occasional subscribe handshake.
	pubsub, err := connectRole(opt, 4)
	if err != nil {
		tokens.Close()
		return nil, fmt.Errorf("pub/sub: %w", err)
	}

	return &RedisClients{Tokens: tokens, PubSub: pubsub}, nil
}

func connectRole(base *redis.Options, poolSize int) (*redis.Client, error) {
	opt := *base
	opt.PoolSize = poolSize

	client := redis.NewClient(&opt)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func (r *RedisClients) Close() {
	r.Tokens.Close()
	r.PubSub.Close()
}
