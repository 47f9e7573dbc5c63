package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const webhookKeyPrefix = "shopify:webhook:"

// store is the subset of redis commands the guard needs.
type store interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// WebhookGuard marks webhook delivery ids as seen for a bounded window.
type WebhookGuard struct {
	store store
	ttl   time.Duration
}

// NewClient connects to redis from a redis:// URL and verifies connectivity.
func NewClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewWebhookGuard(client redis.Cmdable, ttl time.Duration) (*WebhookGuard, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &WebhookGuard{store: client, ttl: ttl}, nil
}

// CheckAndMark returns true when deliveryID was already marked.
func (g *WebhookGuard) CheckAndMark(ctx context.Context, deliveryID string) (bool, error) {
	if deliveryID == "" {
		return false, errors.New("delivery id is required")
	}
	set, err := g.store.SetNX(ctx, webhookKeyPrefix+deliveryID, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set webhook key: %w", err)
	}
	return !set, nil
}

// Release forgets deliveryID so a retried delivery is processed again.
func (g *WebhookGuard) Release(ctx context.Context, deliveryID string) error {
	if deliveryID == "" {
		return errors.New("delivery id is required")
	}
	if err := g.store.Del(ctx, webhookKeyPrefix+deliveryID).Err(); err != nil {
		return fmt.Errorf("delete webhook key: %w", err)
	}
	return nil
}
