package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	data map[string]time.Duration
}

func (m *mockStore) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestWebhookGuard_CheckAndMark(t *testing.T) {
	mock := &mockStore{data: map[string]time.Duration{}}
	guard := &WebhookGuard{store: mock, ttl: time.Hour}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "delivery-1")
	require.NoError(t, err)
	assert.False(t, seen)
	assert.Equal(t, time.Hour, mock.data["shopify:webhook:delivery-1"])

	seen, err = guard.CheckAndMark(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, guard.Release(ctx, "delivery-1"))
	seen, err = guard.CheckAndMark(ctx, "delivery-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestWebhookGuard_EmptyID(t *testing.T) {
	guard := &WebhookGuard{store: &mockStore{data: map[string]time.Duration{}}, ttl: time.Hour}
	_, err := guard.CheckAndMark(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, guard.Release(context.Background(), ""))
}

func TestNewWebhookGuard_Validation(t *testing.T) {
	_, err := NewWebhookGuard(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewWebhookGuard(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	assert.Error(t, err)
}
