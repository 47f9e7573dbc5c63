package shopify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Shopify's admin API leaky bucket refills at roughly two calls per second per shop.
const (
	defaultShopRate  = rate.Limit(2)
	defaultShopBurst = 40
	idleBucketTTL    = 10 * time.Minute
)

type shopBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles outbound admin calls per shop.
type RateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	buckets map[string]*shopBucket
	logger  zerolog.Logger
}

// NewRateLimiter creates a limiter with Shopify's default bucket size.
func NewRateLimiter(logger zerolog.Logger) *RateLimiter {
	return NewRateLimiterWithLimits(defaultShopRate, defaultShopBurst, logger)
}

func NewRateLimiterWithLimits(rps rate.Limit, burst int, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rps,
		burst:   burst,
		buckets: make(map[string]*shopBucket),
		logger:  logger,
	}
}

// Wait blocks until a call to shop is allowed or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context, shop string) error {
	limiter := l.bucket(shop)
	if limiter.Tokens() < 1 {
		l.logger.Debug().Str("shop", shop).Msg("Shopify rate limit reached, waiting")
	}
	return limiter.Wait(ctx)
}

func (l *RateLimiter) bucket(shop string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleBucketTTL {
			delete(l.buckets, key)
		}
	}

	b, ok := l.buckets[shop]
	if !ok {
		b = &shopBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[shop] = b
	}
	b.lastSeen = now
	return b.limiter
}

// RetryConfig bounds the retries go-shopify performs on throttled or failed calls.
type RetryConfig struct {
	MaxRetries int
	Timeout    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		Timeout:    15 * time.Second,
	}
}
