package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier is an optional second-tier cache for the sentiment aggregator
// (spec.md §9's generalized Cache<K,V>: nothing requires the second tier
// to be in-process). A nil *RedisTier is valid and simply means "no
// second tier" — callers check for nil before using it.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTier connects to url and returns a RedisTier, or nil if url is
// empty (the configured "disabled" state).
func NewRedisTier(url string, timeout time.Duration, poolSize int, ttl time.Duration) (*RedisTier, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = poolSize
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return &RedisTier{client: redis.NewClient(opts), ttl: ttl}, nil
}

func (t *RedisTier) GetFloat(ctx context.Context, key string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	raw, err := t.client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (t *RedisTier) SetFloat(ctx context.Context, key string, value float64) {
	if t == nil {
		return
	}
	t.client.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), t.ttl)
}

// Invalidate drops every key this tier is responsible for. Sentiment
// scores share the "sentiment:" prefix, scoped via SCAN+DEL rather than
// FLUSHDB so a shared Redis instance isn't wiped wholesale.
func (t *RedisTier) Invalidate(ctx context.Context, prefix string) {
	if t == nil {
		return
	}
	iter := t.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		t.client.Del(ctx, keys...)
	}
}
