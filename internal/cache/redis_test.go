package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisTier(t *testing.T) {
	t.Run("an empty url disables the tier without error", func(t *testing.T) {
		tier, err := NewRedisTier("", time.Second, 5, time.Minute)
		assert.NoError(t, err)
		assert.Nil(t, tier)
	})

	t.Run("a malformed url is an error", func(t *testing.T) {
		_, err := NewRedisTier("not-a-redis-url", time.Second, 5, time.Minute)
		assert.Error(t, err)
	})
}

func TestNilRedisTierIsANoOp(t *testing.T) {
	var tier *RedisTier

	_, ok := tier.GetFloat(context.Background(), "k")
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		tier.SetFloat(context.Background(), "k", 1.0)
		tier.Invalidate(context.Background(), "prefix:")
	})
}
