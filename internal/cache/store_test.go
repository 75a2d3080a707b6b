package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	t.Run("set then get returns the stored value", func(t *testing.T) {
		s := NewStore[int](time.Minute, 0)
		s.Set("a", 42)
		v, ok := s.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 42, v)
	})

	t.Run("a missing key is not ok", func(t *testing.T) {
		s := NewStore[int](time.Minute, 0)
		_, ok := s.Get("missing")
		assert.False(t, ok)
	})

	t.Run("an expired entry is not ok", func(t *testing.T) {
		s := NewStore[int](10*time.Millisecond, 0)
		s.Set("a", 1)
		time.Sleep(30 * time.Millisecond)
		_, ok := s.Get("a")
		assert.False(t, ok)
	})

	t.Run("invalidate clears every entry", func(t *testing.T) {
		s := NewStore[int](time.Minute, 0)
		s.Set("a", 1)
		s.Set("b", 2)
		s.Invalidate()
		_, okA := s.Get("a")
		_, okB := s.Get("b")
		assert.False(t, okA)
		assert.False(t, okB)
	})

	t.Run("LastRead records the most recent Get", func(t *testing.T) {
		s := NewStore[int](time.Minute, 0)
		s.Set("a", 1)
		_, ok := s.LastRead("a")
		assert.False(t, ok)
		s.Get("a")
		_, ok = s.LastRead("a")
		assert.True(t, ok)
	})
}
