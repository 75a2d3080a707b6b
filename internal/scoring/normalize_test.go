package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kopikita/cafereco/pkg/models"
)

func TestRobustNormalize(t *testing.T) {
	t.Run("empty input yields empty map", func(t *testing.T) {
		out := RobustNormalize(models.ScoreMap{}, 95)
		assert.Empty(t, out)
	})

	t.Run("clamps values above the percentile to 1", func(t *testing.T) {
		raw := models.ScoreMap{1: 10, 2: 20, 3: 100}
		out := RobustNormalize(raw, 50)
		assert.Equal(t, 1.0, out[3])
		assert.Less(t, out[1], out[2])
	})

	t.Run("all-zero input returns all zeros, not NaN", func(t *testing.T) {
		raw := models.ScoreMap{1: 0, 2: 0}
		out := RobustNormalize(raw, 95)
		assert.Equal(t, 0.0, out[1])
		assert.Equal(t, 0.0, out[2])
	})
}

func TestNormalizeCapped(t *testing.T) {
	t.Run("scales linearly within the cap", func(t *testing.T) {
		assert.InDelta(t, 0.8, NormalizeCapped(4, 5), 1e-9)
	})

	t.Run("clamps above the cap", func(t *testing.T) {
		assert.Equal(t, 1.0, NormalizeCapped(7, 5))
	})

	t.Run("zero cap returns zero instead of dividing by zero", func(t *testing.T) {
		assert.Equal(t, 0.0, NormalizeCapped(3, 0))
	})

	t.Run("negative value clamps to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, NormalizeCapped(-1, 5))
	})
}
