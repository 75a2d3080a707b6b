package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kopikita/cafereco/pkg/models"
)

func TestTopN(t *testing.T) {
	t.Run("ties break by ascending café id", func(t *testing.T) {
		scores := models.ScoreMap{3: 5, 1: 5, 2: 5}
		assert.Equal(t, []int{1, 2, 3}, topN(scores, 10))
	})

	t.Run("truncates to n highest", func(t *testing.T) {
		scores := models.ScoreMap{1: 1, 2: 5, 3: 3}
		assert.Equal(t, []int{2, 3}, topN(scores, 2))
	})
}

func TestBuild(t *testing.T) {
	t.Run("unions top-N across signals and drops visited cafés", func(t *testing.T) {
		cf := models.ScoreMap{1: 10, 2: 5}
		vf := models.ScoreMap{3: 1}
		visited := map[int]struct{}{2: {}}

		got := Build([]models.ScoreMap{cf, vf}, 50, 300, visited)
		assert.Equal(t, []int{1, 3}, got)
	})

	t.Run("caps the candidate set at poolCap", func(t *testing.T) {
		cf := models.ScoreMap{1: 3, 2: 2, 3: 1}
		got := Build([]models.ScoreMap{cf}, 50, 2, nil)
		assert.Len(t, got, 2)
	})

	t.Run("nil signal maps contribute nothing", func(t *testing.T) {
		got := Build([]models.ScoreMap{nil, nil}, 50, 300, nil)
		assert.Empty(t, got)
	})
}

func TestVisitedSet(t *testing.T) {
	set := VisitedSet([]int{1, 2, 2, 3})
	assert.Len(t, set, 3)
	_, ok := set[2]
	assert.True(t, ok)
}
