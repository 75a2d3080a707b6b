package cf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kopikita/cafereco/pkg/models"
)

func TestBuildPredictScores(t *testing.T) {
	t.Run("a single-user world has no neighbours, so no prediction", func(t *testing.T) {
		users := []models.User{
			{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 20000}}},
		}
		m := Build(users, []int{1}, 7)
		assert.Nil(t, m.PredictScores(1))
	})

	t.Run("two users sharing a café get a nonzero neighbour prediction", func(t *testing.T) {
		users := []models.User{
			{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 20000}, {CafeID: 2, Price: 10000}}},
			{UserID: 2, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 22000}, {CafeID: 3, Price: 15000}}},
		}
		m := Build(users, []int{1, 2, 3}, 7)
		scores := m.PredictScores(1)
		assert.NotNil(t, scores)
		_, hasCafe3 := scores[3]
		assert.True(t, hasCafe3, "user 1 should get a prediction for user 2's other café")
	})

	t.Run("an unknown user id yields no prediction", func(t *testing.T) {
		users := []models.User{{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 1000}}}}
		m := Build(users, []int{1}, 7)
		assert.Nil(t, m.PredictScores(999))
	})
}

func TestPredictForUser(t *testing.T) {
	t.Run("scores a user absent from the fitted model via an on-the-fly query vector", func(t *testing.T) {
		train := []models.User{
			{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 20000}, {CafeID: 2, Price: 10000}}},
			{UserID: 2, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 21000}, {CafeID: 3, Price: 12000}}},
		}
		m := Build(train, []int{1, 2, 3}, 7)

		holdout := models.User{UserID: 99, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 20500}, {CafeID: 2, Price: 9500}}}
		scores := m.PredictForUser(holdout, 7)
		assert.NotNil(t, scores)
	})

	t.Run("a user with no matching cafés in the model yields nil", func(t *testing.T) {
		train := []models.User{
			{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 20000}}},
		}
		m := Build(train, []int{1}, 7)

		holdout := models.User{UserID: 99, LikedMenus: []models.LikedMenu{{CafeID: 404, Price: 1000}}}
		assert.Nil(t, m.PredictForUser(holdout, 7))
	})
}

func TestPredictRating(t *testing.T) {
	t.Run("an unfitted café returns NaN", func(t *testing.T) {
		users := []models.User{{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 1000}}}}
		m := Build(users, []int{1}, 7)
		assert.True(t, math.IsNaN(m.PredictRating(1, 404)))
	})

	t.Run("a user with no neighbours returns NaN", func(t *testing.T) {
		users := []models.User{{UserID: 1, LikedMenus: []models.LikedMenu{{CafeID: 1, Price: 1000}}}}
		m := Build(users, []int{1}, 7)
		assert.True(t, math.IsNaN(m.PredictRating(1, 1)))
	})
}
