package engine

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/kopikita/cafereco/internal/scoring"
	"github.com/kopikita/cafereco/pkg/models"
)

type fakeUpstream struct {
	users   []models.User
	cafes   []models.Cafe
	visited map[int][]int
	byID    map[int]models.User
}

func (f *fakeUpstream) ListUsers(ctx context.Context) []models.User { return f.users }

func (f *fakeUpstream) GetUser(ctx context.Context, userID int) (models.User, bool) {
	u, ok := f.byID[userID]
	return u, ok
}

func (f *fakeUpstream) ListCafes(ctx context.Context) []models.Cafe { return f.cafes }

func (f *fakeUpstream) GetVisited(ctx context.Context, userID int) []int { return f.visited[userID] }

type fakeSentiment struct {
	scores map[int]float64
}

func (f *fakeSentiment) Score(ctx context.Context, cafeID int) (float64, bool) {
	v, ok := f.scores[cafeID]
	return v, ok
}

func testParams() Params {
	return Params{
		Weights:           scoring.Weights{CF: 0.5, VF: 0.2, CO: 0.2, SentAndRate: 0.1},
		KNNMaxNeighbors:   7,
		TopNPerSignal:     50,
		PoolCap:           300,
		TopK:              6,
		NormalizationPctl: 95,
		RatingCap:         5,
	}
}

func newRecommender(upstream UpstreamClient, sentiment SentimentScorer) *Recommender {
	return NewRecommender(upstream, sentiment, testParams(), logrus.New())
}

// S1: a user with an empty visit history gets no recommendations.
func TestRecommendColdStart(t *testing.T) {
	u := models.User{UserID: 1}
	upstream := &fakeUpstream{
		users:   []models.User{u},
		cafes:   []models.Cafe{{CafeID: 1, Rating: 4}},
		visited: map[int][]int{},
		byID:    map[int]models.User{1: u},
	}
	r := newRecommender(upstream, &fakeSentiment{})

	resp := r.Recommend(context.Background(), 1)
	assert.Empty(t, resp.Recommendations)
}

// S2: a single-user world with no other signal activity yields no
// recommendations even with visit history.
func TestRecommendSingleUserWorld(t *testing.T) {
	u := models.User{
		UserID:       1,
		LikedMenus:   []models.LikedMenu{{CafeID: 7, MenuName: "Latte", Price: 10000}},
		VisitHistory: []int{7, 3, 7},
	}
	upstream := &fakeUpstream{
		users:   []models.User{u},
		cafes:   []models.Cafe{{CafeID: 7, Rating: 4}, {CafeID: 3, Rating: 4}},
		visited: map[int][]int{1: {7, 3, 7}},
		byID:    map[int]models.User{1: u},
	}
	r := newRecommender(upstream, &fakeSentiment{})

	resp := r.Recommend(context.Background(), 1)
	assert.Empty(t, resp.Recommendations)
}

// S3: two users sharing a liked menu name surface each other's café via CO,
// scored on co-occurrence alone since CF similarity is zero for single-entry
// centered rows.
func TestRecommendMenuCooccurrence(t *testing.T) {
	u1 := models.User{
		UserID:       1,
		LikedMenus:   []models.LikedMenu{{CafeID: 1, MenuName: "Latte", Price: 15000}},
		VisitHistory: []int{1},
	}
	u2 := models.User{
		UserID:     2,
		LikedMenus: []models.LikedMenu{{CafeID: 2, MenuName: "Latte", Price: 15000}},
	}
	upstream := &fakeUpstream{
		users:   []models.User{u1, u2},
		cafes:   []models.Cafe{{CafeID: 1, Rating: 4}, {CafeID: 2, Rating: 4}},
		visited: map[int][]int{1: {1}},
		byID:    map[int]models.User{1: u1, 2: u2},
	}
	r := newRecommender(upstream, &fakeSentiment{scores: map[int]float64{2: 0.6}})

	resp := r.Recommend(context.Background(), 1)
	assert.Len(t, resp.Recommendations, 1)
	assert.Equal(t, 2, resp.Recommendations[0].CafeID)
	assert.Equal(t, []string{"Latte"}, resp.Recommendations[0].MatchedMenu)
}

// S4: equal fused scores break ties by ascending café id. Each of u2 and u3
// is a single-liked-menu user, so their centered CF rows are all zero (the
// same degeneracy as S3) and u1's single-element visit history produces no
// VF transitions — leaving CO, rating and sentiment as the only signals,
// tied between café 10 and café 20.
func TestRecommendDeterministicTie(t *testing.T) {
	u1 := models.User{
		UserID:       1,
		LikedMenus:   []models.LikedMenu{{CafeID: 1, MenuName: "Mocha", Price: 15000}},
		VisitHistory: []int{1},
	}
	u2 := models.User{UserID: 2, LikedMenus: []models.LikedMenu{{CafeID: 20, MenuName: "Mocha", Price: 15000}}}
	u3 := models.User{UserID: 3, LikedMenus: []models.LikedMenu{{CafeID: 10, MenuName: "Mocha", Price: 15000}}}
	upstream := &fakeUpstream{
		users: []models.User{u1, u2, u3},
		cafes: []models.Cafe{
			{CafeID: 1, Rating: 4},
			{CafeID: 10, Rating: 4},
			{CafeID: 20, Rating: 4},
		},
		visited: map[int][]int{1: {1}},
		byID:    map[int]models.User{1: u1, 2: u2, 3: u3},
	}
	r := newRecommender(upstream, &fakeSentiment{scores: map[int]float64{10: 0.6, 20: 0.6}})

	resp := r.Recommend(context.Background(), 1)
	assert.Len(t, resp.Recommendations, 2)
	assert.Equal(t, 10, resp.Recommendations[0].CafeID)
	assert.Equal(t, resp.Recommendations[0].Score, resp.Recommendations[1].Score)
}

// Four other users each visit café 0 then branch to a distinct café,
// giving the target user's last-visited café four equally-weighted VF
// candidates — enough to exercise the TopK truncation.
func TestRecommendTruncatesToTopK(t *testing.T) {
	target := models.User{UserID: 1, VisitHistory: []int{0}}
	users := []models.User{target}
	cafes := []models.Cafe{{CafeID: 0, Rating: 4}}
	for i := 1; i <= 4; i++ {
		cafes = append(cafes, models.Cafe{CafeID: i, Rating: 4})
		users = append(users, models.User{UserID: i + 1, VisitHistory: []int{0, i}})
	}

	upstream := &fakeUpstream{
		users:   users,
		cafes:   cafes,
		visited: map[int][]int{1: {0}},
		byID:    map[int]models.User{1: target},
	}
	params := testParams()
	params.TopK = 3
	r := NewRecommender(upstream, &fakeSentiment{}, params, logrus.New())

	resp := r.Recommend(context.Background(), 1)
	assert.Len(t, resp.Recommendations, 3)
}
