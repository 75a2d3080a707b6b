// Package engine orchestrates the Data Access Layer, the signal
// extractors, and the scoring layer into the two operations spec.md §2
// exposes: Recommend and Evaluate.
package engine

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/kopikita/cafereco/internal/cf"
	"github.com/kopikita/cafereco/internal/pool"
	"github.com/kopikita/cafereco/internal/scoring"
	"github.com/kopikita/cafereco/internal/signals"
	"github.com/kopikita/cafereco/pkg/models"
)

// UpstreamClient is the subset of upstream.Client the recommender needs.
type UpstreamClient interface {
	ListUsers(ctx context.Context) []models.User
	GetUser(ctx context.Context, userID int) (models.User, bool)
	ListCafes(ctx context.Context) []models.Cafe
	GetVisited(ctx context.Context, userID int) []int
}

// SentimentScorer is the subset of sentiment.Aggregator the recommender
// needs.
type SentimentScorer interface {
	Score(ctx context.Context, cafeID int) (float64, bool)
}

// Params bundles every tunable constant spec.md §6 names for the
// recommendation operation.
type Params struct {
	Weights           scoring.Weights
	KNNMaxNeighbors   int
	TopNPerSignal     int
	PoolCap           int
	TopK              int
	NormalizationPctl float64
	RatingCap         float64
}

type Recommender struct {
	upstream  UpstreamClient
	sentiment SentimentScorer
	params    Params
	log       *logrus.Entry
}

func NewRecommender(upstream UpstreamClient, sentiment SentimentScorer, params Params, log *logrus.Logger) *Recommender {
	return &Recommender{
		upstream:  upstream,
		sentiment: sentiment,
		params:    params,
		log:       log.WithField("component", "engine"),
	}
}

// Recommend ranks cafés for userID (spec.md §4.7). A user with an empty
// visit history gets no recommendations at all — this engine makes no
// cold-start guesses. It never errors otherwise: an unresolvable upstream
// fetch collapses to an empty pool for that signal, not a failure.
func (r *Recommender) Recommend(ctx context.Context, userID int) models.RecommendationResponse {
	target, hasTarget := r.upstream.GetUser(ctx, userID)

	visited := r.upstream.GetVisited(ctx, userID)
	if len(visited) == 0 && hasTarget {
		visited = target.VisitHistory
	}
	if len(visited) == 0 {
		return models.RecommendationResponse{Recommendations: []models.Recommendation{}}
	}
	visitedSet := pool.VisitedSet(visited)

	users := r.upstream.ListUsers(ctx)
	cafes := r.upstream.ListCafes(ctx)
	if len(cafes) == 0 {
		return models.RecommendationResponse{Recommendations: []models.Recommendation{}}
	}

	cafeIDs := make([]int, 0, len(cafes))
	cafeByID := make(map[int]models.Cafe, len(cafes))
	for _, c := range cafes {
		cafeIDs = append(cafeIDs, c.CafeID)
		cafeByID[c.CafeID] = c
	}

	sentAndRate := r.sentAndRateAll(ctx, cafes)

	model := cf.Build(users, cafeIDs, r.params.KNNMaxNeighbors)
	cfRaw := model.PredictScores(userID)

	transitions := signals.VisitTransitions(users, userID)
	vfRaw := signals.VisitFrequencyScores(transitions, visited)

	targetLikedNames := target.LikedMenuNames()
	coRaw := signals.MenuCooccurrence(users, userID, targetLikedNames)

	candidates := pool.Build(
		[]models.ScoreMap{cfRaw, vfRaw, coRaw},
		r.params.TopNPerSignal, r.params.PoolCap, visitedSet,
	)
	if len(candidates) == 0 {
		return models.RecommendationResponse{Recommendations: []models.Recommendation{}}
	}

	cfNorm := scoring.RobustNormalize(cfRaw, r.params.NormalizationPctl)
	vfNorm := scoring.RobustNormalize(vfRaw, r.params.NormalizationPctl)
	coNorm := scoring.RobustNormalize(coRaw, r.params.NormalizationPctl)

	fused := scoring.FuseAll(r.params.Weights, cfNorm, vfNorm, coNorm, sentAndRate)

	recs := make([]models.Recommendation, 0, len(candidates))
	for _, id := range candidates {
		cafe, ok := cafeByID[id]
		if !ok {
			continue
		}
		sentiment, _ := r.sentiment.Score(ctx, id)

		matched := []string{}
		if targetLikedNames != nil {
			matched = signals.MatchedMenuNames(users, userID, id, targetLikedNames)
		}

		recs = append(recs, models.Recommendation{
			CafeID:      id,
			Name:        cafe.Name,
			Address:     cafe.Address,
			Rating:      cafe.Rating,
			Sentiment:   round2(sentiment),
			Score:       round2(fused[id]),
			MatchedMenu: matched,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if cfi, cfj := cfRaw[recs[i].CafeID], cfRaw[recs[j].CafeID]; cfi != cfj {
			return cfi > cfj
		}
		return recs[i].CafeID < recs[j].CafeID
	})

	if len(recs) > r.params.TopK {
		recs = recs[:r.params.TopK]
	}

	return models.RecommendationResponse{Recommendations: recs}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *Recommender) sentAndRateAll(ctx context.Context, cafes []models.Cafe) map[int]float64 {
	out := make(map[int]float64, len(cafes))
	for _, cafe := range cafes {
		sentiment, hasSentiment := r.sentiment.Score(ctx, cafe.CafeID)
		normalizedRating := scoring.NormalizeCapped(cafe.Rating, r.params.RatingCap)
		out[cafe.CafeID] = scoring.SentAndRate(normalizedRating, sentiment, hasSentiment)
	}
	return out
}
