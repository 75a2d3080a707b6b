package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/kopikita/cafereco/internal/cf"
	"github.com/kopikita/cafereco/internal/pool"
	"github.com/kopikita/cafereco/internal/scoring"
	"github.com/kopikita/cafereco/internal/signals"
	"github.com/kopikita/cafereco/pkg/models"
)

// EvalParams bundles the evaluator's own tunables, distinct from the
// recommender's Params only in the fields spec.md §6 scopes to /evaluate.
type EvalParams struct {
	Params
	Cutoffs []int
	CVSeed  int64
}

type Evaluator struct {
	upstream  UpstreamClient
	sentiment SentimentScorer
	params    EvalParams
	log       *logrus.Entry
}

func NewEvaluator(upstream UpstreamClient, sentiment SentimentScorer, params EvalParams, log *logrus.Logger) *Evaluator {
	return &Evaluator{
		upstream:  upstream,
		sentiment: sentiment,
		params:    params,
		log:       log.WithField("component", "evaluator"),
	}
}

// Evaluate runs both offline reports from spec.md §4.8 over the current
// user population: leave-last-M ranking metrics at every configured K,
// and deterministic k-fold user-split cross-validation for RMSE/MAE.
func (e *Evaluator) Evaluate(ctx context.Context, m int, folds int) models.EvaluationReport {
	users := e.upstream.ListUsers(ctx)
	cafes := e.upstream.ListCafes(ctx)

	sentAndRate := e.sentAndRate(ctx, cafes)
	cafeIDs := make([]int, 0, len(cafes))
	for _, c := range cafes {
		cafeIDs = append(cafeIDs, c.CafeID)
	}

	ranking := e.rankingMetrics(users, cafeIDs, sentAndRate, m)
	cv := e.crossValidate(users, cafeIDs, sentAndRate, folds)

	return models.EvaluationReport{RankingMetrics: ranking, CrossValidationReport: cv}
}

func (e *Evaluator) sentAndRate(ctx context.Context, cafes []models.Cafe) map[int]float64 {
	out := make(map[int]float64, len(cafes))
	for _, cafe := range cafes {
		sentimentScore, hasSentiment := e.sentiment.Score(ctx, cafe.CafeID)
		normalizedRating := scoring.NormalizeCapped(cafe.Rating, e.params.RatingCap)
		out[cafe.CafeID] = scoring.SentAndRate(normalizedRating, sentimentScore, hasSentiment)
	}
	return out
}

// rankingMetrics implements spec.md §4.8 report (A): leave-last-M.
func (e *Evaluator) rankingMetrics(users []models.User, cafeIDs []int, sentAndRate map[int]float64, m int) models.RankingMetrics {
	cutoffs := e.params.Cutoffs
	sums := map[int]*metricAccumulator{}
	for _, k := range cutoffs {
		sums[k] = &metricAccumulator{}
	}

	model := cf.Build(users, cafeIDs, e.params.KNNMaxNeighbors)

	eligible := 0
	for _, u := range users {
		if len(u.VisitHistory) < m+1 {
			continue
		}
		eligible++

		cut := len(u.VisitHistory) - m
		history := u.VisitHistory[:cut]
		relevant := make(map[int]struct{}, m)
		for _, id := range u.VisitHistory[cut:] {
			relevant[id] = struct{}{}
		}

		transitions := signals.VisitTransitions(users, u.UserID)
		ranked, _ := e.scoreAndRank(model, transitions, users, u, history, sentAndRate, relevant)

		for _, k := range cutoffs {
			p, r, f1, ndcg := rankingMetricsAtK(ranked, relevant, k)
			acc := sums[k]
			acc.precision += p
			acc.recall += r
			acc.f1 += f1
			acc.ndcg += ndcg
		}
	}

	out := models.RankingMetrics{
		Precision: map[string]float64{},
		Recall:    map[string]float64{},
		F1:        map[string]float64{},
		NDCG:      map[string]float64{},
	}
	for _, k := range cutoffs {
		suffix := "@" + itoa(k)
		acc := sums[k]
		if eligible == 0 {
			out.Precision["precision"+suffix] = 0
			out.Recall["recall"+suffix] = 0
			out.F1["f1-score"+suffix] = 0
			out.NDCG["ndcg"+suffix] = 0
			continue
		}
		out.Precision["precision"+suffix] = acc.precision / float64(eligible)
		out.Recall["recall"+suffix] = acc.recall / float64(eligible)
		out.F1["f1-score"+suffix] = acc.f1 / float64(eligible)
		out.NDCG["ndcg"+suffix] = acc.ndcg / float64(eligible)
	}
	return out
}

type metricAccumulator struct {
	precision, recall, f1, ndcg float64
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// scoreAndRank builds the candidate pool and fused scores for one
// evaluated user, given a (possibly truncated) visit history, and returns
// café ids ranked descending by fused score.
func (e *Evaluator) scoreAndRank(
	model *cf.Model,
	transitions map[int]models.ScoreMap,
	users []models.User,
	target models.User,
	history []int,
	sentAndRate map[int]float64,
	mustInclude map[int]struct{},
) ([]int, models.ScoreMap) {
	cfRaw := model.PredictScores(target.UserID)
	if cfRaw == nil {
		cfRaw = model.PredictForUser(target, e.params.KNNMaxNeighbors)
	}

	vfRaw := signals.VisitFrequencyScores(transitions, history)

	likedNames := target.LikedMenuNames()
	coRaw := signals.MenuCooccurrence(users, target.UserID, likedNames)

	visitedSet := pool.VisitedSet(history)
	candidates := pool.Build([]models.ScoreMap{cfRaw, vfRaw, coRaw}, e.params.TopNPerSignal, e.params.PoolCap, visitedSet)

	present := make(map[int]struct{}, len(candidates))
	for _, id := range candidates {
		present[id] = struct{}{}
	}
	for id := range mustInclude {
		if _, ok := present[id]; !ok {
			candidates = append(candidates, id)
		}
	}

	cfNorm := scoring.RobustNormalize(cfRaw, e.params.NormalizationPctl)
	vfNorm := scoring.RobustNormalize(vfRaw, e.params.NormalizationPctl)
	coNorm := scoring.RobustNormalize(coRaw, e.params.NormalizationPctl)
	fused := scoring.FuseAll(e.params.Weights, cfNorm, vfNorm, coNorm, sentAndRate)

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := fused[candidates[i]], fused[candidates[j]]
		if si != sj {
			return si > sj
		}
		if cfi, cfj := cfRaw[candidates[i]], cfRaw[candidates[j]]; cfi != cfj {
			return cfi > cfj
		}
		return candidates[i] < candidates[j]
	})
	return candidates, fused
}

// rankingMetricsAtK computes precision/recall/f1/nDCG at a single cutoff
// K for one user, per spec.md §4.8.
func rankingMetricsAtK(ranked []int, relevant map[int]struct{}, k int) (precision, recall, f1, ndcg float64) {
	top := ranked
	if len(top) > k {
		top = top[:k]
	}

	hits := 0
	var dcg float64
	for i, id := range top {
		if _, ok := relevant[id]; ok {
			hits++
			dcg += 1 / math.Log2(float64(i+2))
		}
	}

	denomP := k
	if len(ranked) < denomP {
		denomP = len(ranked)
	}
	if denomP > 0 {
		precision = float64(hits) / float64(denomP)
	}
	if len(relevant) > 0 {
		recall = float64(hits) / float64(len(relevant))
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	idealHits := len(relevant)
	if idealHits > k {
		idealHits = k
	}
	var idcg float64
	for i := 0; i < idealHits; i++ {
		idcg += 1 / math.Log2(float64(i+2))
	}
	if idcg > 0 {
		ndcg = dcg / idcg
	}
	return
}

// crossValidate implements spec.md §4.8 report (B): deterministic
// user-split k-fold CV for RMSE/MAE.
func (e *Evaluator) crossValidate(users []models.User, cafeIDs []int, sentAndRate map[int]float64, folds int) models.CrossValidationReport {
	report := models.CrossValidationReport{PerFold: map[string]models.FoldResult{}}
	if len(users) == 0 || folds <= 0 {
		return report
	}

	foldOf := assignFolds(users, folds, e.params.CVSeed)

	var allMSE, allMAE []float64
	for fold := 0; fold < folds; fold++ {
		var train, test []models.User
		for _, u := range users {
			if foldOf[u.UserID] == fold {
				test = append(test, u)
			} else {
				train = append(train, u)
			}
		}

		model := cf.Build(train, cafeIDs, e.params.KNNMaxNeighbors)
		// Test users are held out of train entirely, so there's no self
		// to exclude here (spec.md §4.4's exclusion only matters within
		// a single population that contains the target).
		transitions := signals.VisitTransitions(train, -1)

		var foldMSE, foldMAE []float64
		for _, u := range test {
			if len(u.VisitHistory) < 2 {
				continue
			}
			targetCafe := u.VisitHistory[len(u.VisitHistory)-1]
			history := u.VisitHistory[:len(u.VisitHistory)-1]

			mustInclude := map[int]struct{}{targetCafe: {}}
			ranked, fused := e.scoreAndRank(model, transitions, train, u, history, sentAndRate, mustInclude)
			if len(ranked) == 0 {
				continue
			}

			var se, ae float64
			for _, id := range ranked {
				p := fused[id]
				a := 0.0
				if id == targetCafe {
					a = 1.0
				}
				se += (p - a) * (p - a)
				ae += math.Abs(p - a)
			}
			n := float64(len(ranked))
			foldMSE = append(foldMSE, se/n)
			foldMAE = append(foldMAE, ae/n)
		}

		rmse, mae := 0.0, 0.0
		if len(foldMSE) > 0 {
			rmse = math.Sqrt(mean(foldMSE))
			mae = mean(foldMAE)
		}
		report.PerFold["fold-"+itoa(fold+1)] = models.FoldResult{RMSE: rmse, MAE: mae}
		allMSE = append(allMSE, foldMSE...)
		allMAE = append(allMAE, foldMAE...)
	}

	if len(allMSE) > 0 {
		report.RMSE = math.Sqrt(mean(allMSE))
		report.MAE = mean(allMAE)
	}
	return report
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// assignFolds sorts users by id for determinism, shuffles them with a
// fixed seed, then partitions round-robin into folds (spec.md §4.8,
// grounded on original_source's identical sort-then-shuffle-then-split
// protocol).
func assignFolds(users []models.User, folds int, seed int64) map[int]int {
	sorted := make([]models.User, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })

	foldOf := make(map[int]int, len(sorted))
	for i, u := range sorted {
		foldOf[u.UserID] = i % folds
	}
	return foldOf
}
