// Package sentiment aggregates a café's raw reviews into a single Bayesian-
// smoothed positivity score in [0,1] (spec.md §4.2), caching the result per
// café id so repeated recommendation requests don't re-walk the same
// review list within the TTL window.
package sentiment

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kopikita/cafereco/internal/cache"
	"github.com/kopikita/cafereco/pkg/models"
)

// Fetcher is the subset of upstream.Client the aggregator depends on.
type Fetcher interface {
	GetSentiment(ctx context.Context, cafeID int) []models.Review
}

// Prior is the Bayesian smoothing prior from spec.md §4.2: a global mean
// mu and a pseudo-count c that pulls low-volume cafés toward it.
type Prior struct {
	Mu float64
	C  float64
}

type Aggregator struct {
	fetcher Fetcher
	prior   Prior
	cache   *cache.Store[float64]
	redis   *cache.RedisTier
}

func New(fetcher Fetcher, prior Prior, ttl time.Duration) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		prior:   prior,
		cache:   cache.NewStore[float64](ttl, ttl*10),
	}
}

// WithRedisTier attaches an optional second-tier cache shared across
// process restarts and instances. A nil tier is a no-op (spec.md §9:
// the cache is a value the engine owns, not required infrastructure).
func (a *Aggregator) WithRedisTier(tier *cache.RedisTier) *Aggregator {
	a.redis = tier
	return a
}

// Score returns the smoothed sentiment for a café and whether any reviews
// were resolvable at all. A café with zero classifiable reviews has no
// sentiment opinion (ok=false) rather than defaulting to the prior,
// letting callers distinguish "neutral" from "unknown" (spec.md §4.2).
func (a *Aggregator) Score(ctx context.Context, cafeID int) (float64, bool) {
	key := keyFor(cafeID)

	if v, ok := a.cache.Get(key); ok {
		return v, true
	}
	if v, ok := a.redis.GetFloat(ctx, redisKey(cafeID)); ok {
		a.cache.Set(key, v)
		return v, true
	}

	reviews := a.fetcher.GetSentiment(ctx, cafeID)
	score, ok := smooth(reviews, a.prior)
	if !ok {
		return 0, false
	}

	a.cache.Set(key, score)
	a.redis.SetFloat(ctx, redisKey(cafeID), score)
	return score, true
}

// InvalidateCache drops every cached sentiment score, in both tiers.
func (a *Aggregator) InvalidateCache(ctx context.Context) {
	a.cache.Invalidate()
	a.redis.Invalidate(ctx, "sentiment:")
}

func keyFor(cafeID int) string {
	return strconv.Itoa(cafeID)
}

func redisKey(cafeID int) string {
	return "sentiment:" + strconv.Itoa(cafeID)
}

// smooth reduces a café's reviews to a single positivity score, per
// spec.md §4.2: each review contributes a [0,1] positivity value — a
// probabilistic review via p_pos + 0.5*p_neu, a labeled review via
// pos/neg prefix matching (anything else counts as neutral), and only an
// empty label is dropped. The raw mean is then pulled toward the prior by
// c pseudo-observations:
//
//	smoothed = (raw_mean*n + mu*c) / (n+c)
//
// clamped to [0,1]. ok is false when there are zero classifiable reviews.
func smooth(reviews []models.Review, prior Prior) (float64, bool) {
	var sum float64
	var n float64

	for _, r := range reviews {
		switch r.Kind {
		case models.ReviewProbabilistic:
			sum += r.PPos + 0.5*r.PNeu
			n++
		case models.ReviewLabeled:
			if v, ok := labelPositivity(r.Label); ok {
				sum += v
				n++
			}
		}
	}

	if n == 0 {
		return 0, false
	}

	rawMean := sum / n
	smoothed := (rawMean*n + prior.Mu*prior.C) / (n + prior.C)

	if smoothed < 0 {
		smoothed = 0
	}
	if smoothed > 1 {
		smoothed = 1
	}
	return smoothed, true
}

// labelPositivity maps a free-text label to a positivity value by prefix,
// not exact match, so "positif"/"negatif"/"netral" (and anything else this
// Indonesian-domain corpus produces) score rather than get dropped: any
// present, non-empty label that isn't pos/neg-prefixed counts as neutral
// 0.5, matching original_source/ubcf_api/context_normalize.py.
func labelPositivity(label string) (float64, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return 0, false
	}
	switch {
	case strings.HasPrefix(label, "pos"):
		return 1.0, true
	case strings.HasPrefix(label, "neg"):
		return 0.0, true
	default:
		return 0.5, true
	}
}
