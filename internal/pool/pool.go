// Package pool builds the candidate café pool a recommendation is ranked
// over: the union of each signal's top-N cafés, capped, minus cafés the
// user has already visited (spec.md §4.6).
package pool

import (
	"sort"

	"github.com/kopikita/cafereco/pkg/models"
)

// topN returns the N highest-scoring café ids from scores, ties broken by
// ascending café id for determinism.
func topN(scores models.ScoreMap, n int) []int {
	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// Build unions the top-N cafés from each signal (spec.md §4.6: top_n_each
// per signal, default 50), removes any café already visited by the user,
// caps the result at poolCap, and returns the remaining candidates in
// deterministic order (by café id).
func Build(signals []models.ScoreMap, topNEach, poolCap int, visited map[int]struct{}) []int {
	union := make(map[int]struct{})
	for _, s := range signals {
		for _, id := range topN(s, topNEach) {
			union[id] = struct{}{}
		}
	}

	candidates := make([]int, 0, len(union))
	for id := range union {
		if _, skip := visited[id]; skip {
			continue
		}
		candidates = append(candidates, id)
	}
	sort.Ints(candidates)

	if len(candidates) > poolCap {
		candidates = candidates[:poolCap]
	}
	return candidates
}

// VisitedSet converts a visit-history slice into a membership set.
func VisitedSet(visited []int) map[int]struct{} {
	out := make(map[int]struct{}, len(visited))
	for _, id := range visited {
		out[id] = struct{}{}
	}
	return out
}
