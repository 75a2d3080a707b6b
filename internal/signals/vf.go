// Package signals computes the visit-transition and menu-co-occurrence
// recommendation signals (spec.md §4.4), independent of the CF
// model.
package signals

import "github.com/kopikita/cafereco/pkg/models"

// VisitTransitions builds the Markov-1 transition frequency table from
// every user except excludeUserID: for every consecutive pair in each
// other user's visit history, transitions[a][b] counts how often b was
// visited immediately after a (spec.md §4.4 — the target's own sequence
// contributes queries into this table, never entries to it).
func VisitTransitions(users []models.User, excludeUserID int) map[int]models.ScoreMap {
	transitions := make(map[int]models.ScoreMap)
	for _, u := range users {
		if u.UserID == excludeUserID {
			continue
		}
		for i := 0; i+1 < len(u.VisitHistory); i++ {
			from, to := u.VisitHistory[i], u.VisitHistory[i+1]
			if transitions[from] == nil {
				transitions[from] = make(models.ScoreMap)
			}
			transitions[from][to]++
		}
	}
	return transitions
}

// VisitFrequencyScores accumulates, for every café `a` in the target
// user's own visit sequence, the transition counts out of `a` in the
// other-users' table (spec.md §4.4). An empty visit history, or one with
// no observed transitions, yields nil (cold-start users are turned away by
// the recommender before this is called).
func VisitFrequencyScores(transitions map[int]models.ScoreMap, visitHistory []int) models.ScoreMap {
	if len(visitHistory) == 0 {
		return nil
	}
	out := make(models.ScoreMap)
	for _, a := range visitHistory {
		for cafeID, count := range transitions[a] {
			out[cafeID] += count
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
