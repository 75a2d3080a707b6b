package scoring

import "github.com/kopikita/cafereco/pkg/models"

// Weights are the fusion weights from spec.md §4.5: cf + vf + co +
// sent_and_rate = 1.0.
type Weights struct {
	CF          float64
	VF          float64
	CO          float64
	SentAndRate float64
}

// SentAndRate combines a café's normalized rating and sentiment into the
// single "sent_and_rate" component spec.md §4.5 fuses in: their mean.
// Missing sentiment is treated as neutral (0.5) for fusion purposes even
// though the aggregator itself reports it as "unknown", not 0.5
// (spec.md §9 Open Questions).
func SentAndRate(normalizedRating float64, sentiment float64, hasSentiment bool) float64 {
	if !hasSentiment {
		sentiment = 0.5
	}
	return (normalizedRating + sentiment) / 2
}

// Fuse computes the final weighted score for one café from its four
// normalized components (spec.md §4.5).
func Fuse(w Weights, cf, vf, co, sentAndRate float64) float64 {
	return w.CF*cf + w.VF*vf + w.CO*co + w.SentAndRate*sentAndRate
}

// FuseAll combines normalized per-café signal maps into a single
// ScoreMap over the union of cafés present in any of them.
func FuseAll(w Weights, cfScores, vfScores, coScores models.ScoreMap, sentAndRate map[int]float64) models.ScoreMap {
	out := make(models.ScoreMap)
	seen := make(map[int]struct{})
	for id := range cfScores {
		seen[id] = struct{}{}
	}
	for id := range vfScores {
		seen[id] = struct{}{}
	}
	for id := range coScores {
		seen[id] = struct{}{}
	}
	for id := range sentAndRate {
		seen[id] = struct{}{}
	}

	for id := range seen {
		out[id] = Fuse(w, cfScores[id], vfScores[id], coScores[id], sentAndRate[id])
	}
	return out
}
