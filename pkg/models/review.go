package models

// ReviewKind discriminates the shape a single upstream review record
// actually carried, per Design Notes §9 ("Sentiment polymorphism"): a
// review is either a probability triple, a categorical label, or carries
// neither and is Unknown (skipped by the aggregator).
type ReviewKind int

const (
	ReviewUnknown ReviewKind = iota
	ReviewProbabilistic
	ReviewLabeled
)

// Review is the canonical parsed form of one upstream review record for a
// café. Probabilities need not sum to 1; Label is only meaningful when Kind
// is ReviewLabeled.
type Review struct {
	Kind  ReviewKind
	PPos  float64
	PNeu  float64
	PNeg  float64
	Label string
}
