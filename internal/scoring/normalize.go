// Package scoring normalizes the four raw signals onto a common [0,1]
// scale and fuses them into a single ranking score (spec.md §4.5).
package scoring

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kopikita/cafereco/pkg/models"
)

// RobustNormalize rescales a raw score map by its percentile-th value
// (spec.md §4.5: "robust percentile normalization", default 95th),
// clamping the result to [0,1]. A café absent from raw scores 0. An empty
// or all-zero input returns an all-zero map rather than dividing by zero.
func RobustNormalize(raw models.ScoreMap, percentile float64) models.ScoreMap {
	out := make(models.ScoreMap, len(raw))
	if len(raw) == 0 {
		return out
	}

	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		values = append(values, v)
	}
	sort.Float64s(values)

	denom := stat.Quantile(percentile/100, stat.Empirical, values, nil)
	if denom <= 0 {
		return out
	}

	for cafeID, v := range raw {
		n := v / denom
		if n > 1 {
			n = 1
		}
		if n < 0 {
			n = 0
		}
		out[cafeID] = n
	}
	return out
}

// NormalizeCapped rescales a single value by a fixed cap (spec.md §4.5's
// "normalize_number"), used for the rating component: value/cap clamped
// to [0,1].
func NormalizeCapped(value, cap float64) float64 {
	if cap <= 0 {
		return 0
	}
	n := value / cap
	if n > 1 {
		n = 1
	}
	if n < 0 {
		n = 0
	}
	return n
}
