// Package cf builds the user-based collaborative filtering model
// (spec.md §4.3): a mean-centered user x café interaction matrix, a
// cosine-similarity neighbourhood over it, and a KNN prediction step.
package cf

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/kopikita/cafereco/pkg/models"
)

// Model is the fitted CF state for one snapshot of users/cafés. It is
// rebuilt per recommendation request from the data the Data Access Layer
// currently holds (spec.md §5: no persisted, incrementally-updated model).
type Model struct {
	userIndex map[int]int // user id -> row
	cafeIndex map[int]int // cafe id -> column
	cafeIDs   []int       // column -> cafe id

	raw        *mat.Dense // users x cafes, raw interaction values
	centered   *mat.Dense // users x cafes, mean-centered per user
	similarity *mat.Dense // users x users, cosine similarity of centered rows
	distance   *mat.Dense // users x users, 1 - similarity (KNN ordering only)
	maxK       int
}

// Build fits a Model from the interaction matrix: cell[u][c] is the
// average price across user u's liked menu items at café c (spec.md §3,
// §4.3). maxKNeighbors caps neighbourhood size; the effective k used at
// prediction time is min(maxKNeighbors, len(users)-1).
func Build(users []models.User, cafeIDs []int, maxKNeighbors int) *Model {
	userIndex := make(map[int]int, len(users))
	for i, u := range users {
		userIndex[u.UserID] = i
	}

	cafeIndex := make(map[int]int, len(cafeIDs))
	for j, id := range cafeIDs {
		cafeIndex[id] = j
	}

	nUsers := len(users)
	nCafes := len(cafeIDs)
	raw := mat.NewDense(nUsers, nCafes, nil)

	for i, u := range users {
		sums := make(map[int]float64)
		counts := make(map[int]int)
		for _, m := range u.LikedMenus {
			sums[m.CafeID] += float64(m.Price)
			counts[m.CafeID]++
		}
		for cafeID, total := range sums {
			j, ok := cafeIndex[cafeID]
			if !ok {
				continue
			}
			raw.Set(i, j, total/float64(counts[cafeID]))
		}
	}

	centered := meanCenterRows(raw)
	similarity := cosineSimilarity(centered)
	distance := toDistance(similarity)

	return &Model{
		userIndex:  userIndex,
		cafeIndex:  cafeIndex,
		cafeIDs:    cafeIDs,
		raw:        raw,
		centered:   centered,
		similarity: similarity,
		distance:   distance,
		maxK:       maxKNeighbors,
	}
}

// meanCenterRows subtracts each row's mean from its non-zero interaction
// cells, matching the original implementation's pivot-table centering:
// a user's "no interaction" cells stay at zero, only observed cells shift.
func meanCenterRows(raw *mat.Dense) *mat.Dense {
	r, c := raw.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := raw.RawRowView(i)
		var sum float64
		var n int
		for _, v := range row {
			if v != 0 {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		mean := sum / float64(n)
		for j, v := range row {
			if v != 0 {
				out.Set(i, j, v-mean)
			}
		}
	}
	return out
}

// cosineSimilarity computes pairwise cosine similarity across rows via the
// normalized Gram matrix, clamping to [-1,1] and forcing the diagonal to
// self-similarity 1 (spec.md §4.3). This signed similarity S[u,v] is what
// PredictScores weights neighbours by, not the derived distance.
func cosineSimilarity(x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()

	norms := make([]float64, r)
	for i := 0; i < r; i++ {
		norms[i] = mat.Norm(x.RowView(i), 2)
	}

	var gram mat.Dense
	gram.Mul(x, x.T())

	sim := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			if i == j {
				sim.Set(i, j, 1)
				continue
			}
			s := gram.At(i, j) / (norms[i]*norms[j] + 1e-8)
			if s > 1 {
				s = 1
			}
			if s < -1 {
				s = -1
			}
			sim.Set(i, j, s)
		}
	}
	return sim
}

// toDistance derives the 1-similarity matrix KNN neighbour selection sorts
// by; the signed similarity itself, not this distance, weights predictions.
func toDistance(sim *mat.Dense) *mat.Dense {
	r, c := sim.Dims()
	dist := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dist.Set(i, j, 1-sim.At(i, j))
		}
	}
	return dist
}

// neighbor is one KNN result: the user's row index and its distance to
// the query user.
type neighbor struct {
	row      int
	distance float64
}

// neighbors returns the k nearest users to userID by precomputed distance,
// excluding the user itself. k is clamped to min(maxKNeighbors, n-1).
func (m *Model) neighbors(userID int) []neighbor {
	row, ok := m.userIndex[userID]
	if !ok {
		return nil
	}

	nUsers, _ := m.distance.Dims()
	k := m.maxK
	if k > nUsers-1 {
		k = nUsers - 1
	}
	if k <= 0 {
		return nil
	}

	candidates := make([]neighbor, 0, nUsers-1)
	for other := 0; other < nUsers; other++ {
		if other == row {
			continue
		}
		candidates = append(candidates, neighbor{row: other, distance: m.distance.At(row, other)})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// PredictScores returns a raw UBCF score per café for userID: for each
// café the user has no raw interaction at, score(c) = Σ_v S[u,v]·M[v,c] /
// Σ_v |S[u,v]| over the KNN neighbourhood v, where S is signed cosine
// similarity and M is the raw (uncentered) interaction matrix (spec.md
// §4.4, original `main.py`'s rec_menu_scores). Returns nil if userID has
// no fitted row.
func (m *Model) PredictScores(userID int) models.ScoreMap {
	row, ok := m.userIndex[userID]
	if !ok {
		return nil
	}
	neighbors := m.neighbors(userID)
	if len(neighbors) == 0 {
		return nil
	}

	scores := make(models.ScoreMap)
	for j, cafeID := range m.cafeIDs {
		if m.raw.At(row, j) != 0 {
			continue
		}
		var num, den float64
		for _, nb := range neighbors {
			s := m.similarity.At(row, nb.row)
			num += s * m.raw.At(nb.row, j)
			den += math.Abs(s)
		}
		if den == 0 {
			continue
		}
		score := num / den
		if score > 0 {
			scores[cafeID] = score
		}
	}
	return scores
}

// PredictForUser scores every fitted café for a user who may not be part
// of this model's training population (spec.md §4.8's k-fold CV, where a
// fold's test users are held out of the fold's own model). It computes
// the user's own raw and mean-centered interaction vectors on the fly,
// ranks training users by cosine similarity of the centered vector, and
// applies the same signed-similarity-over-raw-value formula as
// PredictScores (spec.md §4.4) rather than looking up a precomputed row.
func (m *Model) PredictForUser(user models.User, maxKNeighbors int) models.ScoreMap {
	nCafes := len(m.cafeIDs)
	rawVec := make([]float64, nCafes)

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, lm := range user.LikedMenus {
		sums[lm.CafeID] += float64(lm.Price)
		counts[lm.CafeID]++
	}
	for cafeID, total := range sums {
		if j, ok := m.cafeIndex[cafeID]; ok {
			rawVec[j] = total / float64(counts[cafeID])
		}
	}

	vec := make([]float64, nCafes)
	copy(vec, rawVec)
	var sum float64
	var n int
	for _, v := range vec {
		if v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	for j, v := range vec {
		if v != 0 {
			vec[j] = v - mean
		}
	}

	vecNorm := floats.Norm(vec, 2)
	if vecNorm == 0 {
		return nil
	}

	nUsers, _ := m.centered.Dims()
	sims := make([]float64, nUsers)
	candidates := make([]neighbor, 0, nUsers)
	for i := 0; i < nUsers; i++ {
		row := m.centered.RawRowView(i)
		rowNorm := mat.Norm(m.centered.RowView(i), 2)

		var dot float64
		for j, v := range vec {
			if v != 0 {
				dot += v * row[j]
			}
		}
		sim := dot / (vecNorm*rowNorm + 1e-8)
		if sim > 1 {
			sim = 1
		}
		if sim < -1 {
			sim = -1
		}
		sims[i] = sim
		candidates = append(candidates, neighbor{row: i, distance: 1 - sim})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	k := maxKNeighbors
	if k > len(candidates) {
		k = len(candidates)
	}
	candidates = candidates[:k]

	scores := make(models.ScoreMap)
	for j, cafeID := range m.cafeIDs {
		if rawVec[j] != 0 {
			continue
		}
		var num, den float64
		for _, nb := range candidates {
			s := sims[nb.row]
			num += s * m.raw.At(nb.row, j)
			den += math.Abs(s)
		}
		if den == 0 {
			continue
		}
		score := num / den
		if score > 0 {
			scores[cafeID] = score
		}
	}
	return scores
}

// PredictRating predicts a single user-café interaction value as the
// inverse-distance-weighted mean of the KNN neighbours' mean-centered
// values at that café. The evaluator does not call it; it scores with
// PredictScores and PredictForUser. math.NaN signals "no prediction
// available" (café absent from the model, or the user has no neighbours).
func (m *Model) PredictRating(userID, cafeID int) float64 {
	j, ok := m.cafeIndex[cafeID]
	if !ok {
		return math.NaN()
	}
	neighbors := m.neighbors(userID)
	if len(neighbors) == 0 {
		return math.NaN()
	}

	var weightedSum, weightTotal float64
	for _, nb := range neighbors {
		v := m.centered.At(nb.row, j)
		weight := 1 / (nb.distance + 1e-8)
		weightedSum += weight * v
		weightTotal += weight
	}
	if weightTotal == 0 {
		return math.NaN()
	}
	return weightedSum / weightTotal
}
