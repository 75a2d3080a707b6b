package upstream

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kopikita/cafereco/pkg/models"
)

// visitedIDKeys is the ordered key-preference list spec.md §4.1 mandates for
// extracting a numeric café id out of a visited-entry dict.
var visitedIDKeys = []string{"id_cafe", "nomor", "cafe_id", "id"}

// cafeIDKeys is the order spec.md §6 documents for café objects themselves:
// "nomor|id_cafe|id". Left undefined by spec.md if two differ for the same
// entity (§9 Open Questions) — this order is the one this engine commits to.
var cafeIDKeys = []string{"nomor", "id_cafe", "id"}

// toInt coerces a decoded JSON scalar (float64, json.Number, or string) to
// an int. Returns false if the value can't be coerced.
func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return n, true
	default:
		return 0, false
	}
}

// toFloat coerces a decoded JSON scalar to a float64.
func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parsePrice coerces a "harga" field to a non-negative int. Upstream prices
// are sometimes strings with "." as a thousands separator (e.g. "15.000").
func parsePrice(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return int(t), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ".", "")
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// firstInt applies an ordered key-preference list to a decoded dict and
// returns the first present, coercible integer value.
func firstInt(m map[string]interface{}, keys []string) (int, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if n, ok := toInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// decodeFlexibleList handles the three shapes spec.md §4.1 says a list-typed
// upstream field may arrive in: a native JSON array, a JSON-encoded string
// holding an array, or a comma-separated string of scalars. Non-parseable
// input yields an empty slice — this never errors, matching the "dropped
// silently" contract.
func decodeFlexibleList(raw interface{}) []interface{} {
	switch t := raw.(type) {
	case []interface{}:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		var arr []interface{}
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return arr
		}
		// Comma-separated string of scalars, e.g. "1,2,3".
		parts := strings.Split(s, ",")
		out := make([]interface{}, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	case nil:
		return nil
	default:
		return nil
	}
}

// parseVisitList normalizes a raw visit-history / visited-cafés field into
// an ordered slice of café ids, dropping non-parseable entries silently.
func parseVisitList(raw interface{}) []int {
	entries := decodeFlexibleList(raw)
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case map[string]interface{}:
			if id, ok := firstInt(v, visitedIDKeys); ok {
				ids = append(ids, id)
			}
		default:
			if id, ok := toInt(v); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// parseLikedMenus normalizes the "menu_yang_disukai" field into typed
// LikedMenu records. Entries missing a café id, menu name, or a
// non-negative price are dropped.
func parseLikedMenus(raw interface{}) []models.LikedMenu {
	entries := decodeFlexibleList(raw)
	out := make([]models.LikedMenu, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		cafeID, ok := firstInt(m, []string{"id_cafe", "cafe_id"})
		if !ok {
			continue
		}
		name, _ := m["nama_menu"].(string)
		if name == "" {
			if n, ok := m["menu_name"].(string); ok {
				name = n
			}
		}
		if name == "" {
			continue
		}
		priceRaw, hasPrice := m["harga"]
		if !hasPrice {
			priceRaw = m["price"]
		}
		price, ok := parsePrice(priceRaw)
		if !ok {
			continue
		}
		out = append(out, models.LikedMenu{CafeID: cafeID, MenuName: name, Price: price})
	}
	return out
}

// parseRawUser builds a canonical User from one decoded /api/users record.
func parseRawUser(m map[string]interface{}) models.User {
	userID, _ := firstInt(m, []string{"id_user", "user_id", "id"})
	return models.User{
		UserID:       userID,
		LikedMenus:   parseLikedMenus(m["menu_yang_disukai"]),
		VisitHistory: parseVisitList(m["cafe_telah_dikunjungi"]),
	}
}

// parseRawCafe builds a canonical Cafe from one decoded /api/data record,
// clamping rating into [0,5] per spec.md §3.
func parseRawCafe(m map[string]interface{}) models.Cafe {
	cafeID, _ := firstInt(m, cafeIDKeys)
	name, _ := m["nama_kafe"].(string)
	address, _ := m["alamat"].(string)

	rating := 0.0
	if v, ok := m["rating"]; ok {
		if f, ok := toFloat(v); ok {
			rating = f
		}
	}
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	var facilities *string
	if f, ok := m["fasilitas"].(string); ok && f != "" {
		facilities = &f
	}

	return models.Cafe{
		CafeID:     cafeID,
		Name:       name,
		Address:    address,
		Rating:     rating,
		Facilities: facilities,
	}
}

// parseReview builds a canonical Review out of one decoded review record,
// per spec.md §4.2 and the probabilistic/labeled/unknown sum type from
// Design Notes §9. Field-name fallbacks (p_pos/prob_pos, sentiment/label)
// are grounded on original_source/ubcf_api/context_normalize.py.
func parseReview(m map[string]interface{}) models.Review {
	pPos := firstFloat(m, "p_pos", "prob_pos")
	pNeu := firstFloat(m, "p_neu", "prob_neu")
	pNeg := firstFloat(m, "p_neg", "prob_neg")

	if pPos > 0 || pNeu > 0 || pNeg > 0 {
		return models.Review{Kind: models.ReviewProbabilistic, PPos: pPos, PNeu: pNeu, PNeg: pNeg}
	}

	label := firstString(m, "sentiment", "label")
	if label != "" {
		return models.Review{Kind: models.ReviewLabeled, Label: strings.ToLower(strings.TrimSpace(label))}
	}

	return models.Review{Kind: models.ReviewUnknown}
}

func firstFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := toFloat(v); ok {
				return f
			}
		}
	}
	return 0
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// parseSentimentPayload handles the two shapes GET /api/sentiment/{id} may
// return (spec.md §6, §9 Open Questions): a bare list of review records, or
// an object carrying a "reviews" list, or — defensively — an object whose
// values are themselves review lists.
func parseSentimentPayload(body []byte) []models.Review {
	var asList []map[string]interface{}
	if err := json.Unmarshal(body, &asList); err == nil {
		return mapReviews(asList)
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal(body, &asObject); err != nil {
		return nil
	}

	if reviews, ok := asObject["reviews"].([]interface{}); ok {
		return mapReviews(toMapSlice(reviews))
	}

	var collected []map[string]interface{}
	for _, v := range asObject {
		if list, ok := v.([]interface{}); ok {
			collected = append(collected, toMapSlice(list)...)
		}
	}
	return mapReviews(collected)
}

func toMapSlice(in []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(in))
	for _, v := range in {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func mapReviews(entries []map[string]interface{}) []models.Review {
	out := make([]models.Review, 0, len(entries))
	for _, e := range entries {
		out = append(out, parseReview(e))
	}
	return out
}
