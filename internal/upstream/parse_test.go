package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeFlexibleList(t *testing.T) {
	t.Run("native JSON array passes through", func(t *testing.T) {
		got := decodeFlexibleList([]interface{}{"a", "b"})
		assert.Equal(t, []interface{}{"a", "b"}, got)
	})

	t.Run("JSON-encoded string array is decoded", func(t *testing.T) {
		got := decodeFlexibleList(`[1,2,3]`)
		assert.Len(t, got, 3)
	})

	t.Run("comma-separated scalar string is split", func(t *testing.T) {
		got := decodeFlexibleList("1, 2, 3")
		assert.Equal(t, []interface{}{"1", "2", "3"}, got)
	})

	t.Run("an empty string yields nil", func(t *testing.T) {
		assert.Nil(t, decodeFlexibleList(""))
	})
}

func TestParseVisitList(t *testing.T) {
	t.Run("a list of bare ids", func(t *testing.T) {
		got := parseVisitList([]interface{}{1.0, 2.0})
		assert.Equal(t, []int{1, 2}, got)
	})

	t.Run("a list of dicts uses the visited-entry key preference order", func(t *testing.T) {
		got := parseVisitList([]interface{}{
			map[string]interface{}{"id_cafe": 5.0},
			map[string]interface{}{"nomor": 6.0},
		})
		assert.Equal(t, []int{5, 6}, got)
	})

	t.Run("a comma-separated string of ids", func(t *testing.T) {
		got := parseVisitList("3,4")
		assert.Equal(t, []int{3, 4}, got)
	})
}

func TestParseLikedMenus(t *testing.T) {
	t.Run("parses café id, name and price with field fallbacks", func(t *testing.T) {
		raw := []interface{}{
			map[string]interface{}{"id_cafe": 1.0, "nama_menu": "Latte", "harga": "15.000"},
			map[string]interface{}{"cafe_id": 2.0, "menu_name": "Espresso", "price": 10000.0},
		}
		got := parseLikedMenus(raw)
		assert.Len(t, got, 2)
		assert.Equal(t, 1, got[0].CafeID)
		assert.Equal(t, "Latte", got[0].MenuName)
		assert.Equal(t, 15000, got[0].Price)
		assert.Equal(t, 10000, got[1].Price)
	})

	t.Run("drops an entry missing a café id", func(t *testing.T) {
		raw := []interface{}{map[string]interface{}{"nama_menu": "Latte", "harga": 1000.0}}
		got := parseLikedMenus(raw)
		assert.Empty(t, got)
	})

	t.Run("drops an entry with a negative price", func(t *testing.T) {
		raw := []interface{}{map[string]interface{}{"id_cafe": 1.0, "harga": -5.0}}
		got := parseLikedMenus(raw)
		assert.Empty(t, got)
	})
}

func TestParseRawCafe(t *testing.T) {
	t.Run("clamps an out-of-range rating into [0,5]", func(t *testing.T) {
		c := parseRawCafe(map[string]interface{}{"nomor": 1.0, "rating": 9.0})
		assert.Equal(t, 5.0, c.Rating)
	})

	t.Run("prefers nomor over id_cafe for café objects", func(t *testing.T) {
		c := parseRawCafe(map[string]interface{}{"nomor": 1.0, "id_cafe": 2.0})
		assert.Equal(t, 1, c.CafeID)
	})

	t.Run("facilities is nil when absent", func(t *testing.T) {
		c := parseRawCafe(map[string]interface{}{"nomor": 1.0})
		assert.Nil(t, c.Facilities)
	})
}

func TestParseReview(t *testing.T) {
	t.Run("probabilistic fields take priority over a label", func(t *testing.T) {
		r := parseReview(map[string]interface{}{"p_pos": 0.8, "label": "negative"})
		assert.Equal(t, 0.8, r.PPos)
	})

	t.Run("falls back to prob_pos naming", func(t *testing.T) {
		r := parseReview(map[string]interface{}{"prob_pos": 0.6})
		assert.InDelta(t, 0.6, r.PPos, 1e-9)
	})

	t.Run("a labeled review lowercases and trims its label", func(t *testing.T) {
		r := parseReview(map[string]interface{}{"sentiment": " Positive "})
		assert.Equal(t, "positive", r.Label)
	})

	t.Run("neither probability nor label is Unknown", func(t *testing.T) {
		r := parseReview(map[string]interface{}{"comment": "great"})
		assert.Equal(t, 0, int(r.Kind))
	})
}

func TestParseSentimentPayload(t *testing.T) {
	t.Run("a bare JSON list of reviews", func(t *testing.T) {
		got := parseSentimentPayload([]byte(`[{"p_pos":0.9}]`))
		assert.Len(t, got, 1)
	})

	t.Run("an object wrapping a reviews list", func(t *testing.T) {
		got := parseSentimentPayload([]byte(`{"reviews":[{"label":"positive"}]}`))
		assert.Len(t, got, 1)
	})

	t.Run("malformed JSON yields no reviews", func(t *testing.T) {
		got := parseSentimentPayload([]byte(`not json`))
		assert.Nil(t, got)
	})
}
