package models

// Cafe is the canonical café record. Rating is clamped to [0,5] by the
// upstream parser before it ever reaches this struct; a missing rating is
// represented as 0, per spec.
type Cafe struct {
	CafeID     int     `json:"cafe_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Rating     float64 `json:"rating"`
	Facilities *string `json:"facilities,omitempty"`
}
