package models

// LikedMenu is one entry of a user's liked-menu list: a café id, the menu
// name, and its price. Price is always >= 0; upstream payloads that fail to
// coerce to a non-negative integer are dropped during parsing.
type LikedMenu struct {
	CafeID   int    `json:"cafe_id"`
	MenuName string `json:"menu_name"`
	Price    int    `json:"price"`
}

// User is the canonical, typed record the engine operates on — the result of
// normalizing whatever shape the collaborator API returned (native list,
// JSON-encoded string, or comma-separated string) for liked menus and visit
// history.
type User struct {
	UserID       int         `json:"user_id"`
	LikedMenus   []LikedMenu `json:"liked_menus"`
	VisitHistory []int       `json:"visit_history"`
}

// LikedMenuNames returns the set of distinct menu names the user likes,
// used by the menu co-occurrence signal.
func (u User) LikedMenuNames() map[string]struct{} {
	names := make(map[string]struct{}, len(u.LikedMenus))
	for _, m := range u.LikedMenus {
		names[m.MenuName] = struct{}{}
	}
	return names
}
