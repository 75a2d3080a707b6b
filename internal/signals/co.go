package signals

import (
	"sort"

	"github.com/kopikita/cafereco/pkg/models"
)

// MenuCooccurrence scores each café by how many distinct menu names it
// shares with the target user's liked menus, across every other user's
// liked-menu records (spec.md §4.4). The target user's own liked-menu
// records never contribute.
func MenuCooccurrence(users []models.User, targetUserID int, targetLikedNames map[string]struct{}) models.ScoreMap {
	if len(targetLikedNames) == 0 {
		return nil
	}

	shared := make(map[int]map[string]struct{})
	for _, u := range users {
		if u.UserID == targetUserID {
			continue
		}
		for _, m := range u.LikedMenus {
			if _, liked := targetLikedNames[m.MenuName]; liked {
				if shared[m.CafeID] == nil {
					shared[m.CafeID] = make(map[string]struct{})
				}
				shared[m.CafeID][m.MenuName] = struct{}{}
			}
		}
	}

	scores := make(models.ScoreMap, len(shared))
	for cafeID, names := range shared {
		scores[cafeID] = float64(len(names))
	}
	return scores
}

// MatchedMenuNames returns the distinct menu names, shared with the
// target user's liked menus, that other users liked at cafeID — the
// evidence behind that café's co-occurrence score.
func MatchedMenuNames(users []models.User, targetUserID, cafeID int, targetLikedNames map[string]struct{}) []string {
	seen := make(map[string]struct{})
	for _, u := range users {
		if u.UserID == targetUserID {
			continue
		}
		for _, m := range u.LikedMenus {
			if m.CafeID != cafeID {
				continue
			}
			if _, liked := targetLikedNames[m.MenuName]; liked {
				seen[m.MenuName] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
