package menus

import (
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
)

type Menu struct {
	ID        int64
	Name      string
	Notes     string
	CreatedAt time.Time
	Items     []Item
}

// Item puts a recipe on the menu Batches times its defined yield.
type Item struct {
	ID       int64
	MenuID   int64
	RecipeID int64
	Batches  float64
	Recipe   recipes.Recipe // filled in by the caller that resolves recipes
}

// RecipeIDs lists the distinct recipes referenced by the menu.
func (m Menu) RecipeIDs() []int64 {
	seen := make(map[int64]struct{}, len(m.Items))
	out := make([]int64, 0, len(m.Items))
	for _, it := range m.Items {
		if _, ok := seen[it.RecipeID]; ok {
			continue
		}
		seen[it.RecipeID] = struct{}{}
		out = append(out, it.RecipeID)
	}
	return out
}
