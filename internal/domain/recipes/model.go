package recipes

import (
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type Recipe struct {
	ID           int64
	Name         string
	Category     string
	Servings     int // portions produced by one batch, >= 1
	Instructions string
	CreatedAt    time.Time
	Items        []Item
}

// Item is the quantity of one ingredient used by one batch of the recipe.
// Ingredient is the ingredient as it was read together with the recipe.
type Item struct {
	ID           int64
	RecipeID     int64
	IngredientID int64
	Quantity     float64
	Unit         units.Unit
	Ingredient   ingredients.Ingredient
}
