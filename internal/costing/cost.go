// Package costing prices ingredients, recipes and menus and sums the
// ingredient quantities a menu needs. Everything here is a pure fold over
// records already loaded by the caller.
package costing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

var (
	ErrInvalidPackSize = errors.New("pack size must be > 0")
	ErrNegativePrice   = errors.New("purchase price must be >= 0")
)

// PricePerBaseUnit = purchasePrice / packSize expressed in baseUnit.
func PricePerBaseUnit(packSize float64, packUnit, baseUnit units.Unit, purchasePrice decimal.Decimal) (decimal.Decimal, error) {
	if purchasePrice.IsNegative() {
		return decimal.Zero, ErrNegativePrice
	}
	inBase, err := units.Convert(packSize, packUnit, baseUnit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pack unit: %w", err)
	}
	if inBase <= 0 {
		return decimal.Zero, fmt.Errorf("%w (got %v %s)", ErrInvalidPackSize, packSize, packUnit)
	}
	return purchasePrice.Div(decimal.NewFromFloat(inBase)), nil
}

type Line struct {
	IngredientID int64
	Name         string
	QtyBase      float64
	BaseUnit     units.Unit
	Cost         decimal.Decimal
}

type Cost struct {
	Total      decimal.Decimal
	PerServing decimal.Decimal
	Lines      []Line
	Skipped    int // items whose unit does not convert to the ingredient base
}

// ItemQtyBase converts a recipe item to its ingredient's base unit.
func ItemQtyBase(it recipes.Item) (float64, error) {
	return units.Convert(it.Quantity, it.Unit, it.Ingredient.BaseUnit)
}

func RecipeCost(r recipes.Recipe) Cost {
	c := Cost{Total: decimal.Zero}
	for _, it := range r.Items {
		q, err := ItemQtyBase(it)
		if err != nil {
			c.Skipped++
			continue
		}
		lineCost := decimal.NewFromFloat(q).Mul(it.Ingredient.PricePerBaseUnit)
		c.Lines = append(c.Lines, Line{
			IngredientID: it.IngredientID,
			Name:         it.Ingredient.Name,
			QtyBase:      q,
			BaseUnit:     it.Ingredient.BaseUnit,
			Cost:         lineCost,
		})
		c.Total = c.Total.Add(lineCost)
	}
	servings := r.Servings
	if servings < 1 {
		servings = 1
	}
	c.PerServing = c.Total.Div(decimal.NewFromInt(int64(servings)))
	return c
}

type MenuCostLine struct {
	RecipeID   int64
	Recipe     string
	Batches    float64
	Portions   float64
	BatchCost  decimal.Decimal
	Total      decimal.Decimal
	PerServing decimal.Decimal
}

type MenuCost struct {
	Total   decimal.Decimal
	Lines   []MenuCostLine
	Skipped int
}

// MenuCostOf prices every menu line at recipe cost x batches. Lines with
// batches <= 0 are listed at zero.
func MenuCostOf(m menus.Menu) MenuCost {
	mc := MenuCost{Total: decimal.Zero}
	for _, it := range m.Items {
		rc := RecipeCost(it.Recipe)
		mc.Skipped += rc.Skipped
		batches := it.Batches
		if batches < 0 {
			batches = 0
		}
		lineTotal := rc.Total.Mul(decimal.NewFromFloat(batches))
		mc.Lines = append(mc.Lines, MenuCostLine{
			RecipeID:   it.RecipeID,
			Recipe:     it.Recipe.Name,
			Batches:    batches,
			Portions:   PortionsFromBatches(batches, it.Recipe.Servings),
			BatchCost:  rc.Total,
			Total:      lineTotal,
			PerServing: rc.PerServing,
		})
		mc.Total = mc.Total.Add(lineTotal)
	}
	return mc
}
