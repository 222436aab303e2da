package costing

import (
	"math"
	"sort"
	"strings"

	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type Need struct {
	IngredientID int64
	Name         string
	Category     string
	BaseUnit     units.Unit
	TotalQtyBase float64
	Supplier     string
}

type Needs struct {
	Items   map[int64]*Need
	Skipped int
}

// MenuNeeds sums, per ingredient, item quantity in base units x batches
// over every recipe on the menu. Lines with batches <= 0 add nothing and
// items that do not convert are counted in Skipped.
func MenuNeeds(m menus.Menu) Needs {
	n := Needs{Items: map[int64]*Need{}}
	for _, mi := range m.Items {
		if mi.Batches <= 0 {
			continue
		}
		for _, it := range mi.Recipe.Items {
			q, err := ItemQtyBase(it)
			if err != nil {
				n.Skipped++
				continue
			}
			need, ok := n.Items[it.IngredientID]
			if !ok {
				need = &Need{
					IngredientID: it.IngredientID,
					Name:         it.Ingredient.Name,
					Category:     it.Ingredient.Category,
					BaseUnit:     it.Ingredient.BaseUnit,
					Supplier:     it.Ingredient.Supplier,
				}
				n.Items[it.IngredientID] = need
			}
			need.TotalQtyBase += q * mi.Batches
		}
	}
	return n
}

// Sorted returns the needs ordered by name, case-insensitively.
func (n Needs) Sorted() []Need {
	out := make([]Need, 0, len(n.Items))
	for _, need := range n.Items {
		out = append(out, *need)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].IngredientID < out[j].IngredientID
	})
	return out
}

type Shortage struct {
	Need
	OnHand  float64
	ToOrder float64
}

// Shortfall compares needs with on-hand stock (base units, keyed by
// ingredient id). ToOrder is never negative.
func Shortfall(n Needs, onHand map[int64]float64) []Shortage {
	sorted := n.Sorted()
	out := make([]Shortage, 0, len(sorted))
	for _, need := range sorted {
		have := onHand[need.IngredientID]
		out = append(out, Shortage{
			Need:    need,
			OnHand:  have,
			ToOrder: math.Max(0, need.TotalQtyBase-have),
		})
	}
	return out
}

// BatchesFromPortions turns a portions figure into a batches factor.
func BatchesFromPortions(portions float64, servings int) float64 {
	if servings < 1 {
		servings = 1
	}
	return portions / float64(servings)
}

func PortionsFromBatches(batches float64, servings int) float64 {
	if servings < 1 {
		servings = 1
	}
	return batches * float64(servings)
}
