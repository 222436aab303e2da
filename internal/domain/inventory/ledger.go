package inventory

import (
	"fmt"
	"math"

	"github.com/PoFerry/atelierculinairepof/internal/units"
)

// Balance is the on-hand quantity of one ingredient in its base unit.
// Skipped counts movements whose unit could not be converted.
type Balance struct {
	Qty     float64
	Skipped int
}

// Signed converts m to base and applies the movement sign: in counts as
// +|qty|, out as -|qty| and adjust keeps the stored sign.
func Signed(m Movement, base units.Unit) (float64, error) {
	q, err := units.Convert(m.Qty, m.Unit, base)
	if err != nil {
		return 0, err
	}
	switch m.Type {
	case MoveIn:
		return math.Abs(q), nil
	case MoveOut:
		return -math.Abs(q), nil
	case MoveAdjust:
		return q, nil
	}
	return 0, fmt.Errorf("unknown movement type %q", m.Type)
}

// CurrentStock folds the movements of one ingredient.
func CurrentStock(moves []Movement, base units.Unit) Balance {
	var b Balance
	for _, m := range moves {
		q, err := Signed(m, base)
		if err != nil {
			b.Skipped++
			continue
		}
		b.Qty += q
	}
	return b
}

// StockMap folds movements of many ingredients. Movements of ingredients
// missing from bases are counted as skipped under their own id.
func StockMap(moves []Movement, bases map[int64]units.Unit) map[int64]Balance {
	out := make(map[int64]Balance, len(bases))
	for _, m := range moves {
		b := out[m.IngredientID]
		base, ok := bases[m.IngredientID]
		if !ok {
			b.Skipped++
			out[m.IngredientID] = b
			continue
		}
		q, err := Signed(m, base)
		if err != nil {
			b.Skipped++
		} else {
			b.Qty += q
		}
		out[m.IngredientID] = b
	}
	return out
}
