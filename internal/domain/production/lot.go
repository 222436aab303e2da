package production

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

// LotPrefix is "L" followed by the production date as YYMMDD.
func LotPrefix(producedAt time.Time) string {
	return "L" + producedAt.Format("060102")
}

// NextLotCode returns the lot code following last for that day
// (L251013-03 -> L251013-04). An empty or foreign last starts at -01.
func NextLotCode(producedAt time.Time, last string) (string, error) {
	prefix := LotPrefix(producedAt)
	n := 0
	if strings.HasPrefix(last, prefix+"-") {
		v, err := strconv.Atoi(strings.TrimPrefix(last, prefix+"-"))
		if err != nil {
			return "", fmt.Errorf("malformed lot code %q", last)
		}
		n = v
	}
	if n >= 99 {
		return "", fmt.Errorf("lot counter exhausted for %s", prefix)
	}
	return fmt.Sprintf("%s-%02d", prefix, n+1), nil
}

// ScaleInputs lists the recipe items multiplied by batches, in the units
// the recipe states. Items whose unit no longer converts to their
// ingredient's base unit are left out and counted in skipped.
func ScaleInputs(r recipes.Recipe, batches float64) (inputs []Input, skipped int) {
	inputs = make([]Input, 0, len(r.Items))
	for _, it := range r.Items {
		if _, err := units.Convert(it.Quantity, it.Unit, it.Ingredient.BaseUnit); err != nil {
			skipped++
			continue
		}
		inputs = append(inputs, Input{
			IngredientID: it.IngredientID,
			Name:         it.Ingredient.Name,
			QtyUsed:      it.Quantity * batches,
			Unit:         it.Unit,
		})
	}
	return inputs, skipped
}
