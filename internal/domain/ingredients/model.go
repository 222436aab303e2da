package ingredients

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/units"
)

const DefaultCategory = "Autre"

type Ingredient struct {
	ID           int64
	Name         string
	Category     string
	SupplierID   int64  // 0 = no supplier
	Supplier     string // supplier name, for display
	SupplierCode string

	BaseUnit      units.Unit
	PackSize      float64
	PackUnit      units.Unit
	PurchasePrice decimal.Decimal
	// PricePerBaseUnit is derived from the four fields above and rewritten
	// on every save.
	PricePerBaseUnit decimal.Decimal

	CreatedAt time.Time
}
