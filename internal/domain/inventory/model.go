package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type MoveType string

const (
	MoveIn     MoveType = "in"
	MoveOut    MoveType = "out"
	MoveAdjust MoveType = "adjust" // signed correction, stored as given
)

func (t MoveType) Valid() bool {
	switch t {
	case MoveIn, MoveOut, MoveAdjust:
		return true
	}
	return false
}

// Movement is one line of the stock ledger. Movements are never edited or
// deleted; a wrong entry is corrected by a new MoveAdjust.
type Movement struct {
	ID           int64
	IngredientID int64
	Qty          float64
	Unit         units.Unit
	Type         MoveType
	UnitCost     decimal.Decimal
	Note         string
	CreatedAt    time.Time
}
