package production

import (
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/units"
)

// Status follows a lot through its quality checks: every lot starts at J0
// and the day-14 pH reading settles it.
type Status string

const (
	StatusDay0         Status = "J0"
	StatusCompliant    Status = "conforme"
	StatusNonCompliant Status = "non_conforme"
)

type Batch struct {
	ID         int64
	LotCode    string
	ProducedAt time.Time
	RecipeID   int64
	Recipe     string
	Batches    float64
	Quantity   float64 // finished goods produced, in Unit
	Unit       string  // "portion", "pot", ...
	Status     Status
	Notes      string
	CreatedAt  time.Time
	Inputs     []Input
}

// Input is the quantity of one ingredient consumed by a production batch.
type Input struct {
	IngredientID int64
	Name         string
	QtyUsed      float64
	Unit         units.Unit
}

// Test is one pH reading taken on a lot, Day days after production.
type Test struct {
	ID       int64
	BatchID  int64
	Day      int
	Value    float64
	Result   string
	Notes    string
	TestedAt time.Time
}

type Reason string

const (
	ReasonProduction Reason = "production"
	ReasonSale       Reason = "vente"
	ReasonWaste      Reason = "rebut"
	ReasonDonation   Reason = "don"
	ReasonAdjust     Reason = "ajustement"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonProduction, ReasonSale, ReasonWaste, ReasonDonation, ReasonAdjust:
		return true
	}
	return false
}

// FinishedMove is one line of a lot's finished-goods ledger: +quantity when
// the lot is made, negative for what leaves it. Lines are never edited.
type FinishedMove struct {
	ID      int64
	BatchID int64
	Delta   float64
	Unit    string
	Reason  Reason
	At      time.Time
}
