package production

import "time"

// DefaultPHMax is the acidity limit for shelf-stable preserves.
const DefaultPHMax = 4.6

const (
	ResultOK      = "OK"
	ResultAtRisk  = "À risque"
	CheckDay      = 14
	checkEarliest = 12
	checkLatest   = 16
)

// PHResult grades a reading against phMax.
func PHResult(value, phMax float64) string {
	if value <= phMax {
		return ResultOK
	}
	return ResultAtRisk
}

// StatusAfterTest returns the status a reading moves the lot to. Only the
// day-14 reading decides; other days leave the status as it is.
func StatusAfterTest(current Status, day int, value, phMax float64) Status {
	if day != CheckDay {
		return current
	}
	if value <= phMax {
		return StatusCompliant
	}
	return StatusNonCompliant
}

// CheckWindow returns the half-open production range [from, to) of lots
// whose day-14 reading is due on now's date: made 12 to 16 days before.
func CheckWindow(now time.Time) (from, to time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -checkLatest), day.AddDate(0, 0, -checkEarliest+1)
}

// FinishedStock folds a lot's finished-goods ledger.
func FinishedStock(moves []FinishedMove) float64 {
	var sum float64
	for _, m := range moves {
		sum += m.Delta
	}
	return sum
}
