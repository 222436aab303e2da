package inventory

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PoFerry/atelierculinairepof/internal/units"
)

func TestCurrentStock(t *testing.T) {
	moves := []Movement{
		{IngredientID: 1, Qty: 1000, Unit: units.Gram, Type: MoveIn},
		{IngredientID: 1, Qty: 200, Unit: units.Gram, Type: MoveOut},
		{IngredientID: 1, Qty: -50, Unit: units.Gram, Type: MoveAdjust},
	}
	got := CurrentStock(moves, units.Gram)
	if got.Qty != 750 || got.Skipped != 0 {
		t.Fatalf("CurrentStock = %+v, want 750 g", got)
	}
}

func TestCurrentStockSignsAndUnits(t *testing.T) {
	moves := []Movement{
		{Qty: 2, Unit: units.Kilogram, Type: MoveIn},
		{Qty: -300, Unit: units.Gram, Type: MoveIn},      // in is always positive
		{Qty: -0.5, Unit: units.Kilogram, Type: MoveOut}, // out is always negative
		{Qty: 1, Unit: units.Liter, Type: MoveIn},        // not convertible to g
		{Qty: 25, Unit: units.Gram, Type: MoveAdjust},
	}
	got := CurrentStock(moves, units.Gram)
	want := Balance{Qty: 2000 + 300 - 500 + 25, Skipped: 1}
	if math.Abs(got.Qty-want.Qty) > 1e-9 || got.Skipped != want.Skipped {
		t.Fatalf("CurrentStock = %+v, want %+v", got, want)
	}
}

func TestCurrentStockEmpty(t *testing.T) {
	if got := CurrentStock(nil, units.Milliliter); got != (Balance{}) {
		t.Fatalf("CurrentStock(nil) = %+v", got)
	}
}

func TestStockMap(t *testing.T) {
	moves := []Movement{
		{IngredientID: 1, Qty: 1, Unit: units.Liter, Type: MoveIn},
		{IngredientID: 2, Qty: 12, Unit: units.Piece, Type: MoveIn},
		{IngredientID: 1, Qty: 250, Unit: units.Milliliter, Type: MoveOut},
		{IngredientID: 2, Qty: 3, Unit: units.Piece, Type: MoveOut},
		{IngredientID: 3, Qty: 5, Unit: units.Gram, Type: MoveIn},
	}
	bases := map[int64]units.Unit{1: units.Milliliter, 2: units.Piece}
	got := StockMap(moves, bases)
	want := map[int64]Balance{
		1: {Qty: 750},
		2: {Qty: 9},
		3: {Skipped: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("StockMap mismatch (-want +got):\n%s", diff)
	}
}

func TestSignedUnknownType(t *testing.T) {
	if _, err := Signed(Movement{Qty: 1, Unit: units.Gram, Type: "transfer"}, units.Gram); err == nil {
		t.Fatal("expected error for unknown movement type")
	}
}
