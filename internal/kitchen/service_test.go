package kitchen

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []IngredientInput{
		{Name: "Farine", Category: "Sec", Supplier: "Moulin", BaseUnit: "g", PackSize: 1, PackUnit: "kg", PurchasePrice: dec("10")},
		{Name: "Lait", BaseUnit: "ml", PackSize: 1, PackUnit: "l", PurchasePrice: dec("2")},
		{Name: "Oeufs", BaseUnit: "unité", PackSize: 12, PurchasePrice: dec("4.20")},
	} {
		if _, _, err := f.svc.SaveIngredient(ctx, in); err != nil {
			t.Fatalf("seed %s: %v", in.Name, err)
		}
	}
	_, _, err := f.svc.SaveRecipe(ctx, RecipeInput{Name: "Crêpes", Servings: 10, Items: []RecipeItemInput{
		{Ingredient: "Farine", Quantity: 250, Unit: "g"},
		{Ingredient: "Lait", Quantity: 0.5, Unit: "litre"},
		{Ingredient: "Oeufs", Quantity: 4},
	}})
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
}

func TestSaveIngredientComputesPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ing, created, err := f.svc.SaveIngredient(ctx, IngredientInput{
		Name: " Farine T55 ", Supplier: "  Moulin   Bio ", BaseUnit: "Grammes", PackSize: 2, PackUnit: "KG", PurchasePrice: dec("10"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created || ing.Name != "Farine T55" || ing.Category != "Autre" || ing.Supplier != "Moulin Bio" {
		t.Fatalf("ingredient = %+v, created %v", ing, created)
	}
	if ing.BaseUnit != units.Gram || ing.PackUnit != units.Kilogram || !ing.PricePerBaseUnit.Equal(dec("0.005")) {
		t.Fatalf("units/price = %s %s %s", ing.BaseUnit, ing.PackUnit, ing.PricePerBaseUnit)
	}

	ing, created, err = f.svc.SaveIngredient(ctx, IngredientInput{
		Name: "Farine T55", BaseUnit: "kg", PackSize: 500, PackUnit: "g", PurchasePrice: dec("2"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if created || !ing.PricePerBaseUnit.Equal(dec("0.004")) || ing.BaseUnit != units.Gram {
		t.Fatalf("update: created %v, ppu %s, base %s", created, ing.PricePerBaseUnit, ing.BaseUnit)
	}
	if len(f.ings.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(f.ings.rows))
	}
}

func TestSaveIngredientRejects(t *testing.T) {
	tests := []struct {
		name string
		in   IngredientInput
	}{
		{"empty name", IngredientInput{BaseUnit: "g", PackSize: 1, PurchasePrice: dec("1")}},
		{"unknown base", IngredientInput{Name: "x", BaseUnit: "bidule", PackSize: 1, PurchasePrice: dec("1")}},
		{"unknown pack", IngredientInput{Name: "x", BaseUnit: "g", PackUnit: "cup", PackSize: 1, PurchasePrice: dec("1")}},
		{"pack in other family", IngredientInput{Name: "x", BaseUnit: "g", PackUnit: "l", PackSize: 1, PurchasePrice: dec("1")}},
		{"zero pack", IngredientInput{Name: "x", BaseUnit: "g", PackSize: 0, PurchasePrice: dec("1")}},
		{"negative price", IngredientInput{Name: "x", BaseUnit: "g", PackSize: 1, PurchasePrice: dec("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, _, err := f.svc.SaveIngredient(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if len(f.ings.rows) != 0 {
				t.Fatal("invalid ingredient was stored")
			}
		})
	}
}

func TestSaveRecipeValidation(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	_, _, err := f.svc.SaveRecipe(ctx, RecipeInput{Name: "X", Servings: 1, Items: []RecipeItemInput{{Ingredient: "Sel", Quantity: 1}}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown ingredient: err = %v", err)
	}
	bad := []RecipeInput{
		{Name: "X", Servings: 0},
		{Name: "", Servings: 1},
		{Name: "X", Servings: 1, Items: []RecipeItemInput{{Ingredient: "Farine", Quantity: 1, Unit: "l"}}},
		{Name: "X", Servings: 1, Items: []RecipeItemInput{{Ingredient: "Farine", Quantity: 0}}},
		{Name: "X", Servings: 1, Items: []RecipeItemInput{{Ingredient: "Farine", Quantity: 1}, {Ingredient: "Farine", Quantity: 2}}},
	}
	for i, in := range bad {
		if _, _, err := f.svc.SaveRecipe(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestRecipeCostFollowsIngredientPrice(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	// 250 g x 0.01 + 500 ml x 0.002 + 4 x 0.35
	_, c, err := f.svc.RecipeCost(ctx, "Crêpes")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Total.Equal(dec("4.9")) || !c.PerServing.Equal(dec("0.49")) {
		t.Fatalf("cost = %s / %s", c.Total, c.PerServing)
	}

	if _, _, err := f.svc.SaveIngredient(ctx, IngredientInput{Name: "Farine", BaseUnit: "g", PackSize: 1, PackUnit: "kg", PurchasePrice: dec("20")}); err != nil {
		t.Fatal(err)
	}
	_, c, _ = f.svc.RecipeCost(ctx, "Crêpes")
	if !c.Total.Equal(dec("7.4")) {
		t.Fatalf("after price change total = %s, want 7.4", c.Total)
	}

	if _, _, err := f.svc.RecipeCost(ctx, "Gaufres"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown recipe: err = %v", err)
	}
}

func TestMenuCostNeedsAndShoppingList(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	m, _, err := f.svc.SaveMenu(ctx, MenuInput{Name: "Brunch", Lines: []MenuLineInput{
		{Recipe: "Crêpes", Portions: 20},
		{Recipe: "Crêpes", Batches: 1},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Items) != 1 || m.Items[0].Batches != 3 {
		t.Fatalf("menu items = %+v", m.Items)
	}

	_, mc, err := f.svc.MenuCost(ctx, "Brunch")
	if err != nil {
		t.Fatal(err)
	}
	if !mc.Total.Equal(dec("14.7")) {
		t.Errorf("menu cost = %s, want 14.7", mc.Total)
	}

	_, needs, err := f.svc.MenuNeeds(ctx, "Brunch")
	if err != nil {
		t.Fatal(err)
	}
	sorted := needs.Sorted()
	if len(sorted) != 3 || sorted[0].Name != "Farine" || sorted[0].TotalQtyBase != 750 || sorted[0].Supplier != "Moulin" {
		t.Fatalf("needs = %+v", sorted)
	}

	if _, err := f.svc.RecordMovement(ctx, MovementInput{Ingredient: "Farine", Qty: 0.5, Unit: "kg", Type: inventory.MoveIn}); err != nil {
		t.Fatal(err)
	}
	list, err := f.svc.ShoppingList(ctx, "Brunch")
	if err != nil {
		t.Fatal(err)
	}
	if list[0].OnHand != 500 || list[0].ToOrder != 250 || list[2].ToOrder != 12 {
		t.Fatalf("shopping list = %+v", list)
	}

	if _, _, err := f.svc.SaveMenu(ctx, MenuInput{Name: "X", Lines: []MenuLineInput{{Recipe: "Crêpes", Batches: -1}}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative batches: err = %v", err)
	}
	if _, _, err := f.svc.MenuNeeds(ctx, "Dîner"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown menu: err = %v", err)
	}
}

func TestStockLedger(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	if _, err := f.svc.RecordMovement(ctx, MovementInput{Ingredient: "Farine", Qty: 1, Unit: "kg", Type: inventory.MoveIn, UnitCost: dec("10")}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RecordMovement(ctx, MovementInput{Ingredient: "Farine", Qty: 250, Unit: "g", Type: inventory.MoveOut}); err != nil {
		t.Fatal(err)
	}
	b, err := f.svc.CurrentStock(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Qty != 750 || b.Skipped != 0 {
		t.Fatalf("balance = %+v, want 750 g", b)
	}

	for _, in := range []MovementInput{
		{Ingredient: "Farine", Qty: -1, Type: inventory.MoveOut},
		{Ingredient: "Farine", Qty: 1, Unit: "l", Type: inventory.MoveIn},
		{Ingredient: "Farine", Qty: 0, Type: inventory.MoveAdjust},
		{Ingredient: "Farine", Qty: 1, Type: inventory.MoveType("gift")},
	} {
		if _, err := f.svc.RecordMovement(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: err = %v, want ErrInvalidInput", in, err)
		}
	}
	if len(f.stock.moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(f.stock.moves))
	}
}

func TestCountStockAddsAdjustment(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	if _, err := f.svc.RecordMovement(ctx, MovementInput{Ingredient: "Lait", Qty: 2, Unit: "l", Type: inventory.MoveIn}); err != nil {
		t.Fatal(err)
	}
	m, err := f.svc.CountStock(ctx, "Lait", 1.5, "l", "")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Type != inventory.MoveAdjust || m.Qty != -500 || m.Unit != units.Milliliter {
		t.Fatalf("adjust = %+v", m)
	}
	m, err = f.svc.CountStock(ctx, "Lait", 1500, "", "")
	if err != nil || m != nil {
		t.Fatalf("second count = %+v, %v; want nil, nil", m, err)
	}

	report, err := f.svc.StockReport(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range report {
		if l.Ingredient.Name == "Lait" && l.Qty != 1500 {
			t.Errorf("Lait = %v, want 1500", l.Qty)
		}
	}
}

func TestProduceBatch(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	b, err := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b.LotCode != "L251013-01" || len(b.Inputs) != 3 {
		t.Fatalf("batch = %+v", b)
	}
	if b.Status != production.StatusDay0 || b.Quantity != 20 || b.Unit != "portion" {
		t.Errorf("status/quantity = %s %v %s, want J0 20 portion", b.Status, b.Quantity, b.Unit)
	}
	b, err = f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1})
	if err != nil {
		t.Fatal(err)
	}
	if b.LotCode != "L251013-02" {
		t.Fatalf("second lot = %s", b.LotCode)
	}

	bal, _ := f.svc.CurrentStock(ctx, 2)
	if math.Abs(bal.Qty+1500) > 1e-9 {
		t.Errorf("Lait after production = %v, want -1500", bal.Qty)
	}

	if _, err := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero batches: err = %v", err)
	}

	recent, err := f.svc.RecentBatches(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].LotCode != "L251013-02" {
		t.Errorf("RecentBatches = %+v", recent)
	}
}

func TestProduceBatchLeavesOutUnconvertibleItems(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	// Lait switches to a mass base; the recipe still says 0.5 litre.
	if _, _, err := f.svc.SaveIngredient(ctx, IngredientInput{Name: "Lait", BaseUnit: "g", PackSize: 1, PackUnit: "kg", PurchasePrice: dec("2")}); err != nil {
		t.Fatal(err)
	}
	b, err := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Inputs) != 2 {
		t.Fatalf("inputs = %+v, want Farine and Oeufs only", b.Inputs)
	}
	for _, in := range b.Inputs {
		if in.Name == "Lait" {
			t.Errorf("Lait should not be consumed: %+v", in)
		}
	}
	lait, _ := f.svc.CurrentStock(ctx, 2)
	if lait.Qty != 0 || len(f.stock.moves) != 2 {
		t.Errorf("Lait = %v, moves = %d; want 0 and 2", lait.Qty, len(f.stock.moves))
	}
}

func TestRecordPH(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	a, _ := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1})
	b, _ := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1})

	test, status, err := f.svc.RecordPH(ctx, a.LotCode, 0, 5.1, "")
	if err != nil {
		t.Fatal(err)
	}
	if test.Result != production.ResultAtRisk || status != production.StatusDay0 {
		t.Errorf("day 0 = %s %s, want À risque J0", test.Result, status)
	}

	_, status, err = f.svc.RecordPH(ctx, strings.ToLower(a.LotCode), 14, 4.2, "ok")
	if err != nil {
		t.Fatal(err)
	}
	if status != production.StatusCompliant {
		t.Errorf("day 14 at 4.2 = %s, want conforme", status)
	}
	test, status, _ = f.svc.RecordPH(ctx, b.LotCode, 14, 4.8, "")
	if test.Result != production.ResultAtRisk || status != production.StatusNonCompliant {
		t.Errorf("day 14 at 4.8 = %s %s", test.Result, status)
	}

	rep, err := f.svc.Lot(ctx, a.LotCode)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Batch.Status != production.StatusCompliant || len(rep.Tests) != 2 {
		t.Errorf("lot report = %+v", rep)
	}

	for _, c := range []struct {
		day   int
		value float64
	}{{-1, 4}, {14, -0.5}, {14, 14.5}, {14, math.NaN()}} {
		if _, _, err := f.svc.RecordPH(ctx, a.LotCode, c.day, c.value, ""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("RecordPH(%d, %v) err = %v", c.day, c.value, err)
		}
	}
	if _, _, err := f.svc.RecordPH(ctx, "L990101-01", 0, 4, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown lot: err = %v", err)
	}
}

func TestLotsDueForCheck(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()
	now := f.svc.now()

	old, _ := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1, ProducedAt: now.AddDate(0, 0, -14)})
	if _, err := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1, ProducedAt: now.AddDate(0, 0, -3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 1, ProducedAt: now.AddDate(0, 0, -20)}); err != nil {
		t.Fatal(err)
	}

	due, err := f.svc.LotsDueForCheck(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].LotCode != old.LotCode {
		t.Fatalf("due = %+v, want %s", due, old.LotCode)
	}

	if _, _, err := f.svc.RecordPH(ctx, old.LotCode, 14, 4.1, ""); err != nil {
		t.Fatal(err)
	}
	due, _ = f.svc.LotsDueForCheck(ctx, now.Add(2*time.Hour))
	if len(due) != 0 {
		t.Errorf("after day-14 reading due = %+v", due)
	}
}

func TestConsumeFinished(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	b, err := f.svc.ProduceBatch(ctx, ProduceInput{Recipe: "Crêpes", Batches: 3, Quantity: 12, Unit: "pot"})
	if err != nil {
		t.Fatal(err)
	}
	m, err := f.svc.ConsumeFinished(ctx, b.LotCode, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Delta != -5 || m.Unit != "pot" || m.Reason != production.ReasonSale {
		t.Errorf("move = %+v", m)
	}
	if _, err := f.svc.ConsumeFinished(ctx, b.LotCode, 2, production.ReasonWaste); err != nil {
		t.Fatal(err)
	}

	rep, _ := f.svc.Lot(ctx, b.LotCode)
	if rep.OnHand != 5 || len(rep.Moves) != 3 {
		t.Errorf("on hand = %v over %d moves, want 5 over 3", rep.OnHand, len(rep.Moves))
	}

	for _, c := range []struct {
		qty    float64
		reason production.Reason
	}{{6, production.ReasonSale}, {0, production.ReasonSale}, {1, "vol"}, {1, production.ReasonProduction}} {
		if _, err := f.svc.ConsumeFinished(ctx, b.LotCode, c.qty, c.reason); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ConsumeFinished(%v, %q) err = %v", c.qty, c.reason, err)
		}
	}
	if _, err := f.svc.ConsumeFinished(ctx, "L990101-01", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown lot: err = %v", err)
	}
}
