package kitchen

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/infra/metrics"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type MovementInput struct {
	Ingredient string
	Qty        float64
	Unit       string // empty means the ingredient base unit
	Type       inventory.MoveType
	UnitCost   decimal.Decimal
	Note       string
}

// RecordMovement appends one line to the stock ledger. in and out take a
// positive quantity; adjust takes a signed, non-zero one.
func (s *Service) RecordMovement(ctx context.Context, in MovementInput) (*inventory.Movement, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: movement type %q", ErrInvalidInput, in.Type)
	}
	switch {
	case in.Type != inventory.MoveAdjust && in.Qty <= 0:
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrInvalidInput)
	case in.Type == inventory.MoveAdjust && in.Qty == 0:
		return nil, fmt.Errorf("%w: adjustment of zero", ErrInvalidInput)
	case math.IsNaN(in.Qty) || math.IsInf(in.Qty, 0):
		return nil, fmt.Errorf("%w: quantity is not a number", ErrInvalidInput)
	}
	if in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost must be >= 0", ErrInvalidInput)
	}

	ing, err := s.ingredientByName(ctx, in.Ingredient)
	if err != nil {
		return nil, err
	}
	u := ing.BaseUnit
	if strings.TrimSpace(in.Unit) != "" {
		if u, err = unitOf(in.Unit); err != nil {
			return nil, err
		}
	}
	if _, err := units.Convert(in.Qty, u, ing.BaseUnit); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, ing.Name, err)
	}

	m := inventory.Movement{
		IngredientID: ing.ID,
		Qty:          in.Qty,
		Unit:         u,
		Type:         in.Type,
		UnitCost:     in.UnitCost,
		Note:         strings.TrimSpace(in.Note),
	}
	return s.appendMovement(ctx, m)
}

func (s *Service) appendMovement(ctx context.Context, m inventory.Movement) (*inventory.Movement, error) {
	id, err := s.st.Stock.Append(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	metrics.StockMovements.WithLabelValues(string(m.Type)).Inc()
	s.log.Info("stock movement", "ingredient_id", m.IngredientID, "type", m.Type, "qty", m.Qty, "unit", m.Unit)
	return &m, nil
}

// CurrentStock folds the ledger of one ingredient into its base unit.
func (s *Service) CurrentStock(ctx context.Context, ingredientID int64) (inventory.Balance, error) {
	ing, err := s.st.Ingredients.GetByID(ctx, ingredientID)
	if err != nil {
		return inventory.Balance{}, err
	}
	if ing == nil {
		return inventory.Balance{}, fmt.Errorf("ingredient %d: %w", ingredientID, ErrNotFound)
	}
	return s.balance(ctx, ing)
}

func (s *Service) balance(ctx context.Context, ing *ingredients.Ingredient) (inventory.Balance, error) {
	moves, err := s.st.Stock.ListByIngredient(ctx, ing.ID)
	if err != nil {
		return inventory.Balance{}, err
	}
	b := inventory.CurrentStock(moves, ing.BaseUnit)
	s.skipped("stock", b.Skipped, "ingredient_id", ing.ID)
	return b, nil
}

type StockLine struct {
	Ingredient ingredients.Ingredient
	inventory.Balance
}

// StockReport lists every ingredient with its on-hand quantity, in
// ingredient name order.
func (s *Service) StockReport(ctx context.Context) ([]StockLine, error) {
	ings, err := s.st.Ingredients.List(ctx)
	if err != nil {
		return nil, err
	}
	moves, err := s.st.Stock.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	bases := make(map[int64]units.Unit, len(ings))
	for _, ing := range ings {
		bases[ing.ID] = ing.BaseUnit
	}
	balances := inventory.StockMap(moves, bases)

	out := make([]StockLine, 0, len(ings))
	skipped := 0
	for _, ing := range ings {
		b := balances[ing.ID]
		skipped += b.Skipped
		out = append(out, StockLine{Ingredient: ing, Balance: b})
	}
	s.skipped("stock", skipped)
	return out, nil
}

// CountStock records the adjust movement that brings the ledger to a
// physically counted quantity. It returns nil when nothing needs adjusting.
func (s *Service) CountStock(ctx context.Context, ingredient string, counted float64, unit, note string) (*inventory.Movement, error) {
	if counted < 0 || math.IsNaN(counted) || math.IsInf(counted, 0) {
		return nil, fmt.Errorf("%w: counted quantity must be >= 0", ErrInvalidInput)
	}
	ing, err := s.ingredientByName(ctx, ingredient)
	if err != nil {
		return nil, err
	}
	u := ing.BaseUnit
	if strings.TrimSpace(unit) != "" {
		if u, err = unitOf(unit); err != nil {
			return nil, err
		}
	}
	countedBase, err := units.Convert(counted, u, ing.BaseUnit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, ing.Name, err)
	}

	b, err := s.balance(ctx, ing)
	if err != nil {
		return nil, err
	}
	delta := countedBase - b.Qty
	if math.Abs(delta) < 1e-9 {
		return nil, nil
	}
	if note = strings.TrimSpace(note); note == "" {
		note = "inventaire"
	}
	return s.appendMovement(ctx, inventory.Movement{
		IngredientID: ing.ID,
		Qty:          delta,
		Unit:         ing.BaseUnit,
		Type:         inventory.MoveAdjust,
		UnitCost:     decimal.Zero,
		Note:         note,
	})
}
