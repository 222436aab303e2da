package kitchen

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type IngredientInput struct {
	Name          string
	Category      string
	Supplier      string
	SupplierCode  string
	BaseUnit      string
	PackSize      float64
	PackUnit      string // empty means same as BaseUnit
	PurchasePrice decimal.Decimal
}

func unitOf(raw string) (units.Unit, error) {
	u, err := units.Canonical(parse.UnitText(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return u, nil
}

// SaveIngredient creates or updates an ingredient from manual entry. Unlike
// the bulk import it tolerates nothing: unknown units, a pack unit outside
// the base family, a non-positive pack or a negative price are errors.
func (s *Service) SaveIngredient(ctx context.Context, in IngredientInput) (*ingredients.Ingredient, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, fmt.Errorf("%w: ingredient name is empty", ErrInvalidInput)
	}

	base, err := unitOf(in.BaseUnit)
	if err != nil {
		return nil, false, err
	}
	base = units.Base(base.Family())

	pack := base
	if strings.TrimSpace(in.PackUnit) != "" {
		if pack, err = unitOf(in.PackUnit); err != nil {
			return nil, false, err
		}
	}
	if pack.Family() != base.Family() {
		return nil, false, fmt.Errorf("%w: pack unit %s is not a %s unit", ErrInvalidInput, pack, base.Family())
	}

	ppu, err := costing.PricePerBaseUnit(in.PackSize, pack, base, in.PurchasePrice)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ing := &ingredients.Ingredient{
		Name:             name,
		Category:         strings.TrimSpace(in.Category),
		SupplierCode:     strings.TrimSpace(in.SupplierCode),
		BaseUnit:         base,
		PackSize:         in.PackSize,
		PackUnit:         pack,
		PurchasePrice:    in.PurchasePrice,
		PricePerBaseUnit: ppu,
	}
	if ing.Category == "" {
		ing.Category = ingredients.DefaultCategory
	}
	if sup := suppliers.NormalizeName(in.Supplier); sup != "" {
		rec, err := s.st.Suppliers.UpsertByName(ctx, sup)
		if err != nil {
			return nil, false, fmt.Errorf("supplier %q: %w", sup, err)
		}
		ing.SupplierID, ing.Supplier = rec.ID, rec.Name
	}

	created, err := s.st.Ingredients.Upsert(ctx, ing)
	if err != nil {
		return nil, false, err
	}
	s.log.Info("ingredient saved", "ingredient_id", ing.ID, "name", ing.Name, "created", created, "price_per_base_unit", ppu.String())
	return ing, created, nil
}

func (s *Service) Ingredients(ctx context.Context) ([]ingredients.Ingredient, error) {
	return s.st.Ingredients.List(ctx)
}

func (s *Service) ingredientByName(ctx context.Context, name string) (*ingredients.Ingredient, error) {
	ing, err := s.st.Ingredients.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, fmt.Errorf("ingredient %q: %w", name, ErrNotFound)
	}
	return ing, nil
}

// FindSupplier matches the normalised name exactly.
func (s *Service) FindSupplier(ctx context.Context, name string) (*suppliers.Supplier, error) {
	sup, err := s.st.Suppliers.FindByExactName(ctx, name)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, fmt.Errorf("supplier %q: %w", name, ErrNotFound)
	}
	return sup, nil
}

func (s *Service) Suppliers(ctx context.Context) ([]suppliers.Supplier, error) {
	return s.st.Suppliers.List(ctx)
}
