package kitchen

import (
	"context"
	"fmt"
	"strings"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
)

// MenuLineInput sets a recipe either as a number of batches or, when
// Batches is zero, as a number of portions.
type MenuLineInput struct {
	Recipe   string
	Batches  float64
	Portions float64
}

type MenuInput struct {
	Name  string
	Notes string
	Lines []MenuLineInput
}

// SaveMenu replaces the menu with this name. Lines naming the same recipe
// are merged.
func (s *Service) SaveMenu(ctx context.Context, in MenuInput) (*menus.Menu, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, fmt.Errorf("%w: menu name is empty", ErrInvalidInput)
	}

	m := &menus.Menu{Name: name, Notes: in.Notes}
	index := map[int64]int{}
	for _, l := range in.Lines {
		if l.Batches < 0 || l.Portions < 0 {
			return nil, false, fmt.Errorf("%w: %s: batches and portions must be >= 0", ErrInvalidInput, l.Recipe)
		}
		rec, err := s.recipeByName(ctx, l.Recipe)
		if err != nil {
			return nil, false, err
		}
		batches := l.Batches
		if batches == 0 && l.Portions > 0 {
			batches = costing.BatchesFromPortions(l.Portions, rec.Servings)
		}
		if i, ok := index[rec.ID]; ok {
			m.Items[i].Batches += batches
			continue
		}
		index[rec.ID] = len(m.Items)
		m.Items = append(m.Items, menus.Item{RecipeID: rec.ID, Batches: batches, Recipe: *rec})
	}

	created, err := s.st.Menus.Save(ctx, m)
	if err != nil {
		return nil, false, err
	}
	s.log.Info("menu saved", "menu_id", m.ID, "name", m.Name, "lines", len(m.Items), "created", created)
	return m, created, nil
}

// loadMenu reads the menu and attaches its recipes, with their items and
// ingredients, in one snapshot.
func (s *Service) loadMenu(ctx context.Context, name string) (*menus.Menu, error) {
	m, err := s.st.Menus.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("menu %q: %w", name, ErrNotFound)
	}
	recs, err := s.st.Recipes.ListByIDs(ctx, m.RecipeIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]recipes.Recipe, len(recs))
	for _, r := range recs {
		byID[r.ID] = r
	}
	for i := range m.Items {
		m.Items[i].Recipe = byID[m.Items[i].RecipeID]
	}
	return m, nil
}

func (s *Service) MenuCost(ctx context.Context, name string) (*menus.Menu, costing.MenuCost, error) {
	m, err := s.loadMenu(ctx, name)
	if err != nil {
		return nil, costing.MenuCost{}, err
	}
	mc := costing.MenuCostOf(*m)
	s.skipped("menu_cost", mc.Skipped, "menu", m.Name)
	return m, mc, nil
}

func (s *Service) MenuNeeds(ctx context.Context, name string) (*menus.Menu, costing.Needs, error) {
	m, err := s.loadMenu(ctx, name)
	if err != nil {
		return nil, costing.Needs{}, err
	}
	n := costing.MenuNeeds(*m)
	s.skipped("menu_needs", n.Skipped, "menu", m.Name)
	return m, n, nil
}

// ShoppingList is the menu needs minus what is on hand.
func (s *Service) ShoppingList(ctx context.Context, name string) ([]costing.Shortage, error) {
	_, n, err := s.MenuNeeds(ctx, name)
	if err != nil {
		return nil, err
	}
	report, err := s.StockReport(ctx)
	if err != nil {
		return nil, err
	}
	onHand := make(map[int64]float64, len(report))
	for _, l := range report {
		onHand[l.Ingredient.ID] = l.Qty
	}
	return costing.Shortfall(n, onHand), nil
}

func (s *Service) Menus(ctx context.Context) ([]menus.Menu, error) {
	return s.st.Menus.List(ctx)
}
