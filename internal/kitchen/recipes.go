package kitchen

import (
	"context"
	"fmt"
	"strings"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type RecipeItemInput struct {
	Ingredient string
	Quantity   float64
	Unit       string
}

type RecipeInput struct {
	Name         string
	Category     string
	Servings     int
	Instructions string
	Items        []RecipeItemInput
}

// SaveRecipe replaces the recipe with this name. Every item must name a known
// ingredient, once, in a unit of that ingredient's base family.
func (s *Service) SaveRecipe(ctx context.Context, in RecipeInput) (*recipes.Recipe, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, fmt.Errorf("%w: recipe name is empty", ErrInvalidInput)
	}
	if in.Servings < 1 {
		return nil, false, fmt.Errorf("%w: servings must be >= 1, got %d", ErrInvalidInput, in.Servings)
	}

	rec := &recipes.Recipe{
		Name:         name,
		Category:     strings.TrimSpace(in.Category),
		Servings:     in.Servings,
		Instructions: in.Instructions,
	}
	seen := map[int64]bool{}
	for _, it := range in.Items {
		ing, err := s.ingredientByName(ctx, it.Ingredient)
		if err != nil {
			return nil, false, err
		}
		if seen[ing.ID] {
			return nil, false, fmt.Errorf("%w: ingredient %q listed twice", ErrInvalidInput, ing.Name)
		}
		seen[ing.ID] = true
		if it.Quantity <= 0 {
			return nil, false, fmt.Errorf("%w: %s: quantity must be > 0", ErrInvalidInput, ing.Name)
		}
		u := ing.BaseUnit
		if strings.TrimSpace(it.Unit) != "" {
			if u, err = unitOf(it.Unit); err != nil {
				return nil, false, err
			}
		}
		if _, err := units.Convert(it.Quantity, u, ing.BaseUnit); err != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", ErrInvalidInput, ing.Name, err)
		}
		rec.Items = append(rec.Items, recipes.Item{
			IngredientID: ing.ID,
			Quantity:     it.Quantity,
			Unit:         u,
			Ingredient:   *ing,
		})
	}

	created, err := s.st.Recipes.Save(ctx, rec)
	if err != nil {
		return nil, false, err
	}
	s.log.Info("recipe saved", "recipe_id", rec.ID, "name", rec.Name, "items", len(rec.Items), "created", created)
	return rec, created, nil
}

func (s *Service) recipeByName(ctx context.Context, name string) (*recipes.Recipe, error) {
	rec, err := s.st.Recipes.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("recipe %q: %w", name, ErrNotFound)
	}
	return rec, nil
}

func (s *Service) RecipeCost(ctx context.Context, name string) (*recipes.Recipe, costing.Cost, error) {
	rec, err := s.recipeByName(ctx, name)
	if err != nil {
		return nil, costing.Cost{}, err
	}
	c := costing.RecipeCost(*rec)
	s.skipped("recipe_cost", c.Skipped, "recipe", rec.Name)
	return rec, c, nil
}

func (s *Service) Recipes(ctx context.Context) ([]recipes.Recipe, error) {
	return s.st.Recipes.List(ctx)
}
