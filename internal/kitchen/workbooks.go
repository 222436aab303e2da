package kitchen

import (
	"context"

	"github.com/PoFerry/atelierculinairepof/internal/export"
)

func (s *Service) RecipeCostWorkbook(ctx context.Context, recipe string) ([]byte, error) {
	rec, c, err := s.RecipeCost(ctx, recipe)
	if err != nil {
		return nil, err
	}
	return export.RecipeCost(*rec, c)
}

func (s *Service) NeedsWorkbook(ctx context.Context, menu string) ([]byte, error) {
	list, err := s.ShoppingList(ctx, menu)
	if err != nil {
		return nil, err
	}
	return export.MenuNeeds(menu, list)
}

func (s *Service) StockWorkbook(ctx context.Context) ([]byte, error) {
	report, err := s.StockReport(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]export.StockRow, 0, len(report))
	for _, l := range report {
		rows = append(rows, export.StockRow{
			Name:     l.Ingredient.Name,
			Category: l.Ingredient.Category,
			Qty:      l.Qty,
			BaseUnit: l.Ingredient.BaseUnit,
			Skipped:  l.Skipped,
		})
	}
	return export.Stock(rows)
}
