// Package sheets mirrors tables to an external spreadsheet after bulk
// writes. The default hook does nothing; the xlsx hook keeps one workbook
// on disk with a sheet per table.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
)

type Table string

const (
	TableIngredients Table = "ingredients"
	TableRecipes     Table = "recipes"
	TableRecipeItems Table = "recipe_items"
)

type Hook interface {
	Export(ctx context.Context, t Table) error
}

type Noop struct{}

func (Noop) Export(context.Context, Table) error { return nil }

// Source is what the snapshot hook reads tables from.
type Source interface {
	Ingredients(ctx context.Context) ([]ingredients.Ingredient, error)
	Recipes(ctx context.Context) ([]recipes.Recipe, error)
}

type XLSXSnapshot struct {
	path string
	src  Source
	log  *slog.Logger
	mu   sync.Mutex
}

func NewXLSXSnapshot(path string, src Source, log *slog.Logger) *XLSXSnapshot {
	return &XLSXSnapshot{path: path, src: src, log: log}
}

// New picks the hook for a sync mode: "none" (or empty) or "xlsx".
func New(mode, path string, src Source, log *slog.Logger) (Hook, error) {
	switch mode {
	case "", "none":
		return Noop{}, nil
	case "xlsx":
		if path == "" {
			return nil, fmt.Errorf("sync.path is required for xlsx mode")
		}
		return NewXLSXSnapshot(path, src, log), nil
	}
	return nil, fmt.Errorf("unknown sync mode %q", mode)
}

// Export rewrites the sheet of table t with its current rows.
func (x *XLSXSnapshot) Export(ctx context.Context, t Table) error {
	header, rows, err := x.rows(ctx, t)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := x.open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sheet := string(t)
	stale := 0
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		old, err := f.GetRows(sheet)
		if err != nil {
			return err
		}
		stale = len(old) - len(rows) - 1
	} else if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	for ; stale > 0; stale-- {
		if err := f.RemoveRow(sheet, len(rows)+2); err != nil {
			return err
		}
	}
	// a fresh workbook starts with an empty Sheet1
	if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 && len(f.GetSheetList()) > 1 {
		_ = f.DeleteSheet("Sheet1")
	}
	if err := f.SaveAs(x.path); err != nil {
		return err
	}
	x.log.Info("sheet exported", "table", sheet, "rows", len(rows), "path", x.path)
	return nil
}

func (x *XLSXSnapshot) open() (*excelize.File, error) {
	if _, err := os.Stat(x.path); err == nil {
		return excelize.OpenFile(x.path)
	}
	return excelize.NewFile(), nil
}

func (x *XLSXSnapshot) rows(ctx context.Context, t Table) ([]any, [][]any, error) {
	switch t {
	case TableIngredients:
		ings, err := x.src.Ingredients(ctx)
		if err != nil {
			return nil, nil, err
		}
		header := []any{"id", "name", "category", "supplier", "supplier_code", "base_unit", "pack_size", "pack_unit", "purchase_price", "price_per_base_unit"}
		out := make([][]any, 0, len(ings))
		for _, i := range ings {
			out = append(out, []any{
				i.ID, i.Name, i.Category, i.Supplier, i.SupplierCode, string(i.BaseUnit),
				i.PackSize, string(i.PackUnit), i.PurchasePrice.String(), i.PricePerBaseUnit.String(),
			})
		}
		return header, out, nil

	case TableRecipes, TableRecipeItems:
		recs, err := x.src.Recipes(ctx)
		if err != nil {
			return nil, nil, err
		}
		if t == TableRecipes {
			header := []any{"id", "name", "category", "servings", "instructions"}
			out := make([][]any, 0, len(recs))
			for _, r := range recs {
				out = append(out, []any{r.ID, r.Name, r.Category, r.Servings, r.Instructions})
			}
			return header, out, nil
		}
		header := []any{"recipe_id", "recipe", "ingredient_id", "ingredient", "quantity", "unit"}
		var out [][]any
		for _, r := range recs {
			for _, it := range r.Items {
				out = append(out, []any{r.ID, r.Name, it.IngredientID, it.Ingredient.Name, it.Quantity, string(it.Unit)})
			}
		}
		return header, out, nil
	}
	return nil, nil, fmt.Errorf("unknown table %q", t)
}
