// Package imports loads ingredients and recipes from CSV or XLSX tables.
// Rows are independent: a bad row is reported and the rest still load.
package imports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
	"github.com/PoFerry/atelierculinairepof/internal/infra/metrics"
	"github.com/PoFerry/atelierculinairepof/internal/infra/sheets"
)

var (
	ErrEmptyTable     = errors.New("table is empty")
	ErrMissingColumns = errors.New("missing columns")
)

type SupplierStore interface {
	UpsertByName(ctx context.Context, name string) (*suppliers.Supplier, error)
}

type IngredientStore interface {
	GetByName(ctx context.Context, name string) (*ingredients.Ingredient, error)
	Upsert(ctx context.Context, i *ingredients.Ingredient) (bool, error)
}

type RecipeStore interface {
	Save(ctx context.Context, r *recipes.Recipe) (bool, error)
}

type Importer struct {
	log         *slog.Logger
	suppliers   SupplierStore
	ingredients IngredientStore
	recipes     RecipeStore
	hook        sheets.Hook
}

func New(log *slog.Logger, sup SupplierStore, ing IngredientStore, rec RecipeStore, hook sheets.Hook) *Importer {
	if hook == nil {
		hook = sheets.Noop{}
	}
	return &Importer{log: log, suppliers: sup, ingredients: ing, recipes: rec, hook: hook}
}

type Result struct {
	Created int
	Updated int
	Skipped int
	Errors  []string
}

func (r *Result) errorf(line int, format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf("ligne %d: ", line)+fmt.Sprintf(format, args...))
}

// Message is the one-line summary shown to the user.
func (r Result) Message() string {
	parts := []string{
		fmt.Sprintf("%d créé(s)", r.Created),
		fmt.Sprintf("%d mis à jour", r.Updated),
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d ignoré(s)", r.Skipped))
	}
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d erreur(s)", len(r.Errors)))
	}
	return strings.Join(parts, " · ")
}

func (r Result) count(kind string) {
	metrics.ImportRows.WithLabelValues(kind, "created").Add(float64(r.Created))
	metrics.ImportRows.WithLabelValues(kind, "updated").Add(float64(r.Updated))
	metrics.ImportRows.WithLabelValues(kind, "skipped").Add(float64(r.Skipped))
	metrics.ImportRows.WithLabelValues(kind, "error").Add(float64(len(r.Errors)))
}

func header(table [][]string, fields []field, required ...string) (map[string]int, error) {
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	cols := columns(table[0], fields)
	var missing []string
	for _, k := range required {
		if _, ok := cols[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (im *Importer) sync(ctx context.Context, tables ...sheets.Table) {
	for _, t := range tables {
		if err := im.hook.Export(ctx, t); err != nil {
			im.log.Warn("sheet sync failed", "table", t, "err", err)
		}
	}
}
