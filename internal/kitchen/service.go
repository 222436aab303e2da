// Package kitchen is the application layer: it validates user input, keeps
// derived ingredient prices current on every write and runs the costing,
// needs and stock folds over records read at the start of each call.
package kitchen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
	"github.com/PoFerry/atelierculinairepof/internal/infra/metrics"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type SupplierStore interface {
	FindByExactName(ctx context.Context, name string) (*suppliers.Supplier, error)
	UpsertByName(ctx context.Context, name string) (*suppliers.Supplier, error)
	List(ctx context.Context) ([]suppliers.Supplier, error)
}

type IngredientStore interface {
	GetByID(ctx context.Context, id int64) (*ingredients.Ingredient, error)
	GetByName(ctx context.Context, name string) (*ingredients.Ingredient, error)
	List(ctx context.Context) ([]ingredients.Ingredient, error)
	Upsert(ctx context.Context, i *ingredients.Ingredient) (bool, error)
}

type RecipeStore interface {
	GetByName(ctx context.Context, name string) (*recipes.Recipe, error)
	ListByIDs(ctx context.Context, ids []int64) ([]recipes.Recipe, error)
	List(ctx context.Context) ([]recipes.Recipe, error)
	Save(ctx context.Context, r *recipes.Recipe) (bool, error)
}

type MenuStore interface {
	GetByName(ctx context.Context, name string) (*menus.Menu, error)
	List(ctx context.Context) ([]menus.Menu, error)
	Save(ctx context.Context, m *menus.Menu) (bool, error)
}

type StockStore interface {
	Append(ctx context.Context, m inventory.Movement) (int64, error)
	ListByIngredient(ctx context.Context, ingredientID int64) ([]inventory.Movement, error)
	ListAll(ctx context.Context) ([]inventory.Movement, error)
}

type ProductionStore interface {
	LastLotCode(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, b *production.Batch) error
	ListRecent(ctx context.Context, limit int) ([]production.Batch, error)
	GetByLot(ctx context.Context, lot string) (*production.Batch, error)
	ListDueForCheck(ctx context.Context, from, to time.Time) ([]production.Batch, error)
	AddTest(ctx context.Context, t *production.Test, status production.Status) error
	ListTests(ctx context.Context, batchID int64) ([]production.Test, error)
	AppendFinished(ctx context.Context, m production.FinishedMove) (int64, error)
	ListFinished(ctx context.Context, batchID int64) ([]production.FinishedMove, error)
}

type Stores struct {
	Suppliers   SupplierStore
	Ingredients IngredientStore
	Recipes     RecipeStore
	Menus       MenuStore
	Stock       StockStore
	Production  ProductionStore
}

type Service struct {
	log *slog.Logger
	st  Stores
	now func() time.Time
}

func New(log *slog.Logger, st Stores) *Service {
	return &Service{log: log, st: st, now: time.Now}
}

// InLocation dates lot codes on the kitchen's calendar instead of the host's.
func (s *Service) InLocation(loc *time.Location) *Service {
	s.now = func() time.Time { return time.Now().In(loc) }
	return s
}

func (s *Service) skipped(component string, n int, args ...any) {
	if n == 0 {
		return
	}
	metrics.SkippedLines.WithLabelValues(component).Add(float64(n))
	s.log.Warn("lines skipped: unit does not convert", append([]any{"component", component, "skipped", n}, args...)...)
}
