package kitchen

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
)

type fakeSuppliers struct {
	rows []suppliers.Supplier
}

func (f *fakeSuppliers) FindByExactName(_ context.Context, name string) (*suppliers.Supplier, error) {
	name = suppliers.NormalizeName(name)
	for _, s := range f.rows {
		if s.Name == name {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSuppliers) UpsertByName(ctx context.Context, name string) (*suppliers.Supplier, error) {
	if s, _ := f.FindByExactName(ctx, name); s != nil {
		return s, nil
	}
	s := suppliers.Supplier{ID: int64(len(f.rows) + 1), Name: suppliers.NormalizeName(name)}
	f.rows = append(f.rows, s)
	return &s, nil
}

func (f *fakeSuppliers) List(context.Context) ([]suppliers.Supplier, error) { return f.rows, nil }

type fakeIngredients struct {
	rows []ingredients.Ingredient
}

func (f *fakeIngredients) GetByID(_ context.Context, id int64) (*ingredients.Ingredient, error) {
	for _, i := range f.rows {
		if i.ID == id {
			i := i
			return &i, nil
		}
	}
	return nil, nil
}

func (f *fakeIngredients) GetByName(_ context.Context, name string) (*ingredients.Ingredient, error) {
	for _, i := range f.rows {
		if i.Name == name {
			i := i
			return &i, nil
		}
	}
	return nil, nil
}

func (f *fakeIngredients) List(context.Context) ([]ingredients.Ingredient, error) {
	out := append([]ingredients.Ingredient(nil), f.rows...)
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (f *fakeIngredients) Upsert(_ context.Context, i *ingredients.Ingredient) (bool, error) {
	for n := range f.rows {
		if f.rows[n].Name == i.Name {
			i.ID, i.CreatedAt = f.rows[n].ID, f.rows[n].CreatedAt
			f.rows[n] = *i
			return false, nil
		}
	}
	i.ID, i.CreatedAt = int64(len(f.rows)+1), time.Now()
	f.rows = append(f.rows, *i)
	return true, nil
}

// fakeRecipes re-reads item ingredients on every get, like the SQL join.
type fakeRecipes struct {
	ings *fakeIngredients
	rows []recipes.Recipe
}

func (f *fakeRecipes) load(r recipes.Recipe) recipes.Recipe {
	items := make([]recipes.Item, len(r.Items))
	for n, it := range r.Items {
		ing, _ := f.ings.GetByID(context.Background(), it.IngredientID)
		it.Ingredient = *ing
		items[n] = it
	}
	r.Items = items
	return r
}

func (f *fakeRecipes) GetByName(_ context.Context, name string) (*recipes.Recipe, error) {
	for _, r := range f.rows {
		if r.Name == name {
			r = f.load(r)
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRecipes) ListByIDs(_ context.Context, ids []int64) ([]recipes.Recipe, error) {
	var out []recipes.Recipe
	for _, r := range f.rows {
		for _, id := range ids {
			if r.ID == id {
				out = append(out, f.load(r))
			}
		}
	}
	return out, nil
}

func (f *fakeRecipes) List(context.Context) ([]recipes.Recipe, error) {
	return f.ListByIDs(context.Background(), f.ids())
}

func (f *fakeRecipes) ids() []int64 {
	var ids []int64
	for _, r := range f.rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func (f *fakeRecipes) Save(_ context.Context, r *recipes.Recipe) (bool, error) {
	for n := range f.rows {
		if f.rows[n].Name == r.Name {
			r.ID = f.rows[n].ID
			f.rows[n] = *r
			return false, nil
		}
	}
	r.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *r)
	return true, nil
}

type fakeMenus struct {
	rows []menus.Menu
}

func (f *fakeMenus) GetByName(_ context.Context, name string) (*menus.Menu, error) {
	for _, m := range f.rows {
		if m.Name == name {
			items := make([]menus.Item, len(m.Items))
			for n, it := range m.Items {
				it.Recipe = recipes.Recipe{}
				items[n] = it
			}
			m.Items = items
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeMenus) List(context.Context) ([]menus.Menu, error) { return f.rows, nil }

func (f *fakeMenus) Save(_ context.Context, m *menus.Menu) (bool, error) {
	for n := range f.rows {
		if f.rows[n].Name == m.Name {
			m.ID = f.rows[n].ID
			f.rows[n] = *m
			return false, nil
		}
	}
	m.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *m)
	return true, nil
}

type fakeStock struct {
	moves []inventory.Movement
}

func (f *fakeStock) Append(_ context.Context, m inventory.Movement) (int64, error) {
	m.ID = int64(len(f.moves) + 1)
	f.moves = append(f.moves, m)
	return m.ID, nil
}

func (f *fakeStock) ListByIngredient(_ context.Context, id int64) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range f.moves {
		if m.IngredientID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStock) ListAll(context.Context) ([]inventory.Movement, error) { return f.moves, nil }

type fakeProduction struct {
	stock    *fakeStock
	batches  []production.Batch
	tests    []production.Test
	finished []production.FinishedMove
}

func (f *fakeProduction) LastLotCode(_ context.Context, prefix string) (string, error) {
	last := ""
	for _, b := range f.batches {
		if strings.HasPrefix(b.LotCode, prefix+"-") && b.LotCode > last {
			last = b.LotCode
		}
	}
	return last, nil
}

func (f *fakeProduction) Create(ctx context.Context, b *production.Batch) error {
	b.ID = int64(len(f.batches) + 1)
	f.batches = append(f.batches, *b)
	for _, in := range b.Inputs {
		if in.QtyUsed > 0 {
			_, _ = f.stock.Append(ctx, inventory.Movement{
				IngredientID: in.IngredientID, Qty: in.QtyUsed, Unit: in.Unit,
				Type: inventory.MoveOut, Note: "production " + b.LotCode,
			})
		}
	}
	if b.Quantity > 0 {
		_, _ = f.AppendFinished(ctx, production.FinishedMove{
			BatchID: b.ID, Delta: b.Quantity, Unit: b.Unit,
			Reason: production.ReasonProduction, At: b.ProducedAt,
		})
	}
	return nil
}

func (f *fakeProduction) GetByLot(_ context.Context, lot string) (*production.Batch, error) {
	for _, b := range f.batches {
		if b.LotCode == lot {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeProduction) ListDueForCheck(_ context.Context, from, to time.Time) ([]production.Batch, error) {
	var out []production.Batch
	for _, b := range f.batches {
		if b.Status != production.StatusDay0 || b.ProducedAt.Before(from) || !b.ProducedAt.Before(to) {
			continue
		}
		done := false
		for _, t := range f.tests {
			if t.BatchID == b.ID && t.Day == production.CheckDay {
				done = true
			}
		}
		if !done {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeProduction) AddTest(_ context.Context, t *production.Test, status production.Status) error {
	t.ID = int64(len(f.tests) + 1)
	f.tests = append(f.tests, *t)
	for n := range f.batches {
		if f.batches[n].ID == t.BatchID {
			f.batches[n].Status = status
		}
	}
	return nil
}

func (f *fakeProduction) ListTests(_ context.Context, batchID int64) ([]production.Test, error) {
	var out []production.Test
	for _, t := range f.tests {
		if t.BatchID == batchID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeProduction) AppendFinished(_ context.Context, m production.FinishedMove) (int64, error) {
	m.ID = int64(len(f.finished) + 1)
	f.finished = append(f.finished, m)
	return m.ID, nil
}

func (f *fakeProduction) ListFinished(_ context.Context, batchID int64) ([]production.FinishedMove, error) {
	var out []production.FinishedMove
	for _, m := range f.finished {
		if m.BatchID == batchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeProduction) ListRecent(_ context.Context, limit int) ([]production.Batch, error) {
	var out []production.Batch
	for i := len(f.batches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.batches[i])
	}
	return out, nil
}

type fixture struct {
	svc   *Service
	ings  *fakeIngredients
	stock *fakeStock
	prod  *fakeProduction
}

func newFixture() *fixture {
	ings := &fakeIngredients{}
	stock := &fakeStock{}
	prod := &fakeProduction{stock: stock}
	svc := New(slog.New(slog.NewTextHandler(io.Discard, nil)), Stores{
		Suppliers:   &fakeSuppliers{},
		Ingredients: ings,
		Recipes:     &fakeRecipes{ings: ings},
		Menus:       &fakeMenus{},
		Stock:       stock,
		Production:  prod,
	})
	svc.now = func() time.Time { return time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, ings: ings, stock: stock, prod: prod}
}
