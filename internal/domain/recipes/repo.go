package recipes

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectRecipe = `SELECT id, name, category, servings, instructions, created_at FROM recipes`

func scanRecipe(row pgx.Row) (*Recipe, error) {
	var r Recipe
	if err := row.Scan(&r.ID, &r.Name, &r.Category, &r.Servings, &r.Instructions, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Repo) GetByName(ctx context.Context, name string) (*Recipe, error) {
	rec, err := scanRecipe(r.pool.QueryRow(ctx, selectRecipe+` WHERE name = $1`, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*Recipe{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByIDs returns the recipes with their items; unknown ids are ignored.
func (r *Repo) ListByIDs(ctx context.Context, ids []int64) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, selectRecipe+` WHERE id = ANY($1) ORDER BY name`, ids)
}

func (r *Repo) List(ctx context.Context) ([]Recipe, error) {
	return r.list(ctx, selectRecipe+` ORDER BY name`)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Recipe, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ptrs []*Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]Recipe, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out, nil
}

func (r *Repo) loadItems(ctx context.Context, recs []*Recipe) error {
	if len(recs) == 0 {
		return nil
	}
	byID := make(map[int64]*Recipe, len(recs))
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ri.id, ri.recipe_id, ri.ingredient_id, ri.quantity, ri.unit,
		       i.id, i.name, i.category, COALESCE(i.supplier_id, 0), COALESCE(s.name, ''), i.supplier_code,
		       i.base_unit, i.pack_size, i.pack_unit, i.purchase_price, i.price_per_base_unit, i.created_at
		FROM recipe_items ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		LEFT JOIN suppliers s ON s.id = i.supplier_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY ri.recipe_id, i.name
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		ing := &it.Ingredient
		if err := rows.Scan(
			&it.ID, &it.RecipeID, &it.IngredientID, &it.Quantity, &it.Unit,
			&ing.ID, &ing.Name, &ing.Category, &ing.SupplierID, &ing.Supplier, &ing.SupplierCode,
			&ing.BaseUnit, &ing.PackSize, &ing.PackUnit, &ing.PurchasePrice, &ing.PricePerBaseUnit, &ing.CreatedAt,
		); err != nil {
			return err
		}
		if rec, ok := byID[it.RecipeID]; ok {
			rec.Items = append(rec.Items, it)
		}
	}
	return rows.Err()
}

// Save upserts the recipe by name and replaces its items.
func (r *Repo) Save(ctx context.Context, rec *Recipe) (created bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = tx.QueryRow(ctx, `
		INSERT INTO recipes (name, category, servings, instructions)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category,
			servings = EXCLUDED.servings,
			instructions = EXCLUDED.instructions
		RETURNING id, created_at, (xmax = 0)
	`, rec.Name, rec.Category, rec.Servings, rec.Instructions).Scan(&rec.ID, &rec.CreatedAt, &created); err != nil {
		return false, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM recipe_items WHERE recipe_id = $1`, rec.ID); err != nil {
		return false, err
	}
	for i := range rec.Items {
		it := &rec.Items[i]
		it.RecipeID = rec.ID
		if err = tx.QueryRow(ctx, `
			INSERT INTO recipe_items (recipe_id, ingredient_id, quantity, unit)
			VALUES ($1,$2,$3,$4)
			RETURNING id
		`, rec.ID, it.IngredientID, it.Quantity, string(it.Unit)).Scan(&it.ID); err != nil {
			return false, err
		}
	}

	return created, tx.Commit(ctx)
}
