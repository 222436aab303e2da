package ingredients

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectIngredient = `
	SELECT i.id, i.name, i.category, COALESCE(i.supplier_id, 0), COALESCE(s.name, ''), i.supplier_code,
	       i.base_unit, i.pack_size, i.pack_unit, i.purchase_price, i.price_per_base_unit, i.created_at
	FROM ingredients i
	LEFT JOIN suppliers s ON s.id = i.supplier_id
`

func scan(row pgx.Row) (*Ingredient, error) {
	var i Ingredient
	if err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Category,
		&i.SupplierID,
		&i.Supplier,
		&i.SupplierCode,
		&i.BaseUnit,
		&i.PackSize,
		&i.PackUnit,
		&i.PurchasePrice,
		&i.PricePerBaseUnit,
		&i.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Ingredient, error) {
	i, err := scan(r.pool.QueryRow(ctx, selectIngredient+` WHERE i.id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return i, err
}

// GetByName matches the name exactly.
func (r *Repo) GetByName(ctx context.Context, name string) (*Ingredient, error) {
	i, err := scan(r.pool.QueryRow(ctx, selectIngredient+` WHERE i.name = $1`, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return i, err
}

func (r *Repo) List(ctx context.Context) ([]Ingredient, error) {
	rows, err := r.pool.Query(ctx, selectIngredient+` ORDER BY i.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		i, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

// Upsert inserts or updates by name and fills in ID and CreatedAt.
// created reports whether a new row was inserted.
func (r *Repo) Upsert(ctx context.Context, i *Ingredient) (created bool, err error) {
	var supplierID *int64
	if i.SupplierID != 0 {
		supplierID = &i.SupplierID
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO ingredients (name, category, supplier_id, supplier_code,
		                         base_unit, pack_size, pack_unit, purchase_price, price_per_base_unit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (name) DO UPDATE SET
			category            = EXCLUDED.category,
			supplier_id         = EXCLUDED.supplier_id,
			supplier_code       = EXCLUDED.supplier_code,
			base_unit           = EXCLUDED.base_unit,
			pack_size           = EXCLUDED.pack_size,
			pack_unit           = EXCLUDED.pack_unit,
			purchase_price      = EXCLUDED.purchase_price,
			price_per_base_unit = EXCLUDED.price_per_base_unit
		RETURNING id, created_at, (xmax = 0)
	`, i.Name, i.Category, supplierID, i.SupplierCode,
		string(i.BaseUnit), i.PackSize, string(i.PackUnit), i.PurchasePrice, i.PricePerBaseUnit,
	).Scan(&i.ID, &i.CreatedAt, &created)
	return created, err
}
