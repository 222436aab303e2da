package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo appends and reads movements; it has no update or delete.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Append(ctx context.Context, m Movement) (int64, error) {
	if !m.Type.Valid() {
		return 0, fmt.Errorf("movement type must be in|out|adjust, got %q", m.Type)
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO stock_movements (ingredient_id, qty, unit, movement_type, unit_cost, note)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, m.IngredientID, m.Qty, string(m.Unit), string(m.Type), m.UnitCost, m.Note).Scan(&id)
	return id, err
}

func (r *Repo) ListByIngredient(ctx context.Context, ingredientID int64) ([]Movement, error) {
	return r.list(ctx, `WHERE ingredient_id = $1`, ingredientID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Movement, error) {
	return r.list(ctx, ``)
}

func (r *Repo) list(ctx context.Context, where string, args ...any) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ingredient_id, qty, unit, movement_type, unit_cost, note, created_at
		FROM stock_movements
		`+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.IngredientID, &m.Qty, &m.Unit, &m.Type, &m.UnitCost, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
