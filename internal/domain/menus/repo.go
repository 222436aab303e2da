package menus

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// GetByName returns the menu and its lines. Item.Recipe is left empty.
func (r *Repo) GetByName(ctx context.Context, name string) (*Menu, error) {
	var m Menu
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, notes, created_at FROM menus WHERE name = $1
	`, name).Scan(&m.ID, &m.Name, &m.Notes, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, menu_id, recipe_id, batches
		FROM menu_items
		WHERE menu_id = $1
		ORDER BY id
	`, m.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.MenuID, &it.RecipeID, &it.Batches); err != nil {
			return nil, err
		}
		m.Items = append(m.Items, it)
	}
	return &m, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]Menu, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, notes, created_at FROM menus ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Save upserts the menu by name and replaces its lines.
func (r *Repo) Save(ctx context.Context, m *Menu) (created bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = tx.QueryRow(ctx, `
		INSERT INTO menus (name, notes) VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET notes = EXCLUDED.notes
		RETURNING id, created_at, (xmax = 0)
	`, m.Name, m.Notes).Scan(&m.ID, &m.CreatedAt, &created); err != nil {
		return false, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM menu_items WHERE menu_id = $1`, m.ID); err != nil {
		return false, err
	}
	for i := range m.Items {
		it := &m.Items[i]
		it.MenuID = m.ID
		if err = tx.QueryRow(ctx, `
			INSERT INTO menu_items (menu_id, recipe_id, batches)
			VALUES ($1,$2,$3)
			RETURNING id
		`, m.ID, it.RecipeID, it.Batches).Scan(&it.ID); err != nil {
			return false, err
		}
	}

	return created, tx.Commit(ctx)
}
