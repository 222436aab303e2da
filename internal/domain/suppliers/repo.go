package suppliers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, name, contact, phone, email, notes, created_at`

func scan(row pgx.Row) (*Supplier, error) {
	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Notes, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByExactName returns nil, nil when no supplier carries exactly this name.
func (r *Repo) FindByExactName(ctx context.Context, name string) (*Supplier, error) {
	s, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM suppliers WHERE name = $1`, NormalizeName(name)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// UpsertByName returns the supplier with this name, creating it if needed.
func (r *Repo) UpsertByName(ctx context.Context, name string) (*Supplier, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("supplier name is empty")
	}
	// DO UPDATE (no-op) so RETURNING also yields the existing row.
	return scan(r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+columns, name))
}

func (r *Repo) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
