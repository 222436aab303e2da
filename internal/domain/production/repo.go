package production

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// LastLotCode returns "" when no lot exists for the prefix.
func (r *Repo) LastLotCode(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx, `
		SELECT lot_code FROM production_batches
		WHERE lot_code LIKE $1
		ORDER BY lot_code DESC
		LIMIT 1
	`, prefix+"-%").Scan(&code)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return code, err
}

// Create stores the batch and its inputs, writes one "out" stock movement
// per input and opens the lot's finished-goods ledger, all in one
// transaction.
func (r *Repo) Create(ctx context.Context, b *Batch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = tx.QueryRow(ctx, `
		INSERT INTO production_batches (lot_code, produced_at, recipe_id, batches, quantity, unit, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`, b.LotCode, b.ProducedAt, b.RecipeID, b.Batches, b.Quantity, b.Unit, string(b.Status), b.Notes).Scan(&b.ID, &b.CreatedAt); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO finished_inventory (batch_id, delta, unit, reason, at)
		VALUES ($1,$2,$3,$4,$5)
	`, b.ID, b.Quantity, b.Unit, string(ReasonProduction), b.ProducedAt); err != nil {
		return err
	}

	for _, in := range b.Inputs {
		if _, err = tx.Exec(ctx, `
			INSERT INTO batch_inputs (batch_id, ingredient_id, qty_used, unit)
			VALUES ($1,$2,$3,$4)
		`, b.ID, in.IngredientID, in.QtyUsed, string(in.Unit)); err != nil {
			return err
		}
		if in.QtyUsed <= 0 {
			continue
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO stock_movements (ingredient_id, qty, unit, movement_type, note)
			VALUES ($1,$2,$3,'out',$4)
		`, in.IngredientID, in.QtyUsed, string(in.Unit), "production "+b.LotCode); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const selectBatch = `
	SELECT b.id, b.lot_code, b.produced_at, b.recipe_id, COALESCE(rc.name, ''), b.batches,
	       b.quantity, b.unit, b.status, b.notes, b.created_at
	FROM production_batches b
	LEFT JOIN recipes rc ON rc.id = b.recipe_id
`

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	if err := row.Scan(&b.ID, &b.LotCode, &b.ProducedAt, &b.RecipeID, &b.Recipe, &b.Batches,
		&b.Quantity, &b.Unit, &b.Status, &b.Notes, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) listBatches(ctx context.Context, q string, args ...any) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repo) GetByLot(ctx context.Context, lot string) (*Batch, error) {
	b, err := scanBatch(r.pool.QueryRow(ctx, selectBatch+` WHERE b.lot_code = $1`, lot))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *Repo) ListRecent(ctx context.Context, limit int) ([]Batch, error) {
	return r.listBatches(ctx, selectBatch+` ORDER BY b.produced_at DESC, b.lot_code DESC LIMIT $1`, limit)
}

// ListDueForCheck returns the J0 lots produced in [from, to) that have no
// day-14 reading yet, oldest first.
func (r *Repo) ListDueForCheck(ctx context.Context, from, to time.Time) ([]Batch, error) {
	return r.listBatches(ctx, selectBatch+`
		WHERE b.status = $1
		  AND b.produced_at >= $2 AND b.produced_at < $3
		  AND NOT EXISTS (
		    SELECT 1 FROM batch_tests t WHERE t.batch_id = b.id AND t.test_day = $4
		  )
		ORDER BY b.produced_at, b.lot_code
	`, string(StatusDay0), from, to, CheckDay)
}

// AddTest stores a reading and sets the lot's status in one transaction.
func (r *Repo) AddTest(ctx context.Context, t *Test, status Status) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = tx.QueryRow(ctx, `
		INSERT INTO batch_tests (batch_id, test_day, value, result, notes, tested_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, t.BatchID, t.Day, t.Value, t.Result, t.Notes, t.TestedAt).Scan(&t.ID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE production_batches SET status = $2 WHERE id = $1`, t.BatchID, string(status)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) ListTests(ctx context.Context, batchID int64) ([]Test, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, batch_id, test_day, value, result, notes, tested_at
		FROM batch_tests WHERE batch_id = $1
		ORDER BY tested_at, id
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Test
	for rows.Next() {
		var t Test
		if err := rows.Scan(&t.ID, &t.BatchID, &t.Day, &t.Value, &t.Result, &t.Notes, &t.TestedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendFinished adds one line to a lot's finished-goods ledger.
func (r *Repo) AppendFinished(ctx context.Context, m FinishedMove) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO finished_inventory (batch_id, delta, unit, reason, at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, m.BatchID, m.Delta, m.Unit, string(m.Reason), m.At).Scan(&id)
	return id, err
}

func (r *Repo) ListFinished(ctx context.Context, batchID int64) ([]FinishedMove, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, batch_id, delta, unit, reason, at
		FROM finished_inventory WHERE batch_id = $1
		ORDER BY at, id
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FinishedMove
	for rows.Next() {
		var m FinishedMove
		if err := rows.Scan(&m.ID, &m.BatchID, &m.Delta, &m.Unit, &m.Reason, &m.At); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
