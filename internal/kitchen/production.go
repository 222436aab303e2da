package kitchen

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/infra/metrics"
)

const defaultFinishedUnit = "portion"

type ProduceInput struct {
	Recipe     string
	Batches    float64
	Quantity   float64   // finished goods; zero means batches x servings
	Unit       string    // empty means "portion"
	ProducedAt time.Time // zero means now
	Notes      string
}

// ProduceBatch records a production run under the next lot code of the day,
// consumes the scaled recipe items from stock and puts the finished
// quantity on the lot's ledger. The lot starts at J0.
func (s *Service) ProduceBatch(ctx context.Context, in ProduceInput) (*production.Batch, error) {
	if in.Batches <= 0 || math.IsNaN(in.Batches) || math.IsInf(in.Batches, 0) {
		return nil, fmt.Errorf("%w: batches must be > 0", ErrInvalidInput)
	}
	if in.Quantity < 0 || math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) {
		return nil, fmt.Errorf("%w: quantity must be >= 0", ErrInvalidInput)
	}
	rec, err := s.recipeByName(ctx, in.Recipe)
	if err != nil {
		return nil, err
	}
	at := in.ProducedAt
	if at.IsZero() {
		at = s.now()
	}

	last, err := s.st.Production.LastLotCode(ctx, production.LotPrefix(at))
	if err != nil {
		return nil, err
	}
	lot, err := production.NextLotCode(at, last)
	if err != nil {
		return nil, err
	}

	inputs, skipped := production.ScaleInputs(*rec, in.Batches)
	s.skipped("production", skipped, "lot", lot, "recipe", rec.Name)

	qty := in.Quantity
	if qty == 0 {
		qty = costing.PortionsFromBatches(in.Batches, rec.Servings)
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = defaultFinishedUnit
	}

	b := &production.Batch{
		LotCode:    lot,
		ProducedAt: at,
		RecipeID:   rec.ID,
		Recipe:     rec.Name,
		Batches:    in.Batches,
		Quantity:   qty,
		Unit:       unit,
		Status:     production.StatusDay0,
		Notes:      in.Notes,
		Inputs:     inputs,
	}
	if err := s.st.Production.Create(ctx, b); err != nil {
		return nil, err
	}
	for _, it := range b.Inputs {
		if it.QtyUsed > 0 {
			metrics.StockMovements.WithLabelValues(string(inventory.MoveOut)).Inc()
		}
	}
	s.log.Info("batch produced", "lot", b.LotCode, "recipe", rec.Name, "batches", in.Batches, "inputs", len(b.Inputs))
	return b, nil
}

// RecentBatches lists the last production runs, newest first.
func (s *Service) RecentBatches(ctx context.Context, limit int) ([]production.Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.st.Production.ListRecent(ctx, limit)
}

func (s *Service) batchByLot(ctx context.Context, lot string) (*production.Batch, error) {
	lot = strings.ToUpper(strings.TrimSpace(lot))
	b, err := s.st.Production.GetByLot(ctx, lot)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("lot %q: %w", lot, ErrNotFound)
	}
	return b, nil
}

// RecordPH stores a pH reading for a lot. The day-14 reading settles the
// lot as conforme or non_conforme.
func (s *Service) RecordPH(ctx context.Context, lot string, day int, value float64, notes string) (*production.Test, production.Status, error) {
	if day < 0 {
		return nil, "", fmt.Errorf("%w: test day must be >= 0", ErrInvalidInput)
	}
	if value < 0 || value > 14 || math.IsNaN(value) {
		return nil, "", fmt.Errorf("%w: pH %v outside 0-14", ErrInvalidInput, value)
	}
	b, err := s.batchByLot(ctx, lot)
	if err != nil {
		return nil, "", err
	}

	t := &production.Test{
		BatchID:  b.ID,
		Day:      day,
		Value:    value,
		Result:   production.PHResult(value, production.DefaultPHMax),
		Notes:    notes,
		TestedAt: s.now(),
	}
	status := production.StatusAfterTest(b.Status, day, value, production.DefaultPHMax)
	if err := s.st.Production.AddTest(ctx, t, status); err != nil {
		return nil, "", err
	}
	s.log.Info("ph recorded", "lot", b.LotCode, "day", day, "value", value, "result", t.Result, "status", status)
	return t, status, nil
}

// LotsDueForCheck lists the J0 lots, 12 to 16 days old on now's date,
// that still lack their day-14 reading.
func (s *Service) LotsDueForCheck(ctx context.Context, now time.Time) ([]production.Batch, error) {
	from, to := production.CheckWindow(now)
	return s.st.Production.ListDueForCheck(ctx, from, to)
}

// LotReport is a lot with its readings and what is left of it.
type LotReport struct {
	Batch  production.Batch
	Tests  []production.Test
	Moves  []production.FinishedMove
	OnHand float64
}

func (s *Service) Lot(ctx context.Context, lot string) (*LotReport, error) {
	b, err := s.batchByLot(ctx, lot)
	if err != nil {
		return nil, err
	}
	tests, err := s.st.Production.ListTests(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	moves, err := s.st.Production.ListFinished(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &LotReport{Batch: *b, Tests: tests, Moves: moves, OnHand: production.FinishedStock(moves)}, nil
}

// ConsumeFinished takes qty, in the lot's unit, out of a lot. A lot cannot
// go below zero; reason defaults to a sale.
func (s *Service) ConsumeFinished(ctx context.Context, lot string, qty float64, reason production.Reason) (*production.FinishedMove, error) {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrInvalidInput)
	}
	if reason == "" {
		reason = production.ReasonSale
	}
	if !reason.Valid() || reason == production.ReasonProduction {
		return nil, fmt.Errorf("%w: reason %q", ErrInvalidInput, reason)
	}
	rep, err := s.Lot(ctx, lot)
	if err != nil {
		return nil, err
	}
	if qty > rep.OnHand+1e-9 {
		return nil, fmt.Errorf("%w: %s has %v %s left", ErrInvalidInput, rep.Batch.LotCode, rep.OnHand, rep.Batch.Unit)
	}

	m := production.FinishedMove{
		BatchID: rep.Batch.ID,
		Delta:   -qty,
		Unit:    rep.Batch.Unit,
		Reason:  reason,
		At:      s.now(),
	}
	id, err := s.st.Production.AppendFinished(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	s.log.Info("finished goods out", "lot", rep.Batch.LotCode, "qty", qty, "unit", m.Unit, "reason", reason)
	return &m, nil
}
