// Package export renders costs, needs and stock as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

// StockRow is one ingredient line of the stock sheet.
type StockRow struct {
	Name     string
	Category string
	Qty      float64
	BaseUnit units.Unit
	Skipped  int
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(4).Float64()
	return f
}

type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newWorkbook(name string) (*excelize.File, *sheet) {
	f := excelize.NewFile()
	_ = f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), name)
	return f, &sheet{f: f, name: name}
}

func (s *sheet) add(values ...any) {
	s.row++
	cell, _ := excelize.CoordinatesToCellName(1, s.row)
	_ = s.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) bold(cols int) {
	style, err := s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return
	}
	end, _ := excelize.CoordinatesToCellName(cols, s.row)
	start, _ := excelize.CoordinatesToCellName(1, s.row)
	_ = s.f.SetCellStyle(s.name, start, end, style)
}

func write(f *excelize.File) ([]byte, error) {
	defer func() { _ = f.Close() }()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecipeCost lists each costed item with its quantity in base unit and line
// cost, then the totals.
func RecipeCost(r recipes.Recipe, c costing.Cost) ([]byte, error) {
	f, s := newWorkbook("Coût")
	s.add("Recette", r.Name)
	s.add("Portions", r.Servings)
	s.add()
	s.add("Ingrédient", "Quantité", "Unité", "Coût")
	s.bold(4)
	for _, l := range c.Lines {
		qty, u := units.Humanize(l.QtyBase, l.BaseUnit)
		s.add(l.Name, round(qty, 3), string(u), money(l.Cost))
	}
	s.add()
	s.add("Total", "", "", money(c.Total))
	s.bold(4)
	s.add("Par portion", "", "", money(c.PerServing))
	if c.Skipped > 0 {
		s.add(fmt.Sprintf("%d ligne(s) ignorée(s): unité incompatible", c.Skipped))
	}
	return write(f)
}

// MenuNeeds lists what a menu needs per ingredient, what is on hand and what
// to order, in ingredient name order.
func MenuNeeds(menu string, lines []costing.Shortage) ([]byte, error) {
	f, s := newWorkbook("Besoins")
	s.add("Menu", menu)
	s.add()
	s.add("Ingrédient", "Catégorie", "Fournisseur", "Besoin", "En stock", "À commander", "Unité")
	s.bold(7)
	for _, l := range lines {
		// one display unit per line, chosen from the need
		_, u := units.Humanize(l.TotalQtyBase, l.BaseUnit)
		conv := func(q float64) float64 {
			v, err := units.Convert(q, l.BaseUnit, u)
			if err != nil {
				return q
			}
			return round(v, 3)
		}
		s.add(l.Name, l.Category, l.Supplier, conv(l.TotalQtyBase), conv(l.OnHand), conv(l.ToOrder), string(u))
	}
	return write(f)
}

func Stock(rows []StockRow) ([]byte, error) {
	f, s := newWorkbook("Stock")
	s.add("Ingrédient", "Catégorie", "Quantité", "Unité", "Mouvements ignorés")
	s.bold(5)
	for _, r := range rows {
		qty, u := units.Humanize(r.Qty, r.BaseUnit)
		s.add(r.Name, r.Category, round(qty, 3), string(u), r.Skipped)
	}
	return write(f)
}
