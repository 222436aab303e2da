package imports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
	"github.com/PoFerry/atelierculinairepof/internal/infra/sheets"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
	"github.com/PoFerry/atelierculinairepof/internal/reconcile"
)

// Ingredients upserts one ingredient per row, by exact name. Empty cells
// get defaults: pack size 1, price 0, units from reconcile.Units. A price
// per base unit that cannot be computed is stored as 0.
func (im *Importer) Ingredients(ctx context.Context, table [][]string) (Result, error) {
	var res Result
	cols, err := header(table, ingredientFields, "name")
	if err != nil {
		return res, err
	}

	supplierIDs := map[string]int64{}
	for i, cells := range table[1:] {
		line := i + 2
		r := row{cells: cells, cols: cols}
		if r.blank() {
			continue
		}
		name := clean(r.get("name"))
		if name == "" {
			res.Skipped++
			im.log.Debug("ingredient row without name", "line", line)
			continue
		}

		packSize, ok, err := parse.Amount(r.get("pack_size"))
		if err != nil {
			res.errorf(line, "format invalide %q", r.get("pack_size"))
			continue
		}
		if !ok || packSize == 0 {
			packSize = 1
		}
		if packSize < 0 {
			res.errorf(line, "format négatif %v", packSize)
			continue
		}

		price, ok, err := parse.Price(r.get("purchase_price"))
		if err != nil {
			res.errorf(line, "prix invalide %q", r.get("purchase_price"))
			continue
		}
		if !ok {
			price = decimal.Zero
		}
		if price.IsNegative() {
			res.errorf(line, "prix négatif %s", price)
			continue
		}

		base, pack := reconcile.Units(r.get("base_unit"), r.get("pack_unit"))
		ppu, err := costing.PricePerBaseUnit(packSize, pack, base, price)
		if err != nil {
			im.log.Debug("price per base unit defaulted to 0", "line", line, "ingredient", name, "err", err)
			ppu = decimal.Zero
		}

		ing := &ingredients.Ingredient{
			Name:             name,
			Category:         r.get("category"),
			SupplierCode:     r.get("supplier_code"),
			BaseUnit:         base,
			PackSize:         packSize,
			PackUnit:         pack,
			PurchasePrice:    price,
			PricePerBaseUnit: ppu,
		}
		if ing.Category == "" {
			ing.Category = ingredients.DefaultCategory
		}
		if sup := suppliers.NormalizeName(r.get("supplier")); sup != "" {
			id, cached := supplierIDs[sup]
			if !cached {
				s, err := im.suppliers.UpsertByName(ctx, sup)
				if err != nil {
					res.errorf(line, "fournisseur %q: %v", sup, err)
					continue
				}
				id = s.ID
				supplierIDs[sup] = id
			}
			ing.SupplierID, ing.Supplier = id, sup
		}

		created, err := im.ingredients.Upsert(ctx, ing)
		if err != nil {
			res.errorf(line, "%s: %v", name, err)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	res.count("ingredients")
	im.log.Info("ingredients imported", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped, "errors", len(res.Errors))
	if res.Created+res.Updated > 0 {
		im.sync(ctx, sheets.TableIngredients)
	}
	return res, nil
}
