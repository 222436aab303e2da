package imports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
	"github.com/PoFerry/atelierculinairepof/internal/infra/sheets"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type store struct {
	suppliers []suppliers.Supplier
	ings      []ingredients.Ingredient
	recs      []recipes.Recipe
}

func (s *store) UpsertByName(_ context.Context, name string) (*suppliers.Supplier, error) {
	for _, sup := range s.suppliers {
		if sup.Name == name {
			return &sup, nil
		}
	}
	sup := suppliers.Supplier{ID: int64(len(s.suppliers) + 1), Name: name}
	s.suppliers = append(s.suppliers, sup)
	return &sup, nil
}

func (s *store) GetByName(_ context.Context, name string) (*ingredients.Ingredient, error) {
	for _, i := range s.ings {
		if i.Name == name {
			return &i, nil
		}
	}
	return nil, nil
}

func (s *store) Upsert(_ context.Context, i *ingredients.Ingredient) (bool, error) {
	for n := range s.ings {
		if s.ings[n].Name == i.Name {
			i.ID = s.ings[n].ID
			s.ings[n] = *i
			return false, nil
		}
	}
	i.ID = int64(len(s.ings) + 1)
	s.ings = append(s.ings, *i)
	return true, nil
}

func (s *store) Save(_ context.Context, r *recipes.Recipe) (bool, error) {
	for n := range s.recs {
		if s.recs[n].Name == r.Name {
			r.ID = s.recs[n].ID
			s.recs[n] = *r
			return false, nil
		}
	}
	r.ID = int64(len(s.recs) + 1)
	s.recs = append(s.recs, *r)
	return true, nil
}

func (s *store) ingredient(name string) ingredients.Ingredient {
	for _, i := range s.ings {
		if i.Name == name {
			return i
		}
	}
	return ingredients.Ingredient{}
}

type hook struct{ tables []sheets.Table }

func (h *hook) Export(_ context.Context, t sheets.Table) error {
	h.tables = append(h.tables, t)
	return nil
}

func newImporter() (*Importer, *store, *hook) {
	st, h := &store{}, &hook{}
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), st, st, st, h), st, h
}

const ingredientsCSV = "\xef\xbb\xbfNom;Catégorie;Unité de base;Format achat;Unité d'achat;Prix d'achat;Fournisseur;Code\n" +
	"Farine T55;Sec;g;\"1,5\";kg;12,00 $;Moulin Bio;F55\n" +
	"Lait;;ml;1;l;2;  Laiterie   Nord ;\n" +
	";;;;;;;\n" +
	";Sec;g;1;kg;1;;\n" +
	"Oeufs;;caisse;12;;4,20;;\n" +
	"Sucre;;g;1;kg;1-2;;\n" +
	"Sel;;;;;;;\n"

func TestImportIngredients(t *testing.T) {
	im, st, h := newImporter()
	table, err := ReadTable("ingredients.csv", strings.NewReader(ingredientsCSV))
	if err != nil {
		t.Fatal(err)
	}
	res, err := im.Ingredients(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 4 || res.Updated != 0 || res.Skipped != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "ligne 7:") {
		t.Errorf("error = %q", res.Errors[0])
	}
	if got := res.Message(); got != "4 créé(s) · 0 mis à jour · 1 ignoré(s) · 1 erreur(s)" {
		t.Errorf("Message() = %q", got)
	}

	tests := []struct {
		name       string
		base, pack units.Unit
		size       float64
		ppu        string
		supplier   string
	}{
		{"Farine T55", units.Gram, units.Kilogram, 1.5, "0.008", "Moulin Bio"},
		{"Lait", units.Milliliter, units.Liter, 1, "0.002", "Laiterie Nord"},
		{"Oeufs", units.Piece, units.Piece, 12, "0.35", ""},
		{"Sel", units.Piece, units.Piece, 1, "0", ""},
	}
	for _, tt := range tests {
		ing := st.ingredient(tt.name)
		if ing.BaseUnit != tt.base || ing.PackUnit != tt.pack || ing.PackSize != tt.size || ing.Supplier != tt.supplier {
			t.Errorf("%s = %+v", tt.name, ing)
		}
		if !ing.PricePerBaseUnit.Equal(decimal.RequireFromString(tt.ppu)) {
			t.Errorf("%s price per base unit = %s, want %s", tt.name, ing.PricePerBaseUnit, tt.ppu)
		}
	}
	if st.ingredient("Oeufs").Category != ingredients.DefaultCategory {
		t.Errorf("default category not applied")
	}
	if diff := cmp.Diff([]sheets.Table{sheets.TableIngredients}, h.tables); diff != "" {
		t.Errorf("synced tables (-want +got):\n%s", diff)
	}

	res, err = im.Ingredients(context.Background(), [][]string{{"name", "prix"}, {"Farine T55", "15"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 || res.Created != 0 {
		t.Fatalf("reimport = %+v", res)
	}
	if len(st.suppliers) != 2 {
		t.Errorf("suppliers = %d, want 2", len(st.suppliers))
	}
}

func xlsxTable(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImportRecipes(t *testing.T) {
	im, st, h := newImporter()
	ctx := context.Background()
	st.ings = []ingredients.Ingredient{
		{ID: 1, Name: "Farine T55", BaseUnit: units.Gram},
		{ID: 2, Name: "Lait", BaseUnit: units.Milliliter},
	}

	data := xlsxTable(t, [][]any{
		{"Recette", "Portions", "Ingrédient", "Quantité", "Unité", "Étapes"},
		{"Crêpes", "10", "Farine T55", "250", "g", "Mélanger"},
		{"Crêpes", "", "Lait", "0,5", "litre", "Cuire"},
		{"Crêpes", "", "Farine T55", "0.5", "kg"},
		{"Crêpes", "", "Inconnu", "1", "g"},
		{"Pain", "0", "Farine T55", "500"},
		{"Vide", "2", "Lait", "", "ml"},
		{"", "", "Lait", "1", "ml"},
		{"Pain", "", "Lait", "1", "kg"},
	})
	table, err := ReadTable("recettes.xlsx", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	res, err := im.Recipes(ctx, table)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 2 || res.Skipped != 1 || len(res.Errors) != 5 {
		t.Fatalf("result = %+v", res)
	}

	crepes := st.recs[0]
	if crepes.Name != "Crêpes" || crepes.Servings != 10 || crepes.Instructions != "Mélanger\nCuire" {
		t.Fatalf("crepes = %+v", crepes)
	}
	if len(crepes.Items) != 2 || crepes.Items[0].Quantity != 750 || crepes.Items[0].Unit != units.Gram ||
		crepes.Items[1].Quantity != 0.5 || crepes.Items[1].Unit != units.Liter {
		t.Fatalf("crepes items = %+v", crepes.Items)
	}
	pain := st.recs[1]
	if pain.Servings != 1 || len(pain.Items) != 1 || pain.Items[0].Unit != units.Gram {
		t.Fatalf("pain = %+v", pain)
	}
	if diff := cmp.Diff([]sheets.Table{sheets.TableRecipes, sheets.TableRecipeItems}, h.tables); diff != "" {
		t.Errorf("synced tables (-want +got):\n%s", diff)
	}
}

func TestImportTableErrors(t *testing.T) {
	im, _, h := newImporter()
	ctx := context.Background()
	if _, err := im.Recipes(ctx, nil); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("empty: err = %v", err)
	}
	if _, err := im.Recipes(ctx, [][]string{{"Recette", "Notes"}}); !errors.Is(err, ErrMissingColumns) {
		t.Errorf("missing: err = %v", err)
	}
	if _, err := im.Ingredients(ctx, [][]string{{"Prix"}}); !errors.Is(err, ErrMissingColumns) {
		t.Errorf("missing name: err = %v", err)
	}
	if len(h.tables) != 0 {
		t.Errorf("sync ran on failed import: %v", h.tables)
	}
}

func TestCanonHeader(t *testing.T) {
	tests := map[string]string{
		"Unité_de-base":    "unite de base",
		" Prix d’achat ":   "prix dachat",
		"Qté format achat": "qte format achat",
		"CODE/Produit":     "code produit",
	}
	for in, want := range tests {
		if got := canonHeader(in); got != want {
			t.Errorf("canonHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadCSVLatin1Tab(t *testing.T) {
	rows, err := ReadTable("x.csv", strings.NewReader("Nom\tPrix\nCr\xe8me\t3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]string{{"Nom", "Prix"}, {"Crème", "3"}}, rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}
