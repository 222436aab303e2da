package imports

import (
	"strings"

	"github.com/PoFerry/atelierculinairepof/internal/parse"
)

type field struct {
	key     string
	aliases []string
}

var ingredientFields = []field{
	{"name", []string{"name", "nom", "nom du produit", "nom du produits", "produit", "ingredient"}},
	{"category", []string{"category", "categorie"}},
	{"base_unit", []string{"base_unit", "unite base", "unite de base", "base", "format de base", "portion", "paquet"}},
	{"pack_size", []string{
		"pack_size", "format", "taille colis", "format achat", "qte format achat", "qte format dachat",
		"quantite format achat", "quantite achat",
	}},
	{"pack_unit", []string{
		"pack_unit", "unite format", "format unite", "unite achat", "unite dachat",
		"caisse", "boite", "bte", "sac", "sachet", "paquet", "portion", "piece",
	}},
	{"purchase_price", []string{"purchase_price", "prix achat", "prix", "cout dachat", "prix dachat"}},
	{"supplier", []string{"supplier", "fournisseur"}},
	{"supplier_code", []string{"supplier_code", "code fournisseur", "code", "code produit chez fournisseur", "code produit", "sku fournisseur"}},
}

var recipeFields = []field{
	{"recipe", []string{"recipe", "recette", "name", "nom"}},
	{"category", []string{"category", "categorie"}},
	{"servings", []string{"servings", "portions", "rendement"}},
	{"instructions", []string{"instructions", "etapes", "steps"}},
	{"ingredient", []string{"ingredient"}},
	{"quantity", []string{"quantity", "quantite", "qty", "qte"}},
	{"unit", []string{"unit", "unite"}},
}

// canonHeader folds a column title so that "Unité_de-base" and
// "unite de base" compare equal.
func canonHeader(s string) string {
	s = strings.ToLower(parse.StripAccents(strings.TrimSpace(s)))
	s = strings.NewReplacer("'", "", "’", "", "`", "", "_", " ", "-", " ", ".", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// columns maps field keys to column indexes. Fields are matched in order
// and a column is claimed by at most one field.
func columns(header []string, fields []field) map[string]int {
	byCanon := make(map[string]int, len(header))
	for i, h := range header {
		c := canonHeader(h)
		if _, dup := byCanon[c]; !dup && c != "" {
			byCanon[c] = i
		}
	}
	claimed := map[int]bool{}
	out := map[string]int{}
	for _, f := range fields {
		for _, a := range f.aliases {
			i, ok := byCanon[canonHeader(a)]
			if ok && !claimed[i] {
				out[f.key] = i
				claimed[i] = true
				break
			}
		}
	}
	return out
}

type row struct {
	cells []string
	cols  map[string]int
}

func (r row) get(key string) string {
	i, ok := r.cols[key]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) blank() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func clean(s string) string { return strings.Join(strings.Fields(s), " ") }
