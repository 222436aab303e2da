package imports

import (
	"context"
	"math"
	"strings"

	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/infra/sheets"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

type draft struct {
	rec   recipes.Recipe
	steps []string
	pos   map[int64]int // ingredient id -> index in rec.Items
}

// Recipes reads one recipe item per row, grouped by recipe name. Category,
// servings and instructions may sit on any row of the group; the first
// non-empty category and servings win and instructions are concatenated.
// Ingredients must already exist. A missing unit means grams. An ingredient
// listed twice is merged into one item.
func (im *Importer) Recipes(ctx context.Context, table [][]string) (Result, error) {
	var res Result
	cols, err := header(table, recipeFields, "recipe", "ingredient", "quantity")
	if err != nil {
		return res, err
	}

	var order []string
	drafts := map[string]*draft{}
	for i, cells := range table[1:] {
		line := i + 2
		r := row{cells: cells, cols: cols}
		if r.blank() {
			continue
		}
		name := clean(r.get("recipe"))
		if name == "" {
			res.errorf(line, "nom de recette manquant")
			continue
		}
		d, ok := drafts[name]
		if !ok {
			d = &draft{rec: recipes.Recipe{Name: name}, pos: map[int64]int{}}
			drafts[name] = d
			order = append(order, name)
		}

		if d.rec.Category == "" {
			d.rec.Category = r.get("category")
		}
		if s := r.get("servings"); s != "" && d.rec.Servings == 0 {
			v, ok, err := parse.Amount(s)
			if err != nil || !ok {
				res.errorf(line, "portions invalides %q", s)
			} else {
				d.rec.Servings = max(1, int(math.Floor(v)))
			}
		}
		if s := r.get("instructions"); s != "" {
			d.steps = append(d.steps, s)
		}

		ingName := clean(r.get("ingredient"))
		if ingName == "" {
			continue
		}
		qty, ok, err := parse.Amount(r.get("quantity"))
		if err != nil {
			res.errorf(line, "quantité invalide %q", r.get("quantity"))
			continue
		}
		if !ok {
			res.errorf(line, "quantité manquante")
			continue
		}
		unitText := r.get("unit")
		if unitText == "" {
			unitText = string(units.Gram)
		}
		u, err := units.Canonical(parse.UnitText(unitText))
		if err != nil {
			res.errorf(line, "unité inconnue %q", unitText)
			continue
		}
		ing, err := im.ingredients.GetByName(ctx, ingName)
		if err != nil {
			res.errorf(line, "%s: %v", ingName, err)
			continue
		}
		if ing == nil {
			res.errorf(line, "ingrédient inconnu %q (créez-le avant import)", ingName)
			continue
		}
		if _, err := units.Convert(qty, u, ing.BaseUnit); err != nil {
			res.errorf(line, "%s: unité %s incompatible avec %s", ing.Name, u, ing.BaseUnit)
			continue
		}

		if at, dup := d.pos[ing.ID]; dup {
			prev := &d.rec.Items[at]
			add, _ := units.Convert(qty, u, prev.Unit)
			prev.Quantity += add
			continue
		}
		d.pos[ing.ID] = len(d.rec.Items)
		d.rec.Items = append(d.rec.Items, recipes.Item{IngredientID: ing.ID, Quantity: qty, Unit: u, Ingredient: *ing})
	}

	for _, name := range order {
		d := drafts[name]
		if len(d.rec.Items) == 0 {
			res.Skipped++
			res.Errors = append(res.Errors, "recette "+name+" ignorée: aucun ingrédient valide")
			continue
		}
		if d.rec.Servings < 1 {
			d.rec.Servings = 1
		}
		d.rec.Instructions = strings.Join(d.steps, "\n")

		created, err := im.recipes.Save(ctx, &d.rec)
		if err != nil {
			res.Errors = append(res.Errors, "recette "+name+": "+err.Error())
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	res.count("recipes")
	im.log.Info("recipes imported", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped, "errors", len(res.Errors))
	if res.Created+res.Updated > 0 {
		im.sync(ctx, sheets.TableRecipes, sheets.TableRecipeItems)
	}
	return res, nil
}
