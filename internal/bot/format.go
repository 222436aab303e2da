package bot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/imports"
	"github.com/PoFerry/atelierculinairepof/internal/kitchen"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

const maxErrorsShown = 10

var errUsage = errors.New("usage")

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " $"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// formatQty shows a base quantity in the unit a cook would write it in.
func formatQty(v float64, u units.Unit) string {
	q, du := units.Humanize(v, u)
	return formatNumber(q) + " " + string(du)
}

func skippedNote(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("\n⚠ %d ligne(s) ignorée(s) : unité incompatible", n)
}

func formatRecipeCost(r recipes.Recipe, c costing.Cost) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d portion(s))\n", r.Name, r.Servings)
	for _, l := range c.Lines {
		fmt.Fprintf(&sb, "• %s : %s → %s\n", l.Name, formatQty(l.QtyBase, l.BaseUnit), money(l.Cost))
	}
	fmt.Fprintf(&sb, "Total : %s\nPar portion : %s", money(c.Total), money(c.PerServing))
	sb.WriteString(skippedNote(c.Skipped))
	return sb.String()
}

func formatMenuCost(m menus.Menu, mc costing.MenuCost) string {
	var sb strings.Builder
	sb.WriteString(m.Name + "\n")
	for _, l := range mc.Lines {
		fmt.Fprintf(&sb, "• %s × %s (%s portions) : %s\n",
			l.Recipe, formatNumber(l.Batches), formatNumber(l.Portions), money(l.Total))
	}
	fmt.Fprintf(&sb, "Total : %s", money(mc.Total))
	sb.WriteString(skippedNote(mc.Skipped))
	return sb.String()
}

func formatShopping(menu string, list []costing.Shortage) string {
	if len(list) == 0 {
		return "Aucun besoin pour " + menu + "."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Besoins pour %s :\n", menu)
	for _, s := range list {
		fmt.Fprintf(&sb, "• %s : %s (stock %s)", s.Name,
			formatQty(s.TotalQtyBase, s.BaseUnit), formatQty(s.OnHand, s.BaseUnit))
		if s.ToOrder > 0 {
			fmt.Fprintf(&sb, " → commander %s", formatQty(s.ToOrder, s.BaseUnit))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatStock(lines []kitchen.StockLine) string {
	if len(lines) == 0 {
		return "Aucun ingrédient."
	}
	var sb strings.Builder
	sb.WriteString("Stock :\n")
	skipped := 0
	for _, l := range lines {
		fmt.Fprintf(&sb, "• %s : %s\n", l.Ingredient.Name, formatQty(l.Qty, l.Ingredient.BaseUnit))
		skipped += l.Skipped
	}
	out := strings.TrimRight(sb.String(), "\n")
	if skipped > 0 {
		out += fmt.Sprintf("\n⚠ %d mouvement(s) ignoré(s) : unité incompatible", skipped)
	}
	return out
}

func formatImport(res imports.Result) string {
	var sb strings.Builder
	sb.WriteString(res.Message())
	for i, e := range res.Errors {
		if i == maxErrorsShown {
			fmt.Fprintf(&sb, "\n… et %d autre(s)", len(res.Errors)-maxErrorsShown)
			break
		}
		sb.WriteString("\n" + e)
	}
	return sb.String()
}

// parseQtyArgs splits "<qty> [unit] <name>". The second word is taken as a
// unit only when it is a known one and a name follows it.
func parseQtyArgs(args string) (qty float64, unit, name string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return 0, "", "", errUsage
	}
	qty, ok, err := parse.Amount(fields[0])
	if err != nil {
		return 0, "", "", err
	}
	if !ok {
		return 0, "", "", errUsage
	}
	rest := fields[1:]
	if len(rest) > 1 {
		if _, err := units.Canonical(parse.UnitText(rest[0])); err == nil {
			unit, rest = rest[0], rest[1:]
		}
	}
	return qty, unit, strings.Join(rest, " "), nil
}

func formatDue(list []production.Batch) string {
	if len(list) == 0 {
		return "Aucun lot à contrôler."
	}
	var sb strings.Builder
	sb.WriteString("Lots à contrôler (pH J14) :")
	for _, b := range list {
		fmt.Fprintf(&sb, "\n• %s : %s, produit le %s", b.LotCode, b.Recipe, b.ProducedAt.Format("2006-01-02"))
	}
	return sb.String()
}

func formatLot(r kitchen.LotReport) string {
	var sb strings.Builder
	b := r.Batch
	fmt.Fprintf(&sb, "%s : %s × %s (%s)\nProduit le %s, statut %s\n",
		b.LotCode, b.Recipe, formatNumber(b.Batches), formatNumber(b.Quantity)+" "+b.Unit, b.ProducedAt.Format("2006-01-02"), b.Status)
	for _, t := range r.Tests {
		fmt.Fprintf(&sb, "• pH J%d : %s (%s)\n", t.Day, formatNumber(t.Value), t.Result)
	}
	fmt.Fprintf(&sb, "Reste : %s %s", formatNumber(r.OnHand), b.Unit)
	return sb.String()
}

// parsePHArgs splits "<lot> <day> <value>"; the value may use a comma.
func parsePHArgs(args string) (lot string, day int, value float64, err error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return "", 0, 0, errUsage
	}
	day, err = strconv.Atoi(strings.TrimPrefix(strings.ToUpper(fields[1]), "J"))
	if err != nil {
		return "", 0, 0, errUsage
	}
	value, ok, err := parse.Amount(fields[2])
	if err != nil || !ok {
		return "", 0, 0, errUsage
	}
	return fields[0], day, value, nil
}

// parseSellArgs splits "<qty> <lot> [reason]".
func parseSellArgs(args string) (qty float64, lot string, reason production.Reason, err error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return 0, "", "", errUsage
	}
	qty, ok, err := parse.Amount(fields[0])
	if err != nil || !ok {
		return 0, "", "", errUsage
	}
	if len(fields) == 3 {
		reason = production.Reason(strings.ToLower(fields[2]))
	}
	return qty, fields[1], reason, nil
}

// fileSafe keeps letters and digits for use in a document name.
func fileSafe(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '-' || r == '_':
			return '_'
		case r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'):
			return r
		}
		return -1
	}, parse.StripAccents(s))
	if out == "" {
		return "export"
	}
	return strings.ToLower(out)
}
