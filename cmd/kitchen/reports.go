package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PoFerry/atelierculinairepof/internal/imports"
	"github.com/PoFerry/atelierculinairepof/internal/kitchen"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

func qty(v float64, u units.Unit) string {
	q, du := units.Humanize(v, u)
	return strconv.FormatFloat(math.Round(q*1000)/1000, 'f', -1, 64) + " " + string(du)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// saveXLSX writes data to path when the --xlsx flag was given.
func saveXLSX(path string, build func() ([]byte, error)) error {
	if path == "" {
		return nil
	}
	data, err := build()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "written", path)
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV or XLSX table",
	}
	run := func(kind string) *cobra.Command {
		return &cobra.Command{
			Use:   kind + " <file>",
			Short: "Import " + kind + " from a CSV or XLSX file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				tbl, err := imports.ReadTable(args[0], f)
				if err != nil {
					return err
				}
				return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
					var res imports.Result
					if kind == "ingredients" {
						res, err = a.importer.Ingredients(ctx, tbl)
					} else {
						res, err = a.importer.Recipes(ctx, tbl)
					}
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, res.Message())
					for _, e := range res.Errors {
						fmt.Fprintln(out, "  "+e)
					}
					return nil
				})
			},
		}
	}
	cmd.AddCommand(run("ingredients"), run("recipes"))
	return cmd
}

func newCostCmd() *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "cost <recipe>",
		Short: "Show the cost of one batch of a recipe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				rec, c, err := a.kitchen.RecipeCost(ctx, name)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				fmt.Fprintf(w, "%s\t%d portion(s)\n", rec.Name, rec.Servings)
				for _, l := range c.Lines {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", l.Name, qty(l.QtyBase, l.BaseUnit), l.Cost.StringFixed(2))
				}
				fmt.Fprintf(w, "Total\t\t%s\n", c.Total.StringFixed(2))
				fmt.Fprintf(w, "Par portion\t\t%s\n", c.PerServing.StringFixed(2))
				if c.Skipped > 0 {
					fmt.Fprintf(w, "ignorées\t%d\n", c.Skipped)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				return saveXLSX(xlsx, func() ([]byte, error) { return a.kitchen.RecipeCostWorkbook(ctx, name) })
			})
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the cost sheet to this file")
	return cmd
}

func newMenuCostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu-cost <menu>",
		Short: "Show the cost of every line of a menu",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				m, mc, err := a.kitchen.MenuCost(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				fmt.Fprintf(w, "%s\n", m.Name)
				for _, l := range mc.Lines {
					fmt.Fprintf(w, "  %s\t× %g\t%g portions\t%s\n", l.Recipe, l.Batches, l.Portions, l.Total.StringFixed(2))
				}
				fmt.Fprintf(w, "Total\t\t\t%s\n", mc.Total.StringFixed(2))
				return w.Flush()
			})
		},
	}
}

func newNeedsCmd() *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "needs <menu>",
		Short: "List the ingredients a menu needs against current stock",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				list, err := a.kitchen.ShoppingList(ctx, name)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				fmt.Fprintln(w, "Ingrédient\tBesoin\tStock\tÀ commander\tFournisseur")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name,
						qty(s.TotalQtyBase, s.BaseUnit), qty(s.OnHand, s.BaseUnit), qty(s.ToOrder, s.BaseUnit), s.Supplier)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				return saveXLSX(xlsx, func() ([]byte, error) { return a.kitchen.NeedsWorkbook(ctx, name) })
			})
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the needs sheet to this file")
	return cmd
}

func newStockCmd() *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Show on-hand quantities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				lines, err := a.kitchen.StockReport(ctx)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				for _, l := range lines {
					fmt.Fprintf(w, "%s\t%s\n", l.Ingredient.Name, qty(l.Qty, l.Ingredient.BaseUnit))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				return saveXLSX(xlsx, func() ([]byte, error) { return a.kitchen.StockWorkbook(ctx) })
			})
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the stock sheet to this file")
	return cmd
}

func newProduceCmd() *cobra.Command {
	var (
		notes, unit string
		quantity    float64
	)
	cmd := &cobra.Command{
		Use:   "produce <batches> <recipe>",
		Short: "Record a production run and consume its ingredients",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			batches, ok, err := parse.Amount(args[0])
			if err != nil || !ok {
				return fmt.Errorf("batches: %q is not a number", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				b, err := a.kitchen.ProduceBatch(ctx, kitchen.ProduceInput{
					Recipe:   strings.Join(args[1:], " "),
					Batches:  batches,
					Quantity: quantity,
					Unit:     unit,
					Notes:    notes,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s × %g\t%g %s\t%s\n", b.LotCode, b.Recipe, b.Batches, b.Quantity, b.Unit, b.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes stored with the batch")
	cmd.Flags().Float64Var(&quantity, "quantity", 0, "finished quantity (default batches x servings)")
	cmd.Flags().StringVar(&unit, "unit", "", "finished goods unit (default portion)")
	return cmd
}

func newBatchesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List recent production runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				list, err := a.kitchen.RecentBatches(ctx, limit)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				for _, b := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t× %g\t%g %s\t%s\n", b.LotCode, b.ProducedAt.Format("2006-01-02"), b.Recipe, b.Batches, b.Quantity, b.Unit, b.Status)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
