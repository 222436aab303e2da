package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PoFerry/atelierculinairepof/internal/kitchen"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
)

// splitPair reads "name=value", splitting on the last '='.
func splitPair(s string) (string, string, error) {
	i := strings.LastIndexByte(s, '=')
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("%q: want name=value", s)
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), nil
}

// quantity reads "250 g" or "3"; the unit is optional.
func quantity(s string) (float64, string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("empty quantity")
	}
	v, ok, err := parse.Amount(fields[0])
	if err != nil {
		return 0, "", err
	}
	if !ok {
		return 0, "", fmt.Errorf("%q: no quantity", s)
	}
	return v, strings.Join(fields[1:], " "), nil
}

func newIngredientCmd() *cobra.Command {
	var in kitchen.IngredientInput
	var price string
	cmd := &cobra.Command{
		Use:   "ingredient <name>",
		Short: "Create or update an ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			p, ok, err := parse.Price(price)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("--price is required")
			}
			in.PurchasePrice = p
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				ing, created, err := a.kitchen.SaveIngredient(ctx, in)
				if err != nil {
					return err
				}
				verb := "updated"
				if created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s / %s\n", verb, ing.Name, ing.PricePerBaseUnit.String(), ing.BaseUnit)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Category, "category", "", "category")
	f.StringVar(&in.Supplier, "supplier", "", "supplier name, created if missing")
	f.StringVar(&in.SupplierCode, "code", "", "supplier product code")
	f.StringVar(&in.BaseUnit, "base", "g", "base unit (g, ml or unit)")
	f.Float64Var(&in.PackSize, "pack-size", 1, "purchase pack size")
	f.StringVar(&in.PackUnit, "pack-unit", "", "purchase pack unit, defaults to the base unit")
	f.StringVar(&price, "price", "", "purchase price of one pack")
	return cmd
}

func newRecipeCmd() *cobra.Command {
	var in kitchen.RecipeInput
	var items []string
	cmd := &cobra.Command{
		Use:   "recipe <name>",
		Short: `Create or replace a recipe, e.g. --item "Farine=250 g" --item "Oeufs=4"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			for _, raw := range items {
				name, q, err := splitPair(raw)
				if err != nil {
					return err
				}
				v, unit, err := quantity(q)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				in.Items = append(in.Items, kitchen.RecipeItemInput{Ingredient: name, Quantity: v, Unit: unit})
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				rec, created, err := a.kitchen.SaveRecipe(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d items, created=%v)\n", rec.Name, len(rec.Items), created)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Category, "category", "", "category")
	f.IntVar(&in.Servings, "servings", 1, "portions per batch")
	f.StringVar(&in.Instructions, "instructions", "", "method")
	f.StringArrayVar(&items, "item", nil, "ingredient=quantity [unit], repeatable")
	return cmd
}

func newMenuCmd() *cobra.Command {
	var in kitchen.MenuInput
	var batches, portions []string
	cmd := &cobra.Command{
		Use:   "menu <name>",
		Short: `Create or replace a menu, e.g. --batches "Crêpes=2" --portions "Pain=24"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			add := func(raw string, asPortions bool) error {
				name, q, err := splitPair(raw)
				if err != nil {
					return err
				}
				v, _, err := quantity(q)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				l := kitchen.MenuLineInput{Recipe: name, Batches: v}
				if asPortions {
					l = kitchen.MenuLineInput{Recipe: name, Portions: v}
				}
				in.Lines = append(in.Lines, l)
				return nil
			}
			for _, raw := range batches {
				if err := add(raw, false); err != nil {
					return err
				}
			}
			for _, raw := range portions {
				if err := add(raw, true); err != nil {
					return err
				}
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				m, created, err := a.kitchen.SaveMenu(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d lines, created=%v)\n", m.Name, len(m.Items), created)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Notes, "notes", "", "notes")
	f.StringArrayVar(&batches, "batches", nil, "recipe=batches, repeatable")
	f.StringArrayVar(&portions, "portions", nil, "recipe=portions, repeatable")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients, recipes, menus or suppliers",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use: "ingredients", Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
					list, err := a.kitchen.Ingredients(ctx)
					if err != nil {
						return err
					}
					w := table(cmd.OutOrStdout())
					for _, i := range list {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s / %s\n", i.Name, i.Category, i.Supplier, i.PricePerBaseUnit.String(), i.BaseUnit)
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use: "recipes", Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
					list, err := a.kitchen.Recipes(ctx)
					if err != nil {
						return err
					}
					w := table(cmd.OutOrStdout())
					for _, r := range list {
						fmt.Fprintf(w, "%s\t%s\t%d portion(s)\t%d items\n", r.Name, r.Category, r.Servings, len(r.Items))
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use: "menus", Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
					list, err := a.kitchen.Menus(ctx)
					if err != nil {
						return err
					}
					w := table(cmd.OutOrStdout())
					for _, m := range list {
						fmt.Fprintf(w, "%s\t%s\n", m.Name, m.Notes)
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use: "suppliers [name]",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
					w := table(cmd.OutOrStdout())
					if len(args) > 0 {
						s, err := a.kitchen.FindSupplier(ctx, strings.Join(args, " "))
						if err != nil {
							return err
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Contact, s.Phone, s.Email, s.Notes)
						return w.Flush()
					}
					list, err := a.kitchen.Suppliers(ctx)
					if err != nil {
						return err
					}
					for _, s := range list {
						fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Contact, s.Phone)
					}
					return w.Flush()
				})
			},
		},
	)
	return cmd
}
