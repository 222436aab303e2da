package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/parse"
)

func newPHCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "ph <lot> <day> <value>",
		Short: "Record a pH reading; the day-14 reading settles the lot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("day: %q is not a whole number", args[1])
			}
			value, ok, err := parse.Amount(args[2])
			if err != nil || !ok {
				return fmt.Errorf("value: %q is not a number", args[2])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				t, status, err := a.kitchen.RecordPH(ctx, args[0], day, value, notes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "J%d\t%g\t%s\tstatus %s\n", t.Day, t.Value, t.Result, status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "notes stored with the reading")
	return cmd
}

func newDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List lots waiting for their day-14 pH reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				list, err := a.kitchen.LotsDueForCheck(ctx, time.Now())
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				for _, b := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\n", b.LotCode, b.ProducedAt.Format("2006-01-02"), b.Recipe)
				}
				return w.Flush()
			})
		},
	}
}

func newLotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lot <lot>",
		Short: "Show a lot with its pH readings and finished stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				rep, err := a.kitchen.Lot(ctx, args[0])
				if err != nil {
					return err
				}
				b := rep.Batch
				w := table(cmd.OutOrStdout())
				fmt.Fprintf(w, "%s\t%s\t× %g\t%s\t%s\n", b.LotCode, b.Recipe, b.Batches, b.ProducedAt.Format("2006-01-02"), b.Status)
				for _, t := range rep.Tests {
					fmt.Fprintf(w, "  pH J%d\t%g\t%s\t%s\n", t.Day, t.Value, t.Result, t.Notes)
				}
				for _, m := range rep.Moves {
					fmt.Fprintf(w, "  %s\t%+g %s\t%s\n", m.At.Format("2006-01-02"), m.Delta, m.Unit, m.Reason)
				}
				fmt.Fprintf(w, "on hand\t%g %s\n", rep.OnHand, b.Unit)
				return w.Flush()
			})
		},
	}
}

func newSellCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "sell <lot> <qty>",
		Short: "Take finished goods out of a lot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, ok, err := parse.Amount(args[1])
			if err != nil || !ok {
				return fmt.Errorf("qty: %q is not a number", args[1])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				m, err := a.kitchen.ConsumeFinished(ctx, args[0], q, production.Reason(reason))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g %s\n", m.Reason, -m.Delta, m.Unit)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", string(production.ReasonSale), "vente, rebut, don or ajustement")
	return cmd
}
