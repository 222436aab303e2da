package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PoFerry/atelierculinairepof/internal/config"
	"github.com/PoFerry/atelierculinairepof/internal/infra/logger"
)

var (
	cfgFile       string
	migrationsDir string
)

func main() {
	root := &cobra.Command{
		Use:           "kitchen",
		Short:         "Recipe costing, menu needs and stock for a small kitchen",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "config/example.yaml", "config file")
	root.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "goose migrations directory")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newIngredientCmd(),
		newRecipeCmd(),
		newMenuCmd(),
		newListCmd(),
		newCostCmd(),
		newMenuCostCmd(),
		newNeedsCmd(),
		newStockCmd(),
		newProduceCmd(),
		newBatchesCmd(),
		newPHCmd(),
		newDueCmd(),
		newLotCmd(),
		newSellCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config %s: %w", cfgFile, err)
	}
	return cfg, logger.New(cfg.App.Env), nil
}
